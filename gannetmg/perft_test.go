package gannetmg

import "testing"

// Published node counts from the standard perft suite.
var perftCases = []struct {
	name   string
	fen    string
	counts []uint64 // counts[i] is perft(i+1)
}{
	{
		name:   "initial",
		fen:    FENStartPos,
		counts: []uint64{20, 400, 8902, 197281, 4865609},
	},
	{
		name:   "kiwipete",
		fen:    "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		counts: []uint64{48, 2039, 97862, 4085603},
	},
	{
		name:   "position3",
		fen:    "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		counts: []uint64{14, 191, 2812, 43238, 674624},
	},
	{
		name:   "position4",
		fen:    "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		counts: []uint64{6, 264, 9467, 422333},
	},
	{
		name:   "position5",
		fen:    "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 0 1",
		counts: []uint64{44, 1486, 62379, 2103487},
	},
	{
		name:   "position6",
		fen:    "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
		counts: []uint64{46, 2079, 89890, 3894594},
	},
}

func TestPerftSuite(t *testing.T) {
	for _, tc := range perftCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			b, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN failed: %v", err)
			}
			for depth, want := range tc.counts {
				depth++
				if testing.Short() && want > 500000 {
					t.Skipf("skipping depth %d in short mode", depth)
				}
				if got := Perft(b, depth); got != want {
					t.Fatalf("%s depth%d: got %d want %d", tc.name, depth, got, want)
				}
			}
		})
	}
}

func TestPerftEnPassantPosition(t *testing.T) {
	b, err := ParseFEN("k7/8/8/3pP3/8/8/8/7K w - d6 0 2")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}
	if got := Perft(b, 1); got != 5 {
		t.Fatalf("EP depth1: got %d want 5", got)
	}
	if got := Perft(b, 2); got != 19 {
		t.Fatalf("EP depth2: got %d want 19", got)
	}
}

func TestPerftPromotionPosition(t *testing.T) {
	b, err := ParseFEN("1n5k/P7/8/8/8/8/8/7K w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}
	if got := Perft(b, 1); got != 11 {
		t.Fatalf("promotion depth1: got %d want 11", got)
	}
}

func TestPerftDivide_InitialDepth2(t *testing.T) {
	b, err := ParseFEN(FENStartPos)
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}
	div := PerftDivide(b, 2)
	if len(div) != 20 {
		t.Fatalf("divide length: got %d want 20", len(div))
	}
	var sum uint64
	for m, v := range div {
		if v != 20 {
			t.Fatalf("child count for %s: got %d want 20", m, v)
		}
		sum += v
	}
	if sum != 400 {
		t.Fatalf("divide sum: got %d want 400", sum)
	}
}

func BenchmarkPerftInitialDepth4(b *testing.B) {
	board, err := ParseFEN(FENStartPos)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if got := Perft(board, 4); got != 197281 {
			b.Fatalf("perft(4) = %d", got)
		}
	}
}

func BenchmarkGenerateMoves(b *testing.B) {
	board, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		b.Fatal(err)
	}
	buf := make([]Move, 0, 128)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = board.GenerateMovesInto(buf[:0])
	}
	_ = buf
}
