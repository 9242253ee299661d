package gannetmg

import "testing"

func mustParse(t *testing.T, fen string) *Board {
	t.Helper()
	b, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return b
}

func findMove(t *testing.T, b *Board, from, to Square) (Move, bool) {
	t.Helper()
	for _, m := range b.GenerateMoves() {
		if m.From() == from && m.To() == to {
			return m, true
		}
	}
	return 0, false
}

func TestMakeUnmake_NormalMove(t *testing.T) {
	b := mustParse(t, FENStartPos)
	startFEN := b.ToFEN()
	startHash := b.Hash()

	m, ok := findMove(t, b, 12, 28) // e2e4
	if !ok {
		t.Fatalf("e2e4 not generated")
	}
	applied, st := b.MakeMove(m)
	if !applied {
		t.Fatalf("MakeMove failed for e2e4")
	}
	if !b.Validate() {
		t.Fatalf("board inconsistent after MakeMove")
	}
	if b.EnPassantSquare() != 20 {
		t.Fatalf("double push should set ep square e3, got %s", b.EnPassantSquare())
	}

	b.UnmakeMove(m, st)
	if !b.Validate() {
		t.Fatalf("board inconsistent after UnmakeMove")
	}
	if got := b.ToFEN(); got != startFEN {
		t.Fatalf("FEN mismatch after unmake: got %q want %q", got, startFEN)
	}
	if b.Hash() != startHash {
		t.Fatalf("hash mismatch after unmake")
	}
}

func TestMakeUnmake_Capture(t *testing.T) {
	b := mustParse(t, "4k3/r7/8/8/8/8/8/R3K3 w - - 0 1")
	startHash := b.Hash()
	m, ok := findMove(t, b, 0, 48) // Ra1xa7
	if !ok {
		t.Fatalf("a1a7 not generated")
	}
	applied, st := b.MakeMove(m)
	if !applied {
		t.Fatalf("MakeMove failed for capture")
	}
	if m.CapturedPiece() != BlackRook {
		t.Fatalf("capture move should record the rook, got %v", m.CapturedPiece())
	}
	b.UnmakeMove(m, st)
	if b.Hash() != startHash || !b.Validate() {
		t.Fatalf("state mismatch after capture unmake")
	}
}

func TestMakeUnmake_EnPassant(t *testing.T) {
	b := mustParse(t, "k7/8/8/3pP3/8/8/8/7K w - d6 0 2")
	startHash := b.Hash()
	m, ok := findMove(t, b, 36, 43) // e5xd6 ep
	if !ok {
		t.Fatalf("en passant capture not generated")
	}
	if m.Flag() != FlagEnPassant {
		t.Fatalf("expected en passant flag, got %d", m.Flag())
	}
	applied, st := b.MakeMove(m)
	if !applied {
		t.Fatalf("MakeMove failed for en passant")
	}
	if b.PieceAt(35) != NoPiece {
		t.Fatalf("captured pawn should be gone from d5")
	}
	b.UnmakeMove(m, st)
	if b.Hash() != startHash || !b.Validate() {
		t.Fatalf("state mismatch after en passant unmake")
	}
}

func TestMakeUnmake_Castling(t *testing.T) {
	b := mustParse(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	startHash := b.Hash()
	m, ok := findMove(t, b, 4, 6) // O-O
	if !ok {
		t.Fatalf("castling not generated")
	}
	if m.Flag() != FlagCastle {
		t.Fatalf("expected castle flag, got %d", m.Flag())
	}
	applied, st := b.MakeMove(m)
	if !applied {
		t.Fatalf("MakeMove failed for castling")
	}
	if b.PieceAt(5) != WhiteRook {
		t.Fatalf("rook should be on f1 after castling, got %v", b.PieceAt(5))
	}
	if b.CastlingRights()&(CastleWhiteKing|CastleWhiteQueen) != 0 {
		t.Fatalf("white castling rights should be gone")
	}
	b.UnmakeMove(m, st)
	if b.Hash() != startHash || !b.Validate() {
		t.Fatalf("state mismatch after castling unmake")
	}
}

func TestMakeUnmake_Promotion(t *testing.T) {
	b := mustParse(t, "1n5k/P7/8/8/8/8/8/7K w - - 0 1")
	startHash := b.Hash()
	promoted := 0
	for _, m := range b.GenerateMoves() {
		if m.PromotionPiece() == NoPiece {
			continue
		}
		promoted++
		applied, st := b.MakeMove(m)
		if !applied {
			t.Fatalf("MakeMove failed for promotion %s", m)
		}
		if b.PieceAt(m.To()) != m.PromotionPiece() {
			t.Fatalf("promotion square holds %v, want %v", b.PieceAt(m.To()), m.PromotionPiece())
		}
		b.UnmakeMove(m, st)
		if b.Hash() != startHash || !b.Validate() {
			t.Fatalf("state mismatch after promotion unmake of %s", m)
		}
	}
	// A pawn on the 7th next to an enemy knight: 4 quiet + 4 capture promotions.
	if promoted != 8 {
		t.Fatalf("expected 8 promotion moves, got %d", promoted)
	}
}

func TestMakeNullMove(t *testing.T) {
	b := mustParse(t, "k7/8/8/3pP3/8/8/8/7K w - d6 0 2")
	startHash := b.Hash()
	startFEN := b.ToFEN()

	st := b.MakeNullMove()
	if b.SideToMove() != Black {
		t.Fatalf("null move should flip side to move")
	}
	if b.EnPassantSquare() != NoSquare {
		t.Fatalf("null move should clear the ep square")
	}
	if b.Hash() == startHash {
		t.Fatalf("null move should change the hash")
	}
	b.UnmakeNullMove(st)
	if b.Hash() != startHash || b.ToFEN() != startFEN {
		t.Fatalf("state mismatch after null unmake")
	}
}

// Make/unmake round trip and incremental-hash consistency over every legal
// move sequence up to depth 3 from a handful of tactical positions.
func TestMakeUnmake_RoundTripRecursive(t *testing.T) {
	fens := []string{
		FENStartPos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 0 1",
	}
	depth := 3
	if testing.Short() {
		depth = 2
	}
	for _, fen := range fens {
		b := mustParse(t, fen)
		roundTrip(t, b, depth)
	}
}

func roundTrip(t *testing.T, b *Board, depth int) {
	if depth == 0 {
		return
	}
	beforeFEN := b.ToFEN()
	beforeHash := b.Hash()
	for _, m := range b.GenerateMoves() {
		ok, st := b.MakeMove(m)
		if !ok {
			t.Fatalf("legal generator emitted illegal move %s in %s", m, beforeFEN)
		}
		if b.Hash() != b.ComputeZobrist() {
			t.Fatalf("incremental hash diverged after %s in %s", m, beforeFEN)
		}
		roundTrip(t, b, depth-1)
		b.UnmakeMove(m, st)
		if b.ToFEN() != beforeFEN || b.Hash() != beforeHash {
			t.Fatalf("round trip failed for %s in %s", m, beforeFEN)
		}
	}
}
