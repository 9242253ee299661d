package gannetmg

import (
	"errors"
	"testing"
)

func TestParseFEN_RoundTrip(t *testing.T) {
	fens := []string{
		FENStartPos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"k7/8/8/3pP3/8/8/8/7K w - d6 0 2",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 0 1",
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
	}
	for _, fen := range fens {
		b, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := b.ToFEN(); got != fen {
			t.Fatalf("round trip: got %q want %q", got, fen)
		}
		if b.Hash() != b.ComputeZobrist() {
			t.Fatalf("hash mismatch for %q", fen)
		}
	}
}

// Round trip under play: every position reachable within a few plies
// survives ToFEN then ParseFEN bit-for-bit.
func TestToFEN_RoundTripUnderPlay(t *testing.T) {
	b := mustParse(t, FENStartPos)
	var walk func(depth int)
	walk = func(depth int) {
		if depth == 0 {
			return
		}
		fen := b.ToFEN()
		reparsed, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("reparse of played position %q: %v", fen, err)
		}
		if reparsed.Hash() != b.Hash() {
			t.Fatalf("hash differs after reparse of %q", fen)
		}
		moves := b.GenerateMoves()
		for i, m := range moves {
			// A thinned tree keeps the test quick while covering variety.
			if depth < 3 && i%3 != 0 {
				continue
			}
			if ok, st := b.MakeMove(m); ok {
				walk(depth - 1)
				b.UnmakeMove(m, st)
			}
		}
	}
	walk(3)
}

func TestParseFEN_Rejects(t *testing.T) {
	cases := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"too few fields", "8/8/8/8/8/8/8/8 w -"},
		{"garbage piece", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPXPP/RNBQKBNR w KQkq - 0 1"},
		{"short rank", "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"nine ranks", "8/8/8/8/8/8/8/8/8 w - - 0 1"},
		{"bad side", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1"},
		{"bad castling", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KXkq - 0 1"},
		{"bad ep square", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq i9 0 1"},
		{"ep without pawn", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e6 0 1"},
		{"no white king", "rnbq1bnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQ1BNR w - - 0 1"},
		{"two white kings", "rnbqkbnr/pppppppp/8/8/8/4K3/PPPPPPPP/RNBQKBNR w - - 0 1"},
		{"nine pawns", "rnbqkbnr/pppppppp/8/8/7P/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"pawn on back rank", "rnbqkbnP/ppppppp1/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"opponent in check", "4k3/8/8/8/8/8/4r3/4K3 b - - 0 1"},
		{"negative halfmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1"},
	}
	for _, tc := range cases {
		if _, err := ParseFEN(tc.fen); err == nil {
			t.Fatalf("%s: ParseFEN accepted %q", tc.name, tc.fen)
		} else if !errors.Is(err, ErrInvalidFen) {
			t.Fatalf("%s: error not wrapping ErrInvalidFen: %v", tc.name, err)
		}
	}
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("e2e4")
	if err != nil {
		t.Fatalf("ParseMove(e2e4): %v", err)
	}
	if m.From() != 12 || m.To() != 28 || m.PromotionType() != PieceTypeNone {
		t.Fatalf("e2e4 parsed wrong: %s", m)
	}

	m, err = ParseMove("e7e8q")
	if err != nil {
		t.Fatalf("ParseMove(e7e8q): %v", err)
	}
	if m.PromotionType() != PieceTypeQueen {
		t.Fatalf("promotion kind wrong: %s", m)
	}

	for _, bad := range []string{"", "e2", "e2e9", "i2i4", "e7e8x", "e2e4e5"} {
		if _, err := ParseMove(bad); err == nil {
			t.Fatalf("ParseMove accepted %q", bad)
		}
	}
}
