package gannetmg

import (
	"sort"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
)

var agreementFENs = []string{
	FENStartPos,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 0 1",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"k7/8/8/3pP3/8/8/8/7K w - d6 0 2",
	"1n5k/P7/8/8/8/8/8/7K w - - 0 1",
	"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
	"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
	"8/8/8/8/k2Pp2Q/8/8/3K4 b - d3 0 1", // ep capture would expose the king
}

func sortedMoveStrings(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	sort.Strings(out)
	return out
}

// The pseudo-legal generator plus the make/unmake legality filter must
// produce exactly the same move set as the direct legal generator, and its
// cardinality must equal perft(1).
func TestPseudoLegalFilterAgreesWithLegal(t *testing.T) {
	for _, fen := range agreementFENs {
		b := mustParse(t, fen)

		legal := sortedMoveStrings(b.GenerateMoves())

		var filtered []Move
		for _, m := range b.GeneratePseudoMoves() {
			if ok, st := b.MakeMove(m); ok {
				b.UnmakeMove(m, st)
				filtered = append(filtered, m)
			}
		}
		filteredStrs := sortedMoveStrings(filtered)

		if len(legal) != len(filteredStrs) {
			t.Fatalf("%s: legal=%d filtered=%d\nlegal: %v\nfiltered: %v",
				fen, len(legal), len(filteredStrs), legal, filteredStrs)
		}
		for i := range legal {
			if legal[i] != filteredStrs[i] {
				t.Fatalf("%s: move sets differ at %d: %q vs %q", fen, i, legal[i], filteredStrs[i])
			}
		}
		if got := Perft(b, 1); got != uint64(len(legal)) {
			t.Fatalf("%s: perft(1)=%d but %d legal moves", fen, got, len(legal))
		}
	}
}

// dragontoothmg as an independent reference generator.
func TestLegalMovesAgreeWithDragontooth(t *testing.T) {
	for _, fen := range agreementFENs {
		b := mustParse(t, fen)
		ours := sortedMoveStrings(b.GenerateMoves())

		ref := dragontoothmg.ParseFen(fen)
		refMoves := ref.GenerateLegalMoves()
		theirs := make([]string, len(refMoves))
		for i, m := range refMoves {
			theirs[i] = m.String()
		}
		sort.Strings(theirs)

		if len(ours) != len(theirs) {
			t.Fatalf("%s: ours=%d dragontooth=%d\nours: %v\ntheirs: %v",
				fen, len(ours), len(theirs), ours, theirs)
		}
		for i := range ours {
			if ours[i] != theirs[i] {
				t.Fatalf("%s: differ at %d: %q vs %q", fen, i, ours[i], theirs[i])
			}
		}
	}
}

// notnil/chess as a second, structurally different oracle.
func TestLegalMoveCountAgreesWithNotnil(t *testing.T) {
	for _, fen := range agreementFENs {
		b := mustParse(t, fen)
		ours := len(b.GenerateMoves())

		fenOpt, err := chess.FEN(fen)
		if err != nil {
			t.Fatalf("notnil rejected %q: %v", fen, err)
		}
		game := chess.NewGame(fenOpt)
		theirs := len(game.ValidMoves())

		if ours != theirs {
			t.Fatalf("%s: ours=%d notnil=%d", fen, ours, theirs)
		}
	}
}

// Deeper perft agreement against dragontoothmg on a couple of positions.
func TestPerftAgreesWithDragontooth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping cross-engine perft in short mode")
	}
	fens := []string{
		FENStartPos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	}
	for _, fen := range fens {
		b := mustParse(t, fen)
		ref := dragontoothmg.ParseFen(fen)
		for depth := 1; depth <= 3; depth++ {
			ours := Perft(b, depth)
			theirs := uint64(dragontoothmg.Perft(&ref, depth))
			if ours != theirs {
				t.Fatalf("%s depth %d: ours=%d dragontooth=%d", fen, depth, ours, theirs)
			}
		}
	}
}
