package engine

import (
	"testing"
	"time"

	gm "gannet-engine/gannetmg"
)

func newTestEngine(t *testing.T, fen string) *Engine {
	t.Helper()
	e := NewEngine()
	e.SetPosition(mustParse(t, fen), nil)
	return e
}

func TestSearchStartPositionDepth1(t *testing.T) {
	e := newTestEngine(t, gm.FENStartPos)
	var infos []SearchInfo
	result := e.Search(Limits{Depth: 1}, func(i SearchInfo) { infos = append(infos, i) })

	reasonable := map[string]bool{
		"e2e4": true, "d2d4": true, "g1f3": true, "c2c4": true, "b1c3": true,
		"e2e3": true, "d2d3": true,
	}
	if !reasonable[result.BestMove.String()] {
		t.Fatalf("depth-1 best move %s is not a sensible opening move", result.BestMove)
	}
	if len(infos) == 0 {
		t.Fatalf("no info emitted")
	}
	if infos[0].Depth != 1 {
		t.Fatalf("first info depth: got %d want 1", infos[0].Depth)
	}
	if IsMateScore(infos[0].Score) {
		t.Fatalf("start position scored as mate: %d", infos[0].Score)
	}
}

func TestSearchMateInOne(t *testing.T) {
	e := newTestEngine(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	result := e.Search(Limits{Depth: 3}, nil)

	if got := result.BestMove.String(); got != "a1a8" {
		t.Fatalf("mate in one: best move %s, want a1a8", got)
	}
	if !IsMateScore(result.Score) || MateDistance(result.Score) != 1 {
		t.Fatalf("mate in one: score %d (mate distance %d)", result.Score, MateDistance(result.Score))
	}
}

func TestSearchMateInTwo(t *testing.T) {
	// Rook ladder: 1.Ra7 Kg8 2.Rb8#.
	e := newTestEngine(t, "7k/8/8/8/8/8/R7/1R5K w - - 0 1")
	result := e.Search(Limits{Depth: 6}, nil)
	if !IsMateScore(result.Score) || result.Score <= 0 {
		t.Fatalf("mate in two not found: score %d", result.Score)
	}
	if MateDistance(result.Score) > 2 {
		t.Fatalf("mate distance %d, want <= 2", MateDistance(result.Score))
	}
}

func TestSearchStalemate(t *testing.T) {
	e := newTestEngine(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	var infos []SearchInfo
	result := e.Search(Limits{Depth: 1}, func(i SearchInfo) { infos = append(infos, i) })

	if result.BestMove != 0 {
		t.Fatalf("stalemate should yield the null move, got %s", result.BestMove)
	}
	if result.BestMove.String() != "0000" {
		t.Fatalf("null move renders %q, want 0000", result.BestMove.String())
	}
	if len(infos) == 0 || infos[0].Score != DrawScore {
		t.Fatalf("stalemate should report a draw score")
	}
}

func TestSearchCheckmatedPosition(t *testing.T) {
	e := newTestEngine(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	result := e.Search(Limits{Depth: 1}, nil)
	if result.BestMove != 0 {
		t.Fatalf("mated side has no move, got %s", result.BestMove)
	}
	if !IsMateScore(result.Score) || result.Score > 0 {
		t.Fatalf("mated side score: %d", result.Score)
	}
}

func TestSearchAvoidsRepetitionWhenWinning(t *testing.T) {
	// White is a queen up; shuffling into the third repetition would
	// throw the win away, so the draw-aware search must score repeated
	// lines as 0 and pick something else.
	board := mustParse(t, "6k1/Q7/8/8/8/8/8/6K1 w - - 0 1")
	var history []HistEntry
	moves := []string{"a7b7", "g8h8", "b7a7", "h8g8", "a7b7", "g8h8", "b7a7", "h8g8"}
	for _, ms := range moves {
		parsed, err := gm.ParseMove(ms)
		if err != nil {
			t.Fatal(err)
		}
		var mv gm.Move
		for _, legal := range board.GenerateMoves() {
			if legal.Matches(parsed) {
				mv = legal
				break
			}
		}
		if mv == 0 {
			t.Fatalf("scripted move %s not legal", ms)
		}
		history = append(history, HistEntry{Hash: board.Hash(), Rule50: board.HalfmoveClock()})
		board.MakeMove(mv)
	}

	e := NewEngine()
	e.SetPosition(board, history)
	result := e.Search(Limits{Depth: 6}, nil)

	if result.Score < 200 {
		t.Fatalf("winning side settled for %d", result.Score)
	}
	// Qa7-b7 would complete the threefold.
	if result.BestMove.String() == "a7b7" {
		t.Fatalf("search walked into the repetition")
	}
}

func TestSearchStopResponsiveness(t *testing.T) {
	e := newTestEngine(t, gm.FENStartPos)

	done := make(chan SearchResult, 1)
	go func() {
		done <- e.Search(Limits{Infinite: true}, nil)
	}()

	time.Sleep(200 * time.Millisecond)
	e.Stop()

	select {
	case result := <-done:
		if result.BestMove == 0 {
			t.Fatalf("stopped search returned no move")
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatalf("search did not stop within 50ms of the stop request")
	}
}

func TestSearchNodeLimit(t *testing.T) {
	e := newTestEngine(t, gm.FENStartPos)
	e.Search(Limits{Nodes: 20000}, nil)
	// The node budget is polled every 4096 nodes, so allow one quantum of
	// overshoot per worker.
	if nodes := e.Nodes(); nodes > 20000+8192 {
		t.Fatalf("node limit blown: %d nodes", nodes)
	}
}

func TestSearchMateLimit(t *testing.T) {
	e := newTestEngine(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	result := e.Search(Limits{MateIn: 1, Depth: 10}, nil)
	if !IsMateScore(result.Score) || MateDistance(result.Score) != 1 {
		t.Fatalf("go mate 1: score %d", result.Score)
	}
	if result.BestMove.String() != "a1a8" {
		t.Fatalf("go mate 1: best move %s", result.BestMove)
	}
}

func TestSearchMoveTime(t *testing.T) {
	e := newTestEngine(t, gm.FENStartPos)
	start := time.Now()
	result := e.Search(Limits{MoveTime: 100}, nil)
	elapsed := time.Since(start)
	if result.BestMove == 0 {
		t.Fatalf("timed search returned no move")
	}
	if elapsed > 600*time.Millisecond {
		t.Fatalf("movetime 100 took %v", elapsed)
	}
}

func TestSearchSearchMovesRestriction(t *testing.T) {
	e := newTestEngine(t, gm.FENStartPos)
	only, err := gm.ParseMove("a2a3")
	if err != nil {
		t.Fatal(err)
	}
	result := e.Search(Limits{Depth: 4, SearchMoves: []gm.Move{only}}, nil)
	if result.BestMove.String() != "a2a3" {
		t.Fatalf("searchmoves restriction ignored: got %s", result.BestMove)
	}
}

func TestSearchMultiPV(t *testing.T) {
	e := newTestEngine(t, gm.FENStartPos)
	e.Opts.MultiPV = 3
	seen := map[int]string{}
	e.Search(Limits{Depth: 4}, func(i SearchInfo) {
		seen[i.MultiPV] = i.PV.BestMove().String()
	})
	if len(seen) != 3 {
		t.Fatalf("expected 3 PV lines, got %d", len(seen))
	}
	if seen[1] == seen[2] || seen[1] == seen[3] || seen[2] == seen[3] {
		t.Fatalf("MultiPV lines repeat a root move: %v", seen)
	}
}

func TestSearchSMPTwoThreads(t *testing.T) {
	e := newTestEngine(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	e.Opts.Threads = 2
	result := e.Search(Limits{Depth: 6}, nil)
	if result.BestMove == 0 {
		t.Fatalf("SMP search returned no move")
	}
	legal := false
	for _, m := range e.Board().GenerateMoves() {
		if m == result.BestMove {
			legal = true
			break
		}
	}
	if !legal {
		t.Fatalf("SMP best move %s is not legal", result.BestMove)
	}
}

func TestSearchFiftyMoveDrawScore(t *testing.T) {
	// One reversible ply from the fifty-move draw; even a queen up, the
	// search must see 0 looming on every quiet continuation.
	e := newTestEngine(t, "6k1/Q7/8/8/8/8/8/6K1 w - - 99 80")
	result := e.Search(Limits{Depth: 4}, nil)
	if result.Score != DrawScore {
		t.Fatalf("every quiet continuation hits the 50-move draw, got %d", result.Score)
	}
}
