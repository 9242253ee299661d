package engine

import (
	"sync"
	"sync/atomic"

	gm "gannet-engine/gannetmg"
)

// SharedState is the only cross-thread mutable memory besides the TT:
// the stop flag owned by the protocol thread and the global node counter.
type SharedState struct {
	Stop  atomic.Bool
	Nodes atomic.Uint64
}

// Limits captures everything a "go" command can constrain.
type Limits struct {
	Depth       int
	Nodes       uint64
	MoveTime    int // milliseconds
	WTime       int
	BTime       int
	WInc        int
	BInc        int
	MovesToGo   int
	MateIn      int
	Infinite    bool
	Ponder      bool
	SearchMoves []gm.Move // parsed from/to/promotion patterns
}

// HistEntry is one played position of the game line, used to seed the
// repetition stack.
type HistEntry struct {
	Hash   uint64
	Rule50 int
}

// SearchInfo is one "info" line worth of progress data.
type SearchInfo struct {
	Depth    int
	SelDepth int
	MultiPV  int
	Score    int32
	Nodes    uint64
	NPS      uint64
	TimeMs   int64
	Hashfull int
	PV       PVLine
}

// SearchResult is the final outcome of a search.
type SearchResult struct {
	BestMove gm.Move
	Ponder   gm.Move
	Score    int32
	Depth    int
}

// workerResult is what each SMP worker hands back: the driver keeps the
// answer from the deepest completed iteration, ties broken by node count.
type workerResult struct {
	best  gm.Move
	score int32
	depth int
	nodes uint64
	pv    PVLine
}

// Engine owns the shared search state and runs searches on request. One
// instance lives for the whole UCI session.
type Engine struct {
	TT   *TransTable
	Opts Options

	shared  SharedState
	board   *gm.Board
	history []HistEntry
	tc      *TimeControl

	// Debug flag for cut statistics. The search does not read it; the
	// counters are printed only through DumpCutStats.
	PrintCutStats bool
	// LastCutStats holds the main worker's counters from the last search.
	LastCutStats CutStatistics
}

// DumpCutStats prints the last search's pruning counters through the given
// line printer.
func (e *Engine) DumpCutStats(print func(string)) {
	e.LastCutStats.dump(print)
}

// NewEngine builds an engine at the start position with default options.
func NewEngine() *Engine {
	b, _ := gm.ParseFEN(gm.FENStartPos)
	e := &Engine{
		TT:   NewTransTable(DefaultHashMB),
		Opts: DefaultOptions(),
	}
	e.SetPosition(b, nil)
	return e
}

// SetPosition installs the root position and the game line leading to it.
// The history must not include the root position itself.
func (e *Engine) SetPosition(b *gm.Board, history []HistEntry) {
	e.board = b
	e.history = append(e.history[:0], history...)
}

// Board returns the current root position.
func (e *Engine) Board() *gm.Board { return e.board }

// NewGame clears the transposition table and advances its generation.
// Only honored between searches.
func (e *Engine) NewGame() {
	e.TT.Clear()
	e.TT.NextAge()
}

// ResizeHash reallocates the TT; only honored between searches.
func (e *Engine) ResizeHash(megabytes int) {
	e.Opts.HashMB = megabytes
	e.TT.Resize(megabytes)
}

// Stop requests a cooperative stop; every worker observes it within one
// poll quantum.
func (e *Engine) Stop() { e.shared.Stop.Store(true) }

// PonderHit converts a ponder search into a normal timed one.
func (e *Engine) PonderHit() {
	if e.tc != nil {
		e.tc.PonderHit()
	}
}

// Nodes reports the global node count of the current or last search.
func (e *Engine) Nodes() uint64 { return e.shared.Nodes.Load() }

// legalRootMoves applies the searchmoves restriction to the legal move set.
func (e *Engine) legalRootMoves(lim Limits) []gm.Move {
	all := e.board.GenerateMoves()
	if len(lim.SearchMoves) == 0 {
		return all
	}
	filtered := make([]gm.Move, 0, len(all))
	for _, m := range all {
		for _, want := range lim.SearchMoves {
			if m.Matches(want) {
				filtered = append(filtered, m)
				break
			}
		}
	}
	// A searchmoves list that excludes every legal move is ignored rather
	// than mistaken for a mate or stalemate.
	if len(filtered) == 0 {
		return all
	}
	return filtered
}

// PreparedSearch is a search whose shared state is already armed. Prepare
// runs on the protocol thread so a "stop" issued any time after it is never
// lost; Run may then execute on another goroutine.
type PreparedSearch struct {
	e         *Engine
	lim       Limits
	rootMoves []gm.Move
}

// Prepare arms the stop flag, node counter, TT generation and clocks for
// one search. Must be called from the thread that owns the engine.
func (e *Engine) Prepare(lim Limits) *PreparedSearch {
	e.shared.Stop.Store(false)
	e.shared.Nodes.Store(0)
	e.TT.NextAge()
	e.tc = NewTimeControl(&e.Opts, lim, e.board.SideToMove(), GetPiecePhase(e.board))
	return &PreparedSearch{e: e, lim: lim, rootMoves: e.legalRootMoves(lim)}
}

// Search runs one search under the given limits. Lazy SMP: every worker
// runs its own iterative deepening on a private board copy with private
// killer and history tables, coordinating only through the shared TT.
// Helpers stagger their starting depth and widen their aspiration windows
// to decorrelate from the main thread. emit receives progress from the
// main worker only; pass nil to silence it.
func (e *Engine) Search(lim Limits, emit func(SearchInfo)) SearchResult {
	return e.Prepare(lim).Run(emit)
}

// Run executes a prepared search to completion and returns the result.
func (p *PreparedSearch) Run(emit func(SearchInfo)) SearchResult {
	e := p.e
	lim := p.lim
	rootMoves := p.rootMoves
	if len(rootMoves) == 0 {
		// Checkmated or stalemated: report the terminal score and no move.
		score := DrawScore
		if e.board.InCheck(e.board.SideToMove()) {
			score = matedIn(0)
		}
		if emit != nil {
			emit(SearchInfo{Depth: 1, MultiPV: 1, Score: score, TimeMs: 1})
		}
		return SearchResult{Score: score}
	}

	threads := e.Opts.Threads
	if threads < 1 {
		threads = 1
	}

	results := make([]workerResult, threads)
	var wg sync.WaitGroup
	for id := 1; id < threads; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := e.newWorker(id, lim, rootMoves)
			results[id] = w.iterate(nil)
		}(id)
	}

	main := e.newWorker(0, lim, rootMoves)
	results[0] = main.iterate(emit)
	e.LastCutStats = main.cutStats

	// The main worker finished or was stopped; release the helpers.
	e.shared.Stop.Store(true)
	wg.Wait()

	best := results[0]
	for _, r := range results[1:] {
		if r.best == 0 {
			continue
		}
		if r.depth > best.depth || (r.depth == best.depth && r.nodes > best.nodes) {
			best = r
		}
	}
	if best.best == 0 {
		best.best = rootMoves[0]
	}

	var ponder gm.Move
	if len(best.pv.Moves) >= 2 {
		ponder = best.pv.Moves[1]
	}
	return SearchResult{BestMove: best.best, Ponder: ponder, Score: best.score, Depth: best.depth}
}

// newWorker builds a per-thread Search seeded with the game history and a
// private copy of the root position.
func (e *Engine) newWorker(id int, lim Limits, rootMoves []gm.Move) *Search {
	s := &Search{
		board:     e.board.Copy(),
		tt:        e.TT,
		shared:    &e.shared,
		tc:        e.tc,
		limits:    lim,
		workerID:  id,
		multiPV:   1,
		rootMoves: append([]gm.Move(nil), rootMoves...),
		stack:     make([]repState, 0, len(e.history)+MaxPly+8),
	}
	if id == 0 {
		s.multiPV = e.Opts.MultiPV
		if s.multiPV > len(rootMoves) {
			s.multiPV = len(rootMoves)
		}
		if s.multiPV < 1 {
			s.multiPV = 1
		}
	}
	for _, h := range e.history {
		s.stack = append(s.stack, repState{h.Hash, h.Rule50})
	}
	s.stack = append(s.stack, repState{e.board.Hash(), e.board.HalfmoveClock()})
	s.rootIndex = len(s.stack) - 1
	return s
}

// iterate is the per-worker iterative deepening driver with aspiration
// windows and MultiPV handling.
func (s *Search) iterate(emit func(SearchInfo)) workerResult {
	maxDepth := s.limits.Depth
	if maxDepth <= 0 || maxDepth >= MaxPly {
		maxDepth = MaxPly - 1
	}
	startDepth := 1
	delta := aspirationDelta
	if s.workerID > 0 {
		// Helper diversification: odd workers begin one ply deeper, and all
		// helpers open wider windows than the main thread.
		startDepth += s.workerID & 1
		delta += aspirationDelta * int32(s.workerID)
	}

	prevScores := make([]int32, s.multiPV)
	rootBests := make([]gm.Move, 0, s.multiPV)
	var result workerResult

	for depth := startDepth; depth <= maxDepth; depth++ {
		// The first iteration always completes, so a stop arriving right
		// after "go" still yields a searched move.
		if depth > startDepth && (s.stopped || s.shared.Stop.Load()) {
			break
		}
		if depth > 1 && s.workerID == 0 && s.tc.SoftExpired() {
			break
		}

		rootBests = rootBests[:0]
		var iterBest gm.Move
		var iterScore int32
		var iterPV PVLine
		completed := true

		for pvIdx := 0; pvIdx < s.multiPV; pvIdx++ {
			s.excluded = rootBests
			s.seldepth = 0

			alpha, beta := -MaxScore, MaxScore
			window := delta
			if depth >= 4 {
				alpha = clamp32(prevScores[pvIdx]-window, -MaxScore, MaxScore)
				beta = clamp32(prevScores[pvIdx]+window, -MaxScore, MaxScore)
			}

			var pv PVLine
			var score int32
			for {
				score = s.searchRoot(int8(depth), alpha, beta, &pv)
				if s.stopped {
					break
				}
				if score <= alpha {
					window *= 2
					alpha = clamp32(score-window, -MaxScore, MaxScore)
					continue
				}
				if score >= beta {
					window *= 2
					beta = clamp32(score+window, -MaxScore, MaxScore)
					continue
				}
				break
			}

			if s.stopped {
				// A partial first line still beats having nothing at all.
				if pvIdx == 0 && result.best == 0 && pv.BestMove() != 0 {
					result = workerResult{best: pv.BestMove(), score: score, depth: depth, pv: pv.Clone()}
				}
				completed = false
				break
			}

			prevScores[pvIdx] = score
			rootBests = append(rootBests, pv.BestMove())
			if pvIdx == 0 {
				iterBest = pv.BestMove()
				iterScore = score
				iterPV = pv.Clone()
			}

			if emit != nil {
				elapsed := s.tc.Elapsed().Milliseconds()
				if elapsed < 1 {
					elapsed = 1
				}
				nodes := s.shared.Nodes.Load() + s.nodes&4095
				emit(SearchInfo{
					Depth:    depth,
					SelDepth: s.seldepth,
					MultiPV:  pvIdx + 1,
					Score:    score,
					Nodes:    nodes,
					NPS:      nodes * 1000 / uint64(elapsed),
					TimeMs:   elapsed,
					Hashfull: s.tt.Hashfull(),
					PV:       pv.Clone(),
				})
			}
		}

		if !completed {
			break
		}
		result = workerResult{best: iterBest, score: iterScore, depth: depth, pv: iterPV}
		if s.workerID == 0 {
			s.tc.UpdateStability(iterBest)
		}

		// A proven mate within the requested distance (or any mate when no
		// distance was given) ends the search.
		if IsMateScore(iterScore) && iterScore > 0 {
			if s.limits.MateIn == 0 || MateDistance(iterScore) <= s.limits.MateIn {
				break
			}
		}
	}

	s.shared.Nodes.Add(s.nodes & 4095)
	result.nodes = s.nodes
	return result
}
