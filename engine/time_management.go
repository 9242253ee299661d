package engine

import (
	"sync/atomic"
	"time"

	gm "gannet-engine/gannetmg"
)

// TimeControl turns clock parameters into two deadlines. The soft deadline
// is consulted between iterative-deepening iterations: once past it, no new
// iteration starts. The hard deadline is polled inside the search and
// aborts the running iteration; the previous iteration's move stands.
type TimeControl struct {
	start        time.Time
	softDeadline time.Time
	hardDeadline time.Time
	hasDeadline  bool
	maxNodes     uint64

	// While pondering no deadline applies; ponderhit arms the clocks
	// computed at search start.
	pondering atomic.Bool

	// Best-move stability tracking for soft-limit extension.
	lastBest    gm.Move
	stableIters int
}

// estimateMovesRemaining guesses how many moves the game still has from the
// material phase, interpolating between 20 (bare endgame) and 45 (opening).
func estimateMovesRemaining(phase int) int {
	return phase*25/TotalPhase + 20
}

// NewTimeControl allocates the budget for one search.
func NewTimeControl(opts *Options, lim Limits, side gm.Color, phase int) *TimeControl {
	tc := &TimeControl{start: time.Now(), maxNodes: opts.MaxNodes}
	if lim.Nodes > 0 && (tc.maxNodes == 0 || lim.Nodes < tc.maxNodes) {
		tc.maxNodes = lim.Nodes
	}
	tc.pondering.Store(lim.Ponder)

	if lim.Infinite {
		return tc
	}
	overhead := time.Duration(opts.MoveOverhead) * time.Millisecond

	if lim.MoveTime > 0 {
		budget := time.Duration(lim.MoveTime)*time.Millisecond - overhead
		if budget < time.Millisecond {
			budget = time.Millisecond
		}
		tc.softDeadline = tc.start.Add(budget)
		tc.hardDeadline = tc.softDeadline
		tc.hasDeadline = true
		return tc
	}

	remaining, inc := lim.WTime, lim.WInc
	if side == gm.Black {
		remaining, inc = lim.BTime, lim.BInc
	}
	if remaining <= 0 {
		return tc
	}

	movesLeft := estimateMovesRemaining(phase)
	if lim.MovesToGo > 0 && lim.MovesToGo > movesLeft {
		movesLeft = lim.MovesToGo
	}

	softMs := remaining*opts.SoftTimePercent/100/movesLeft + inc*3/4 - opts.MoveOverhead
	hardMs := remaining * opts.HardTimePercent / 100
	if hardMs > 5*softMs {
		hardMs = 5 * softMs
	}
	hardMs -= opts.MoveOverhead

	if softMs < 1 {
		softMs = 1
	}
	if hardMs < softMs {
		hardMs = softMs
	}
	tc.softDeadline = tc.start.Add(time.Duration(softMs) * time.Millisecond)
	tc.hardDeadline = tc.start.Add(time.Duration(hardMs) * time.Millisecond)
	tc.hasDeadline = true
	return tc
}

// PonderHit arms the deadlines: time spent pondering counts against the
// budget, matching the deadlines computed at search start.
func (tc *TimeControl) PonderHit() { tc.pondering.Store(false) }

// Elapsed reports time since the search began.
func (tc *TimeControl) Elapsed() time.Duration { return time.Since(tc.start) }

// HardExpired is the in-search poll: past the hard deadline the current
// iteration must abort.
func (tc *TimeControl) HardExpired() bool {
	if !tc.hasDeadline || tc.pondering.Load() {
		return false
	}
	return time.Now().After(tc.hardDeadline)
}

// SoftExpired is consulted between iterations only.
func (tc *TimeControl) SoftExpired() bool {
	if !tc.hasDeadline || tc.pondering.Load() {
		return false
	}
	return time.Now().After(tc.softDeadline)
}

// NodesExpired reports whether the node budget is spent.
func (tc *TimeControl) NodesExpired(nodes uint64) bool {
	return tc.maxNodes > 0 && nodes >= tc.maxNodes
}

// UpdateStability widens the soft budget while the best move keeps
// changing between iterations, up to the hard deadline.
func (tc *TimeControl) UpdateStability(best gm.Move) {
	if !tc.hasDeadline {
		return
	}
	if best == tc.lastBest {
		tc.stableIters++
		return
	}
	tc.lastBest = best
	tc.stableIters = 0
	extended := tc.softDeadline.Add(time.Since(tc.start) / 2)
	if extended.After(tc.hardDeadline) {
		extended = tc.hardDeadline
	}
	tc.softDeadline = extended
}
