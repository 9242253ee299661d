package engine

import (
	"testing"
	"time"

	gm "gannet-engine/gannetmg"
)

func TestTimeControlMoveTime(t *testing.T) {
	opts := DefaultOptions()
	tc := NewTimeControl(&opts, Limits{MoveTime: 500}, gm.White, TotalPhase)
	if !tc.hasDeadline {
		t.Fatalf("movetime should set deadlines")
	}
	budget := tc.hardDeadline.Sub(tc.start)
	want := 500*time.Millisecond - time.Duration(opts.MoveOverhead)*time.Millisecond
	if budget != want {
		t.Fatalf("movetime budget: got %v want %v", budget, want)
	}
	if !tc.softDeadline.Equal(tc.hardDeadline) {
		t.Fatalf("movetime should pin soft to hard")
	}
}

func TestTimeControlInfinite(t *testing.T) {
	opts := DefaultOptions()
	tc := NewTimeControl(&opts, Limits{Infinite: true}, gm.White, TotalPhase)
	if tc.hasDeadline || tc.HardExpired() || tc.SoftExpired() {
		t.Fatalf("infinite search must not expire")
	}
}

func TestTimeControlClockAllocation(t *testing.T) {
	opts := DefaultOptions()
	lim := Limits{WTime: 60000, WInc: 1000, MovesToGo: 40}
	tc := NewTimeControl(&opts, lim, gm.White, TotalPhase)

	// remaining*softPct/100/max(movestogo, est) + inc*3/4 - overhead.
	// Startpos phase gives est 45, which exceeds movestogo 40.
	wantSoft := 60000*opts.SoftTimePercent/100/45 + 1000*3/4 - opts.MoveOverhead
	gotSoft := int(tc.softDeadline.Sub(tc.start) / time.Millisecond)
	if gotSoft != wantSoft {
		t.Fatalf("soft budget: got %dms want %dms", gotSoft, wantSoft)
	}

	wantHard := 60000 * opts.HardTimePercent / 100
	if wantHard > 5*wantSoft {
		wantHard = 5 * wantSoft
	}
	wantHard -= opts.MoveOverhead
	gotHard := int(tc.hardDeadline.Sub(tc.start) / time.Millisecond)
	if gotHard != wantHard {
		t.Fatalf("hard budget: got %dms want %dms", gotHard, wantHard)
	}
}

func TestTimeControlBlackClock(t *testing.T) {
	opts := DefaultOptions()
	lim := Limits{WTime: 1, BTime: 60000, BInc: 500}
	tc := NewTimeControl(&opts, lim, gm.Black, TotalPhase)
	if !tc.hasDeadline {
		t.Fatalf("black clock should set deadlines")
	}
	if got := tc.softDeadline.Sub(tc.start); got < 100*time.Millisecond {
		t.Fatalf("black to move must budget from btime, got %v", got)
	}
}

func TestTimeControlPonder(t *testing.T) {
	opts := DefaultOptions()
	tc := NewTimeControl(&opts, Limits{WTime: 10, Ponder: true}, gm.White, 0)
	if tc.HardExpired() {
		t.Fatalf("pondering must not expire")
	}
	tc.PonderHit()
	time.Sleep(5 * time.Millisecond)
	if !tc.HardExpired() {
		t.Fatalf("after ponderhit the tiny budget should expire")
	}
}

func TestEstimateMovesRemaining(t *testing.T) {
	if got := estimateMovesRemaining(TotalPhase); got != 45 {
		t.Fatalf("full board estimate: got %d want 45", got)
	}
	if got := estimateMovesRemaining(0); got != 20 {
		t.Fatalf("bare endgame estimate: got %d want 20", got)
	}
}

func TestNodesExpired(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxNodes = 1000
	tc := NewTimeControl(&opts, Limits{}, gm.White, 0)
	if tc.NodesExpired(999) {
		t.Fatalf("not yet expired")
	}
	if !tc.NodesExpired(1000) {
		t.Fatalf("budget reached, should expire")
	}
}
