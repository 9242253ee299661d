package engine

import (
	gm "gannet-engine/gannetmg"
)

type scoredMove struct {
	move  gm.Move
	score int32
}

type moveList struct {
	moves []scoredMove
}

// Most Valuable Victim - Least Valuable Aggressor capture ranking.
var mvvLva = [7][7]int32{
	gm.PieceTypePawn:   {0, 14, 13, 12, 11, 10, 9},
	gm.PieceTypeKnight: {0, 24, 23, 22, 21, 20, 19},
	gm.PieceTypeBishop: {0, 34, 33, 32, 31, 30, 29},
	gm.PieceTypeRook:   {0, 44, 43, 42, 41, 40, 39},
	gm.PieceTypeQueen:  {0, 54, 53, 52, 51, 50, 49},
}

// Ordering bands. The hash move leads, then winning captures, killers,
// the counter move, history-backed quiets, losing captures, and finally
// quiets with no history behind them.
const (
	hashMoveScore       int32 = 100000
	winningCaptureScore int32 = 50000
	killerFirstScore    int32 = 40001
	killerSecondScore   int32 = 40000
	counterMoveScore    int32 = 39000
	quietHistoryOffset  int32 = 1100
	losingCaptureScore  int32 = 1000
)

// historyMax keeps quiet history scores inside their ordering band.
const historyMax = 32000

// orderNextMove selection-sorts one position: it swaps the best remaining
// move to index i. Cheaper than a full sort when a cutoff usually happens
// within the first few moves.
func orderNextMove(i int, ml *moveList) {
	best := i
	for j := i + 1; j < len(ml.moves); j++ {
		if ml.moves[j].score > ml.moves[best].score {
			best = j
		}
	}
	ml.moves[i], ml.moves[best] = ml.moves[best], ml.moves[i]
}

// scoreMoves assigns ordering scores to a full move list.
func (s *Search) scoreMoves(b *gm.Board, moves []gm.Move, ply int, ttMove, prevMove gm.Move) moveList {
	side := b.SideToMove()
	ml := moveList{moves: make([]scoredMove, len(moves))}
	for i, m := range moves {
		var score int32
		switch {
		case ttMove != 0 && m.Matches(ttMove):
			score = hashMoveScore
		case m.IsCapture() || m.PromotionType() != gm.PieceTypeNone:
			if seeScore := see(b, m); seeScore >= 0 {
				score = winningCaptureScore + mvvLva[m.CapturedPiece().Type()][m.MovedPiece().Type()]
			} else {
				score = losingCaptureScore + mvvLva[m.CapturedPiece().Type()][m.MovedPiece().Type()]
			}
		case m == s.killers[ply][0]:
			score = killerFirstScore
		case m == s.killers[ply][1]:
			score = killerSecondScore
		case prevMove != 0 && m == s.counters[side][prevMove.From()][prevMove.To()]:
			score = counterMoveScore
		default:
			if h := s.history[side][m.From()][m.To()]; h > 0 {
				score = quietHistoryOffset + h
			}
		}
		ml.moves[i] = scoredMove{move: m, score: score}
	}
	return ml
}

// scoreCaptures ranks a capture list for quiescence: hash move first, then
// MVV-LVA.
func (s *Search) scoreCaptures(moves []gm.Move, ttMove gm.Move) moveList {
	ml := moveList{moves: make([]scoredMove, len(moves))}
	for i, m := range moves {
		score := mvvLva[m.CapturedPiece().Type()][m.MovedPiece().Type()]
		if promo := m.PromotionType(); promo != gm.PieceTypeNone {
			score += pieceValue[promo]
		}
		if ttMove != 0 && m.Matches(ttMove) {
			score += hashMoveScore
		}
		ml.moves[i] = scoredMove{move: m, score: score}
	}
	return ml
}

// insertKiller records a quiet cutoff move for its ply.
func (s *Search) insertKiller(m gm.Move, ply int) {
	if s.killers[ply][0] != m {
		s.killers[ply][1] = s.killers[ply][0]
		s.killers[ply][0] = m
	}
}

// storeCounter remembers the quiet refutation of the opponent's last move.
func (s *Search) storeCounter(side gm.Color, prevMove, m gm.Move) {
	if prevMove != 0 {
		s.counters[side][prevMove.From()][prevMove.To()] = m
	}
}

// bumpHistory rewards a quiet move that caused a cutoff and decays the
// table once any counter saturates.
func (s *Search) bumpHistory(side gm.Color, m gm.Move, depth int8) {
	entry := &s.history[side][m.From()][m.To()]
	*entry += int32(depth) * int32(depth)
	if *entry >= historyMax {
		s.ageHistory(side)
	}
}

// punishHistory penalizes the quiets tried before the cutoff move.
func (s *Search) punishHistory(side gm.Color, m gm.Move, depth int8) {
	entry := &s.history[side][m.From()][m.To()]
	*entry -= int32(depth) * int32(depth)
	if *entry < 0 {
		*entry = 0
	}
}

func (s *Search) ageHistory(side gm.Color) {
	for from := 0; from < 64; from++ {
		for to := 0; to < 64; to++ {
			s.history[side][from][to] /= 2
		}
	}
}

// clearKillers forgets killer moves between searches.
func (s *Search) clearKillers() {
	for ply := range s.killers {
		s.killers[ply][0] = 0
		s.killers[ply][1] = 0
	}
}
