package engine

import (
	"math"

	gm "gannet-engine/gannetmg"
)

// Pruning margins, indexed by remaining depth.
var rfpMargins = [4]int32{0, 120, 220, 320}
var futilityMargins = [4]int32{0, 120, 220, 320}
var lmpMargins = [9]int{0, 3, 5, 9, 14, 20, 27, 35, 44}

const deltaMargin int32 = 200
const aspirationDelta int32 = 16

// lmrTable[depth][moveNumber] is the base late-move reduction.
var lmrTable [64][64]int8

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrTable[d][m] = int8(0.75 + math.Log(float64(d))*math.Log(float64(m))/2.25)
		}
	}
}

// repState is one entry of the repetition stack: the game line followed by
// the current search path.
type repState struct {
	hash   uint64
	rule50 int
}

// Search is the per-thread search state. Workers share the transposition
// table, the stop flag and the node counter through shared; killers,
// history and the repetition stack stay thread-local.
type Search struct {
	board    *gm.Board
	tt       *TransTable
	shared   *SharedState
	tc       *TimeControl
	limits   Limits
	workerID int
	multiPV  int

	killers  [MaxPly + 2][2]gm.Move
	history  [2][64][64]int32
	counters [2][64][64]gm.Move

	stack     []repState
	rootIndex int

	rootMoves []gm.Move
	excluded  []gm.Move

	nodes    uint64
	seldepth int
	stopped  bool
	cutStats CutStatistics
}

func (s *Search) pushState() {
	s.stack = append(s.stack, repState{s.board.Hash(), s.board.HalfmoveClock()})
}

func (s *Search) popState() {
	s.stack = s.stack[:len(s.stack)-1]
}

// isDraw covers the fifty-move rule, insufficient material, and repetition.
// A single repetition inside the current search counts as a draw (the
// opponent can force it); older game positions need the full threefold.
func (s *Search) isDraw() bool {
	top := s.stack[len(s.stack)-1]
	if top.rule50 >= 100 {
		// Mate on the move that fills the clock still wins.
		if !s.board.InCheck(s.board.SideToMove()) || s.board.HasLegalMoves() {
			return true
		}
		return false
	}
	if s.board.InsufficientMaterial() {
		return true
	}
	start := len(s.stack) - 1 - top.rule50
	if start < 0 {
		start = 0
	}
	matches := 0
	for i := len(s.stack) - 3; i >= start; i -= 2 {
		if s.stack[i].hash == top.hash {
			if i >= s.rootIndex {
				return true
			}
			matches++
			if matches >= 2 {
				return true
			}
		}
	}
	return false
}

// countNode ticks the local node counter and polls the shared limits every
// 4096 nodes: the stop flag, the hard clock, and the node budget.
func (s *Search) countNode() {
	s.nodes++
	if s.nodes&4095 != 0 {
		return
	}
	s.shared.Nodes.Add(4096)
	if s.shared.Stop.Load() || s.tc.HardExpired() || s.tc.NodesExpired(s.shared.Nodes.Load()) {
		s.shared.Stop.Store(true)
		s.stopped = true
	}
}

// hasNonPawnMaterial reports whether the side to move still has pieces;
// null-move pruning is unsound in king-and-pawn endings.
func (s *Search) hasNonPawnMaterial() bool {
	us := s.board.SideToMove()
	return s.board.PieceBB(us, gm.PieceTypeKnight)|s.board.PieceBB(us, gm.PieceTypeBishop)|
		s.board.PieceBB(us, gm.PieceTypeRook)|s.board.PieceBB(us, gm.PieceTypeQueen) != 0
}

func (s *Search) isExcludedRoot(m gm.Move) bool {
	for _, e := range s.excluded {
		if e == m {
			return true
		}
	}
	return false
}

// searchRoot runs the move loop at the root: every root move searched with
// PVS, the excluded set skipped for MultiPV re-searches.
func (s *Search) searchRoot(depth int8, alpha, beta int32, pvLine *PVLine) int32 {
	s.countNode()
	pvLine.Clear()

	hash := s.board.Hash()
	var ttMove gm.Move
	if data, ok := s.tt.Probe(hash, 0); ok {
		ttMove = data.Move
	}

	ml := s.scoreMoves(s.board, s.rootMoves, 0, ttMove, 0)
	var childPV PVLine
	bestScore := -MaxScore
	var bestMove gm.Move
	bound := BoundUpper
	legal := 0

	for i := range ml.moves {
		orderNextMove(i, &ml)
		m := ml.moves[i].move
		if s.isExcludedRoot(m) {
			continue
		}

		ok, st := s.board.MakeMove(m)
		if !ok {
			continue
		}
		s.pushState()
		legal++

		var score int32
		if legal == 1 {
			score = -s.alphabeta(-beta, -alpha, depth-1, 1, &childPV, m, false)
		} else {
			score = -s.alphabeta(-(alpha + 1), -alpha, depth-1, 1, &childPV, m, false)
			if score > alpha && score < beta {
				score = -s.alphabeta(-beta, -alpha, depth-1, 1, &childPV, m, false)
			}
		}

		s.popState()
		s.board.UnmakeMove(m, st)
		if s.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score >= beta {
			bound = BoundLower
			break
		}
		if score > alpha {
			alpha = score
			bound = BoundExact
			pvLine.Update(m, childPV)
		}
		childPV.Clear()
	}

	if legal == 0 {
		return bestScore
	}
	if !s.stopped {
		s.tt.Store(hash, depth, 0, bestMove, bestScore, Evaluate(s.board), bound)
	}
	return bestScore
}

// alphabeta is the negamax search below the root.
func (s *Search) alphabeta(alpha, beta int32, depth int8, ply int, pvLine *PVLine, prevMove gm.Move, didNull bool) int32 {
	s.countNode()
	if s.stopped {
		return 0
	}
	pvLine.Clear()
	if ply > s.seldepth {
		s.seldepth = ply
	}
	if ply >= MaxPly {
		return Evaluate(s.board)
	}
	if s.isDraw() {
		return DrawScore
	}

	// Mate distance pruning: a shorter mate was already found.
	if a := matedIn(ply); alpha < a {
		alpha = a
	}
	if b := MateScore - int32(ply); beta > b {
		beta = b
	}
	if alpha >= beta {
		return alpha
	}

	isPV := beta-alpha > 1
	inCheck := s.board.InCheck(s.board.SideToMove())
	if inCheck {
		depth++
	}
	if depth <= 0 {
		return s.quiescence(alpha, beta, ply, pvLine)
	}

	hash := s.board.Hash()
	ttData, ttHit := s.tt.Probe(hash, ply)
	var ttMove gm.Move
	if ttHit {
		ttMove = ttData.Move
		if !isPV {
			if score, ok := ttData.Usable(depth, alpha, beta); ok {
				s.cutStats.TTCutoffs++
				return score
			}
		}
	}

	var staticEval int32 = -MaxScore
	if !inCheck {
		// In-check entries store a sentinel eval; recompute in that case.
		if ttHit && ttData.Eval > -MaxScore {
			staticEval = ttData.Eval
		} else {
			staticEval = Evaluate(s.board)
		}
	}

	// Reverse futility: a static eval comfortably over beta at shallow
	// depth fails high without searching.
	if !inCheck && !isPV && depth <= 3 && abs32(beta) < MateThreshold &&
		staticEval-rfpMargins[depth] >= beta {
		s.cutStats.ReverseFutility++
		return staticEval
	}

	// Null move: hand the opponent a free move; if the reduced search still
	// fails high the real position almost certainly does too. Skipped in
	// pawn-only endings where zugzwang breaks the assumption.
	if !inCheck && !isPV && !didNull && depth >= 3 && s.hasNonPawnMaterial() {
		reduction := 2 + depth/6
		st := s.board.MakeNullMove()
		s.pushState()
		var nullPV PVLine
		score := -s.alphabeta(-beta, -beta+1, depth-1-reduction, ply+1, &nullPV, 0, true)
		s.popState()
		s.board.UnmakeNullMove(st)
		if s.stopped {
			return 0
		}
		if score >= beta && score < MateThreshold {
			s.cutStats.NullMoveCutoffs++
			return beta
		}
	}

	// No hash move at high depth means the previous pass never saw this
	// node; search one ply shallower rather than blind-ordering a deep tree.
	if ttMove == 0 && depth >= 5 {
		depth--
	}

	var buf [128]gm.Move
	moves := s.board.GenerateMovesInto(buf[:0])
	if len(moves) == 0 {
		if inCheck {
			return matedIn(ply)
		}
		return DrawScore
	}

	ml := s.scoreMoves(s.board, moves, ply, ttMove, prevMove)
	side := s.board.SideToMove()
	var childPV PVLine
	bestScore := -MaxScore
	var bestMove gm.Move
	bound := BoundUpper
	legal := 0
	var quietsTried [32]gm.Move
	numQuiets := 0

	for i := range ml.moves {
		orderNextMove(i, &ml)
		m := ml.moves[i].move
		isCapture := m.IsCapture()
		givesCheck := s.board.GivesCheck(m)
		tactical := isCapture || givesCheck || m.PromotionType() != gm.PieceTypeNone
		legal++

		// Late-move pruning: quiet moves far down the ordered list at low
		// depth are almost never best.
		if !isPV && !inCheck && !tactical && legal > 1 && depth <= 8 &&
			bestScore > -MateThreshold && legal > lmpMargins[depth] {
			s.cutStats.LateMovePrunes++
			continue
		}

		// Futility: a quiet move cannot lift a hopeless static eval past
		// alpha at shallow depth.
		if !isPV && !inCheck && !tactical && legal > 1 && depth <= 3 &&
			abs32(alpha) < MateThreshold && staticEval+futilityMargins[depth] <= alpha {
			s.cutStats.FutilityPrunes++
			continue
		}

		if !isCapture && numQuiets < len(quietsTried) {
			quietsTried[numQuiets] = m
			numQuiets++
		}

		ok, st := s.board.MakeMove(m)
		if !ok {
			legal--
			continue
		}
		s.pushState()

		var score int32
		if legal == 1 {
			score = -s.alphabeta(-beta, -alpha, depth-1, ply+1, &childPV, m, false)
		} else {
			var reduction int8
			if depth >= 3 && legal > 3 && !tactical && !inCheck {
				reduction = lmrTable[minInt(int(depth), 63)][minInt(legal, 63)]
				if isPV && reduction > 0 {
					reduction--
				}
				if m == s.killers[ply][0] || m == s.killers[ply][1] {
					reduction--
				}
				if s.history[side][m.From()][m.To()] > historyMax/2 {
					reduction--
				}
				if reduction < 0 {
					reduction = 0
				}
				if reduction > depth-2 {
					reduction = depth - 2
				}
			}
			score = -s.alphabeta(-(alpha + 1), -alpha, depth-1-reduction, ply+1, &childPV, m, false)
			if score > alpha && reduction > 0 {
				score = -s.alphabeta(-(alpha + 1), -alpha, depth-1, ply+1, &childPV, m, false)
			}
			if score > alpha && score < beta {
				score = -s.alphabeta(-beta, -alpha, depth-1, ply+1, &childPV, m, false)
			}
		}

		s.popState()
		s.board.UnmakeMove(m, st)
		if s.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score >= beta {
			s.cutStats.BetaCutoffs++
			bound = BoundLower
			if !isCapture {
				s.insertKiller(m, ply)
				s.storeCounter(side, prevMove, m)
				s.bumpHistory(side, m, depth)
				for q := 0; q < numQuiets; q++ {
					if quietsTried[q] != m {
						s.punishHistory(side, quietsTried[q], depth)
					}
				}
			}
			break
		}
		if score > alpha {
			alpha = score
			bound = BoundExact
			pvLine.Update(m, childPV)
		}
		childPV.Clear()
	}

	if legal == 0 {
		if inCheck {
			return matedIn(ply)
		}
		return DrawScore
	}
	if !s.stopped {
		s.tt.Store(hash, depth, ply, bestMove, bestScore, staticEval, bound)
	}
	return bestScore
}

// quiescence resolves captures (and evasions when in check) so the static
// eval is only trusted in quiet positions. Bounded by the capture chain:
// there is no depth counter.
func (s *Search) quiescence(alpha, beta int32, ply int, pvLine *PVLine) int32 {
	s.countNode()
	if s.stopped {
		return 0
	}
	pvLine.Clear()
	if ply > s.seldepth {
		s.seldepth = ply
	}
	if ply >= MaxPly {
		return Evaluate(s.board)
	}

	inCheck := s.board.InCheck(s.board.SideToMove())
	standPat := Evaluate(s.board)

	if !inCheck {
		if standPat >= beta {
			s.cutStats.QStandPatCutoffs++
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	bestScore := standPat
	if inCheck {
		bestScore = -MaxScore
	}

	var buf [64]gm.Move
	var moves []gm.Move
	if inCheck {
		moves = s.board.GenerateMovesInto(buf[:0])
		if len(moves) == 0 {
			return matedIn(ply)
		}
	} else {
		moves = s.board.GenerateCapturesInto(buf[:0])
	}

	var ttMove gm.Move
	if data, ok := s.tt.Probe(s.board.Hash(), ply); ok {
		ttMove = data.Move
	}
	var ml moveList
	if inCheck {
		ml = s.scoreMoves(s.board, moves, ply, ttMove, 0)
	} else {
		ml = s.scoreCaptures(moves, ttMove)
	}

	var childPV PVLine
	for i := range ml.moves {
		orderNextMove(i, &ml)
		m := ml.moves[i].move

		if !inCheck {
			// Quiet underpromotions are left to the main search.
			if !m.IsCapture() && m.PromotionType() != gm.PieceTypeQueen {
				continue
			}
			if see(s.board, m) < 0 {
				s.cutStats.QSeePrunes++
				continue
			}
			// Delta pruning: even winning the piece outright cannot reach alpha.
			gain := pieceValue[m.CapturedPiece().Type()]
			if promo := m.PromotionType(); promo != gm.PieceTypeNone {
				gain += pieceValue[promo] - pieceValue[gm.PieceTypePawn]
			}
			if standPat+gain+deltaMargin < alpha {
				continue
			}
		}

		ok, st := s.board.MakeMove(m)
		if !ok {
			continue
		}
		s.pushState()
		score := -s.quiescence(-beta, -alpha, ply+1, &childPV)
		s.popState()
		s.board.UnmakeMove(m, st)
		if s.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
		}
		if score >= beta {
			s.cutStats.QBetaCutoffs++
			return score
		}
		if score > alpha {
			alpha = score
			pvLine.Update(m, childPV)
		}
		childPV.Clear()
	}

	return bestScore
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
