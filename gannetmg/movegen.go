package gannetmg

import "math/bits"

// betweenBB[a][b] holds the squares strictly between a and b when they share
// a rank, file or diagonal, and 0 otherwise. Used for check evasion masks,
// pin lines and castling path tests.
var betweenBB [64][64]uint64

func init() {
	for a := 0; a < 64; a++ {
		for d := 0; d < 4; d++ {
			for r := rookRays[a][d]; r != 0; {
				b := popLSB(&r)
				betweenBB[a][b] = rookRays[a][d] &^ rookRays[b][d] &^ bb(Square(b))
			}
			for r := bishopRays[a][d]; r != 0; {
				b := popLSB(&r)
				betweenBB[a][b] = bishopRays[a][d] &^ bishopRays[b][d] &^ bb(Square(b))
			}
		}
	}
}

// checkInfo carries the check and pin state for the side to move.
type checkInfo struct {
	inCheck     bool
	doubleCheck bool
	// Squares a non-king move may target when in single check: the checker
	// itself or a square blocking the checking ray.
	checkMask uint64
	// pinLine[sq] restricts a pinned piece to its pin ray; 0 means unpinned.
	pinLine [64]uint64
}

// computeCheckInfo finds the checkers on the side-to-move's king and the
// absolute pins against it.
func (b *Board) computeCheckInfo(side Color, occ uint64) (ci checkInfo) {
	us, them := side, side.Other()
	ksq := b.KingSquare(us)
	if ksq == NoSquare {
		return ci
	}
	ks := int(ksq)

	checkers := pawnAttackBB[us][ks] & b.pieceBB[them][PieceTypePawn]
	checkers |= knightAttacks[ks] & b.pieceBB[them][PieceTypeKnight]
	diagSliders := b.pieceBB[them][PieceTypeBishop] | b.pieceBB[them][PieceTypeQueen]
	orthoSliders := b.pieceBB[them][PieceTypeRook] | b.pieceBB[them][PieceTypeQueen]
	checkers |= BishopAttacks(ks, occ) & diagSliders
	checkers |= RookAttacks(ks, occ) & orthoSliders

	ci.inCheck = checkers != 0
	ci.doubleCheck = checkers&(checkers-1) != 0
	if ci.inCheck && !ci.doubleCheck {
		c := bits.TrailingZeros64(checkers)
		ci.checkMask = checkers | betweenBB[ks][c]
	}

	// A piece of ours is pinned when it is the only blocker between our king
	// and an enemy slider on a shared line.
	candidates := RookAttacks(ks, b.occupancy[them]) & orthoSliders
	candidates |= BishopAttacks(ks, b.occupancy[them]) & diagSliders
	for candidates != 0 {
		s := popLSB(&candidates)
		blockers := betweenBB[ks][s] & occ
		if blockers != 0 && blockers&(blockers-1) == 0 && blockers&b.occupancy[us] != 0 {
			pinned := bits.TrailingZeros64(blockers)
			ci.pinLine[pinned] = betweenBB[ks][s] | 1<<uint(s)
		}
	}
	return ci
}

// Generation filters for the selective generators.
const (
	genAll = iota
	genCaptures
	genQuiets
)

// GenerateMoves returns all legal moves for the side to move.
func (b *Board) GenerateMoves() []Move { return b.GenerateMovesInto(make([]Move, 0, 128)) }

// GenerateMovesInto appends all legal moves into dst (truncated and reused).
func (b *Board) GenerateMovesInto(dst []Move) []Move {
	return b.generateFiltered(dst, genAll)
}

// GenerateCapturesInto appends legal captures, including en passant, and
// every promotion, quiet or capturing.
func (b *Board) GenerateCapturesInto(dst []Move) []Move {
	return b.generateFiltered(dst, genCaptures)
}

// GenerateQuietsInto appends legal non-captures other than promotions,
// including castling. Quiet promotions come from GenerateCapturesInto.
func (b *Board) GenerateQuietsInto(dst []Move) []Move {
	return b.generateFiltered(dst, genQuiets)
}

// generateFiltered is the legal generator: set-wise pseudo-legal target
// computation restricted by check and pin masks, with simulated-occupancy
// verification for the two cases masks cannot express (king steps and en
// passant discoveries).
func (b *Board) generateFiltered(dst []Move, filter int) []Move {
	moves := dst[:0]
	us := b.sideToMove
	them := us.Other()
	ownOcc := b.occupancy[us]
	oppOcc := b.occupancy[them]
	allOcc := ownOcc | oppOcc
	ksq := b.KingSquare(us)

	ci := b.computeCheckInfo(us, allOcc)

	// targetOK folds the double-check, pin and evasion restrictions for a
	// non-king move from 'from' to 'to'.
	targetOK := func(from, to int) bool {
		if ci.doubleCheck {
			return false
		}
		if pin := ci.pinLine[from]; pin != 0 && pin&(1<<uint(to)) == 0 {
			return false
		}
		if ci.inCheck && ci.checkMask&(1<<uint(to)) == 0 {
			return false
		}
		return true
	}

	// Pawns. Direction-parameterized so both colors share one body.
	push, startRank, promoRank := 8, 1, 7
	if us == Black {
		push, startRank, promoRank = -8, 6, 0
	}
	appendPromotions := func(from, to Square, moved, captured Piece) {
		moves = append(moves,
			NewMove(from, to, moved, captured, PieceFromType(us, PieceTypeQueen), FlagNone),
			NewMove(from, to, moved, captured, PieceFromType(us, PieceTypeRook), FlagNone),
			NewMove(from, to, moved, captured, PieceFromType(us, PieceTypeBishop), FlagNone),
			NewMove(from, to, moved, captured, PieceFromType(us, PieceTypeKnight), FlagNone),
		)
	}
	for pawns := b.pieceBB[us][PieceTypePawn]; pawns != 0; {
		from := popLSB(&pawns)
		moved := b.pieces[from]

		one := from + push
		if allOcc&(1<<uint(one)) == 0 {
			if targetOK(from, one) {
				// Promotions count as tactical: they are produced by the
				// capture generator and withheld from the quiet one.
				if one>>3 == promoRank {
					if filter != genQuiets {
						appendPromotions(Square(from), Square(one), moved, NoPiece)
					}
				} else if filter != genCaptures {
					moves = append(moves, NewMove(Square(from), Square(one), moved, NoPiece, NoPiece, FlagNone))
				}
			}
			if filter != genCaptures && from>>3 == startRank {
				two := one + push
				if allOcc&(1<<uint(two)) == 0 && targetOK(from, two) {
					moves = append(moves, NewMove(Square(from), Square(two), moved, NoPiece, NoPiece, FlagDoublePush))
				}
			}
		}

		if filter == genQuiets {
			continue
		}
		for caps := pawnAttackBB[us][from] & oppOcc; caps != 0; {
			to := popLSB(&caps)
			if !targetOK(from, to) {
				continue
			}
			captured := b.pieces[to]
			if to>>3 == promoRank {
				appendPromotions(Square(from), Square(to), moved, captured)
			} else {
				moves = append(moves, NewMove(Square(from), Square(to), moved, captured, NoPiece, FlagNone))
			}
		}

		// En passant cannot rely on the pin masks: removing two pawns from
		// the same rank can discover a rook check, so simulate and verify.
		if b.epSquare != NoSquare && pawnAttackBB[us][from]&bb(b.epSquare) != 0 {
			ep := int(b.epSquare)
			capSq := ep - push
			simOcc := allOcc&^(1<<uint(from))&^(1<<uint(capSq)) | 1<<uint(ep)
			if ksq != NoSquare && !b.isSquareAttackedWithOcc(int(ksq), them, simOcc) {
				moves = append(moves, NewMove(Square(from), Square(ep), moved,
					PieceFromType(them, PieceTypePawn), NoPiece, FlagEnPassant))
			}
		}
	}

	// Knights and sliders share one loop over attack-set producers.
	if !ci.doubleCheck {
		for pt := PieceTypeKnight; pt <= PieceTypeQueen; pt++ {
			for pieces := b.pieceBB[us][pt]; pieces != 0; {
				from := popLSB(&pieces)
				moved := b.pieces[from]

				var targets uint64
				switch pt {
				case PieceTypeKnight:
					targets = knightAttacks[from]
				case PieceTypeBishop:
					targets = BishopAttacks(from, allOcc)
				case PieceTypeRook:
					targets = RookAttacks(from, allOcc)
				case PieceTypeQueen:
					targets = QueenAttacks(from, allOcc)
				}
				targets &^= ownOcc
				if pin := ci.pinLine[from]; pin != 0 {
					targets &= pin
				}
				if ci.inCheck {
					targets &= ci.checkMask
				}
				switch filter {
				case genCaptures:
					targets &= oppOcc
				case genQuiets:
					targets &^= oppOcc
				}
				for targets != 0 {
					to := popLSB(&targets)
					moves = append(moves, NewMove(Square(from), Square(to), moved, b.pieces[to], NoPiece, FlagNone))
				}
			}
		}
	}

	// King steps: verify against occupancy with the king removed, so backing
	// away along a checking ray is still detected as illegal.
	if ksq != NoSquare {
		from := int(ksq)
		moved := b.pieces[from]
		targets := kingAttacks[from] &^ ownOcc
		switch filter {
		case genCaptures:
			targets &= oppOcc
		case genQuiets:
			targets &^= oppOcc
		}
		for targets != 0 {
			to := popLSB(&targets)
			simOcc := allOcc&^(1<<uint(from)) | 1<<uint(to)
			if b.isSquareAttackedWithOcc(to, them, simOcc) {
				continue
			}
			moves = append(moves, NewMove(Square(from), Square(to), moved, b.pieces[to], NoPiece, FlagNone))
		}

		if filter != genCaptures && !ci.inCheck {
			moves = b.appendCastles(moves, us, allOcc)
		}
	}

	return moves
}

// castleSpec describes one castling move: the required right, the king's
// path, the squares that must be empty, and the rook's home square.
type castleSpec struct {
	right      CastlingRights
	kingFrom   Square
	kingTo     Square
	transit    Square
	emptyMask  uint64
	rookHome   Square
	rookNeeded Piece
}

var castleSpecs = [2][2]castleSpec{
	White: {
		{CastleWhiteKing, 4, 6, 5, bb(5) | bb(6), 7, WhiteRook},
		{CastleWhiteQueen, 4, 2, 3, bb(1) | bb(2) | bb(3), 0, WhiteRook},
	},
	Black: {
		{CastleBlackKing, 60, 62, 61, bb(61) | bb(62), 63, BlackRook},
		{CastleBlackQueen, 60, 58, 59, bb(57) | bb(58) | bb(59), 56, BlackRook},
	},
}

// appendCastles emits the legal castling moves. The caller has already
// established the king is not in check.
func (b *Board) appendCastles(moves []Move, us Color, occ uint64) []Move {
	them := us.Other()
	for _, spec := range castleSpecs[us] {
		if b.castling&spec.right == 0 {
			continue
		}
		if occ&spec.emptyMask != 0 || b.pieces[spec.rookHome] != spec.rookNeeded {
			continue
		}
		if b.isSquareAttackedWithOcc(int(spec.transit), them, occ) ||
			b.isSquareAttackedWithOcc(int(spec.kingTo), them, occ) {
			continue
		}
		moves = append(moves, NewMove(spec.kingFrom, spec.kingTo,
			PieceFromType(us, PieceTypeKing), NoPiece, NoPiece, FlagCastle))
	}
	return moves
}

// GeneratePseudoMoves returns moves obeying piece rules and blockers but
// without any king-safety filtering. Castling requires rights and an empty
// path but ignores attacked squares. Paired with the make/unmake legality
// filter this must produce exactly the legal move set; tests enforce the
// agreement against GenerateMoves.
func (b *Board) GeneratePseudoMoves() []Move {
	return b.GeneratePseudoMovesInto(make([]Move, 0, 128))
}

// GeneratePseudoMovesInto appends all pseudo-legal moves into dst.
func (b *Board) GeneratePseudoMovesInto(dst []Move) []Move {
	moves := dst[:0]
	us := b.sideToMove
	them := us.Other()
	ownOcc := b.occupancy[us]
	oppOcc := b.occupancy[them]
	allOcc := ownOcc | oppOcc

	push, startRank, promoRank := 8, 1, 7
	if us == Black {
		push, startRank, promoRank = -8, 6, 0
	}
	appendPromotions := func(from, to Square, moved, captured Piece) []Move {
		return append(moves,
			NewMove(from, to, moved, captured, PieceFromType(us, PieceTypeQueen), FlagNone),
			NewMove(from, to, moved, captured, PieceFromType(us, PieceTypeRook), FlagNone),
			NewMove(from, to, moved, captured, PieceFromType(us, PieceTypeBishop), FlagNone),
			NewMove(from, to, moved, captured, PieceFromType(us, PieceTypeKnight), FlagNone),
		)
	}
	for pawns := b.pieceBB[us][PieceTypePawn]; pawns != 0; {
		from := popLSB(&pawns)
		moved := b.pieces[from]
		one := from + push
		if allOcc&(1<<uint(one)) == 0 {
			if one>>3 == promoRank {
				moves = appendPromotions(Square(from), Square(one), moved, NoPiece)
			} else {
				moves = append(moves, NewMove(Square(from), Square(one), moved, NoPiece, NoPiece, FlagNone))
				if from>>3 == startRank {
					two := one + push
					if allOcc&(1<<uint(two)) == 0 {
						moves = append(moves, NewMove(Square(from), Square(two), moved, NoPiece, NoPiece, FlagDoublePush))
					}
				}
			}
		}
		for caps := pawnAttackBB[us][from] & oppOcc; caps != 0; {
			to := popLSB(&caps)
			captured := b.pieces[to]
			if to>>3 == promoRank {
				moves = appendPromotions(Square(from), Square(to), moved, captured)
			} else {
				moves = append(moves, NewMove(Square(from), Square(to), moved, captured, NoPiece, FlagNone))
			}
		}
		if b.epSquare != NoSquare && pawnAttackBB[us][from]&bb(b.epSquare) != 0 {
			moves = append(moves, NewMove(Square(from), b.epSquare, moved,
				PieceFromType(them, PieceTypePawn), NoPiece, FlagEnPassant))
		}
	}

	for pt := PieceTypeKnight; pt <= PieceTypeKing; pt++ {
		for pieces := b.pieceBB[us][pt]; pieces != 0; {
			from := popLSB(&pieces)
			moved := b.pieces[from]
			var targets uint64
			switch pt {
			case PieceTypeKnight:
				targets = knightAttacks[from]
			case PieceTypeBishop:
				targets = BishopAttacks(from, allOcc)
			case PieceTypeRook:
				targets = RookAttacks(from, allOcc)
			case PieceTypeQueen:
				targets = QueenAttacks(from, allOcc)
			case PieceTypeKing:
				targets = kingAttacks[from]
			}
			targets &^= ownOcc
			for targets != 0 {
				to := popLSB(&targets)
				moves = append(moves, NewMove(Square(from), Square(to), moved, b.pieces[to], NoPiece, FlagNone))
			}
		}
	}

	for _, spec := range castleSpecs[us] {
		if b.castling&spec.right != 0 && allOcc&spec.emptyMask == 0 &&
			b.pieces[spec.rookHome] == spec.rookNeeded {
			moves = append(moves, NewMove(spec.kingFrom, spec.kingTo,
				PieceFromType(us, PieceTypeKing), NoPiece, NoPiece, FlagCastle))
		}
	}

	return moves
}

// GivesCheck reports whether the move, assumed legal for the side to move,
// checks the opposing king. Works on simulated bitboards without mutating
// the board.
func (b *Board) GivesCheck(m Move) bool {
	us := b.sideToMove
	them := us.Other()
	ksq := b.KingSquare(them)
	if ksq == NoSquare {
		return false
	}
	ks := int(ksq)
	kBit := bb(ksq)

	from := int(m.From())
	to := int(m.To())
	occ := b.AllOccupancy() &^ (1 << uint(from))

	if m.Flag() == FlagEnPassant {
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		occ &^= 1 << uint(capSq)
	}
	occ |= 1 << uint(to)

	// Castling moves the rook as well; only the rook can deliver the check.
	if m.Flag() == FlagCastle {
		for _, spec := range castleSpecs[us] {
			if spec.kingTo == m.To() {
				occ = occ&^bb(spec.rookHome) | bb(spec.transit)
				if RookAttacks(ks, occ)&bb(spec.transit) != 0 {
					return true
				}
			}
		}
		return false
	}

	// Direct check from the piece landing on 'to'.
	landed := m.MovedPiece().Type()
	if promo := m.PromotionType(); promo != PieceTypeNone {
		landed = promo
	}
	switch landed {
	case PieceTypePawn:
		if pawnAttackBB[us][to]&kBit != 0 {
			return true
		}
	case PieceTypeKnight:
		if knightAttacks[to]&kBit != 0 {
			return true
		}
	case PieceTypeBishop:
		if BishopAttacks(to, occ)&kBit != 0 {
			return true
		}
	case PieceTypeRook:
		if RookAttacks(to, occ)&kBit != 0 {
			return true
		}
	case PieceTypeQueen:
		if QueenAttacks(to, occ)&kBit != 0 {
			return true
		}
	}

	// Discovered check through the vacated square.
	rq := b.pieceBB[us][PieceTypeRook] | b.pieceBB[us][PieceTypeQueen]
	bq := b.pieceBB[us][PieceTypeBishop] | b.pieceBB[us][PieceTypeQueen]
	movedMask := uint64(1) << uint(from)
	if RookAttacks(ks, occ)&rq&^movedMask != 0 {
		return true
	}
	if BishopAttacks(ks, occ)&bq&^movedMask != 0 {
		return true
	}
	return false
}
