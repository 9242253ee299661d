package gannetmg

import "math/bits"

// Precomputed attack masks, filled once at package init and read-only after.
var knightAttacks [64]uint64
var kingAttacks [64]uint64
var pawnAttackBB [2][64]uint64

// Directional rays for the sliders, excluding the origin square.
// Rook directions: 0=N 1=S 2=E 3=W. Bishop directions: 0=NE 1=NW 2=SE 3=SW.
var rookRays [64][4]uint64
var bishopRays [64][4]uint64

// Whether square indices grow along each direction, used to pick the first
// blocker with TrailingZeros vs LeadingZeros.
var rookDirAscending = [4]bool{true, false, true, false}
var bishopDirAscending = [4]bool{true, true, false, false}

// Occupancy masks and attack tables for pext-indexed slider lookups.
var rookMask [64]uint64
var bishopMask [64]uint64
var rookAttackTable [64][]uint64
var bishopAttackTable [64][]uint64

func init() {
	initLeaperTables()
	initRays()
	initSliderTables()
}

func initLeaperTables() {
	knightOffsets := [8][2]int{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
	kingOffsets := [8][2]int{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	for sq := 0; sq < 64; sq++ {
		rank, file := sq>>3, sq&7
		for _, off := range knightOffsets {
			r, f := rank+off[0], file+off[1]
			if r >= 0 && r < 8 && f >= 0 && f < 8 {
				knightAttacks[sq] |= 1 << uint(r*8+f)
			}
		}
		for _, off := range kingOffsets {
			r, f := rank+off[0], file+off[1]
			if r >= 0 && r < 8 && f >= 0 && f < 8 {
				kingAttacks[sq] |= 1 << uint(r*8+f)
			}
		}
		if rank < 7 {
			if file > 0 {
				pawnAttackBB[White][sq] |= 1 << uint(sq+7)
			}
			if file < 7 {
				pawnAttackBB[White][sq] |= 1 << uint(sq+9)
			}
		}
		if rank > 0 {
			if file > 0 {
				pawnAttackBB[Black][sq] |= 1 << uint(sq-9)
			}
			if file < 7 {
				pawnAttackBB[Black][sq] |= 1 << uint(sq-7)
			}
		}
	}
}

// ray walks from sq by (dr, df) collecting squares until the edge.
func ray(sq, dr, df int) uint64 {
	var mask uint64
	r, f := sq>>3+dr, sq&7+df
	for r >= 0 && r < 8 && f >= 0 && f < 8 {
		mask |= 1 << uint(r*8+f)
		r += dr
		f += df
	}
	return mask
}

func initRays() {
	rookDeltas := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDeltas := [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	for sq := 0; sq < 64; sq++ {
		for d := 0; d < 4; d++ {
			rookRays[sq][d] = ray(sq, rookDeltas[d][0], rookDeltas[d][1])
			bishopRays[sq][d] = ray(sq, bishopDeltas[d][0], bishopDeltas[d][1])
		}
	}
}

// firstBlocker returns the square index of the nearest occupied square along
// a ray, given whether indices grow along the direction.
func firstBlocker(blockers uint64, ascending bool) int {
	if ascending {
		return bits.TrailingZeros64(blockers)
	}
	return 63 - bits.LeadingZeros64(blockers)
}

// rookAttacksSlow scans the four orthogonal rays against an occupancy mask.
// Used to seed the lookup tables; the hot path goes through RookAttacks.
func rookAttacksSlow(sq int, occ uint64) uint64 {
	var attacks uint64
	for d := 0; d < 4; d++ {
		r := rookRays[sq][d]
		if blockers := r & occ; blockers != 0 {
			r &^= rookRays[firstBlocker(blockers, rookDirAscending[d])][d]
		}
		attacks |= r
	}
	return attacks
}

func bishopAttacksSlow(sq int, occ uint64) uint64 {
	var attacks uint64
	for d := 0; d < 4; d++ {
		r := bishopRays[sq][d]
		if blockers := r & occ; blockers != 0 {
			r &^= bishopRays[firstBlocker(blockers, bishopDirAscending[d])][d]
		}
		attacks |= r
	}
	return attacks
}

// initSliderTables enumerates every blocker subset of each square's relevant
// occupancy mask and tabulates the resulting attack set, indexed by software
// pext. Edge squares are excluded from the masks as they never block deeper.
func initSliderTables() {
	for sq := 0; sq < 64; sq++ {
		rank, file := sq>>3, sq&7
		var rm, bm uint64
		for r := rank + 1; r < 7; r++ {
			rm |= 1 << uint(r*8+file)
		}
		for r := rank - 1; r > 0; r-- {
			rm |= 1 << uint(r*8+file)
		}
		for f := file + 1; f < 7; f++ {
			rm |= 1 << uint(rank*8+f)
		}
		for f := file - 1; f > 0; f-- {
			rm |= 1 << uint(rank*8+f)
		}
		for r, f := rank+1, file+1; r < 7 && f < 7; r, f = r+1, f+1 {
			bm |= 1 << uint(r*8+f)
		}
		for r, f := rank+1, file-1; r < 7 && f > 0; r, f = r+1, f-1 {
			bm |= 1 << uint(r*8+f)
		}
		for r, f := rank-1, file+1; r > 0 && f < 7; r, f = r-1, f+1 {
			bm |= 1 << uint(r*8+f)
		}
		for r, f := rank-1, file-1; r > 0 && f > 0; r, f = r-1, f-1 {
			bm |= 1 << uint(r*8+f)
		}
		rookMask[sq] = rm
		bishopMask[sq] = bm

		rookAttackTable[sq] = make([]uint64, 1<<uint(bits.OnesCount64(rm)))
		for idx := range rookAttackTable[sq] {
			rookAttackTable[sq][idx] = rookAttacksSlow(sq, pdep(uint64(idx), rm))
		}
		bishopAttackTable[sq] = make([]uint64, 1<<uint(bits.OnesCount64(bm)))
		for idx := range bishopAttackTable[sq] {
			bishopAttackTable[sq][idx] = bishopAttacksSlow(sq, pdep(uint64(idx), bm))
		}
	}
}

// pext packs the bits of x selected by mask into the low bits of the result.
func pext(x, mask uint64) uint64 {
	var res uint64
	var idx uint
	for m := mask; m != 0; m &= m - 1 {
		if x>>uint(bits.TrailingZeros64(m))&1 != 0 {
			res |= 1 << idx
		}
		idx++
	}
	return res
}

// pdep deposits the low bits of x into the positions selected by mask.
func pdep(x, mask uint64) uint64 {
	var res uint64
	var idx uint
	for m := mask; m != 0; m &= m - 1 {
		if x>>idx&1 != 0 {
			res |= 1 << uint(bits.TrailingZeros64(m))
		}
		idx++
	}
	return res
}

// RookAttacks returns the rook attack set from sq under the occupancy mask.
func RookAttacks(sq int, occ uint64) uint64 {
	return rookAttackTable[sq][pext(occ, rookMask[sq])]
}

// BishopAttacks returns the bishop attack set from sq under the occupancy mask.
func BishopAttacks(sq int, occ uint64) uint64 {
	return bishopAttackTable[sq][pext(occ, bishopMask[sq])]
}

// QueenAttacks returns the queen attack set from sq under the occupancy mask.
func QueenAttacks(sq int, occ uint64) uint64 {
	return RookAttacks(sq, occ) | BishopAttacks(sq, occ)
}

// PawnAttacks returns the squares a pawn of the given color attacks from sq.
func PawnAttacks(c Color, sq int) uint64 { return pawnAttackBB[c][sq] }

// KnightAttackSet returns the knight attack mask from sq.
func KnightAttackSet(sq int) uint64 { return knightAttacks[sq] }

// KingAttackSet returns the king attack mask from sq.
func KingAttackSet(sq int) uint64 { return kingAttacks[sq] }

// AttackersTo returns a bitboard of every piece of both colors attacking sq
// under the given occupancy. The single query behind check detection,
// legality filtering and static exchange evaluation.
func (b *Board) AttackersTo(sq Square, occ uint64) uint64 {
	s := int(sq)
	attackers := pawnAttackBB[Black][s] & b.pieceBB[White][PieceTypePawn]
	attackers |= pawnAttackBB[White][s] & b.pieceBB[Black][PieceTypePawn]
	attackers |= knightAttacks[s] & (b.pieceBB[White][PieceTypeKnight] | b.pieceBB[Black][PieceTypeKnight])
	attackers |= kingAttacks[s] & (b.pieceBB[White][PieceTypeKing] | b.pieceBB[Black][PieceTypeKing])
	rq := b.pieceBB[White][PieceTypeRook] | b.pieceBB[Black][PieceTypeRook] |
		b.pieceBB[White][PieceTypeQueen] | b.pieceBB[Black][PieceTypeQueen]
	bq := b.pieceBB[White][PieceTypeBishop] | b.pieceBB[Black][PieceTypeBishop] |
		b.pieceBB[White][PieceTypeQueen] | b.pieceBB[Black][PieceTypeQueen]
	attackers |= RookAttacks(s, occ) & rq
	attackers |= BishopAttacks(s, occ) & bq
	return attackers
}

// IsSquareAttacked reports whether the given side attacks sq.
func (b *Board) IsSquareAttacked(sq Square, by Color) bool {
	return b.isSquareAttackedWithOcc(int(sq), by, b.AllOccupancy())
}

func (b *Board) isSquareAttackedWithOcc(s int, by Color, occ uint64) bool {
	// Pawns attack backwards from the target's perspective. A pawn missing
	// from occ (the en-passant victim in a simulation) does not attack.
	if pawnAttackBB[by.Other()][s]&b.pieceBB[by][PieceTypePawn]&occ != 0 {
		return true
	}
	if knightAttacks[s]&b.pieceBB[by][PieceTypeKnight] != 0 {
		return true
	}
	if kingAttacks[s]&b.pieceBB[by][PieceTypeKing] != 0 {
		return true
	}
	rq := b.pieceBB[by][PieceTypeRook] | b.pieceBB[by][PieceTypeQueen]
	if rq != 0 && RookAttacks(s, occ)&rq != 0 {
		return true
	}
	bq := b.pieceBB[by][PieceTypeBishop] | b.pieceBB[by][PieceTypeQueen]
	if bq != 0 && BishopAttacks(s, occ)&bq != 0 {
		return true
	}
	return false
}
