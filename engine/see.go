package engine

import (
	"math/bits"

	gm "gannet-engine/gannetmg"
)

// Exchange values for static exchange evaluation. The king is priced high
// enough that "capturing" it never looks profitable.
var seeValue = [7]int32{
	gm.PieceTypePawn:   100,
	gm.PieceTypeKnight: 300,
	gm.PieceTypeBishop: 300,
	gm.PieceTypeRook:   500,
	gm.PieceTypeQueen:  900,
	gm.PieceTypeKing:   10000,
}

// see runs the swap algorithm on the move's target square: both sides
// recapture with their least valuable attacker until one side stands down,
// with sliders behind the capture line revealed as pieces come off.
// Returns the expected material gain for the moving side in centipawns.
func see(b *gm.Board, m gm.Move) int32 {
	from := m.From()
	to := m.To()

	var gain [32]int32
	depth := 0

	target := m.CapturedPiece().Type()
	if m.Flag() == gm.FlagEnPassant {
		target = gm.PieceTypePawn
	}
	gain[0] = seeValue[target]
	if promo := m.PromotionType(); promo != gm.PieceTypeNone {
		gain[0] += seeValue[promo] - seeValue[gm.PieceTypePawn]
	}

	occ := b.AllOccupancy() &^ (1 << uint(from))
	if m.Flag() == gm.FlagEnPassant {
		capSq := int(to) - 8
		if b.SideToMove() == gm.Black {
			capSq = int(to) + 8
		}
		occ &^= 1 << uint(capSq)
	}

	attackers := b.AttackersTo(to, occ) & occ
	attacker := m.MovedPiece().Type()
	side := b.SideToMove().Other()

	for {
		depth++
		gain[depth] = seeValue[attacker] - gain[depth-1]

		attackerBB, pt := leastAttacker(b, attackers, side)
		if attackerBB == 0 {
			break
		}
		// Neither continuing nor stopping helps: keep this recapture in the
		// result and prune the rest of the exchange.
		if max32(-gain[depth-1], gain[depth]) < 0 {
			depth++
			break
		}
		occ &^= attackerBB
		// A vacated diagonal or file may reveal the next attacker in line.
		attackers |= gm.BishopAttacks(int(to), occ) &
			(b.PieceBB(gm.White, gm.PieceTypeBishop) | b.PieceBB(gm.Black, gm.PieceTypeBishop) |
				b.PieceBB(gm.White, gm.PieceTypeQueen) | b.PieceBB(gm.Black, gm.PieceTypeQueen))
		attackers |= gm.RookAttacks(int(to), occ) &
			(b.PieceBB(gm.White, gm.PieceTypeRook) | b.PieceBB(gm.Black, gm.PieceTypeRook) |
				b.PieceBB(gm.White, gm.PieceTypeQueen) | b.PieceBB(gm.Black, gm.PieceTypeQueen))
		attackers &= occ

		attacker = pt
		side = side.Other()
	}

	for depth--; depth > 0; depth-- {
		gain[depth-1] = -max32(-gain[depth-1], gain[depth])
	}
	return gain[0]
}

// leastAttacker picks the cheapest piece of the given side from the
// attacker set, returning its square bit and kind.
func leastAttacker(b *gm.Board, attackers uint64, side gm.Color) (uint64, gm.PieceType) {
	for pt := gm.PieceTypePawn; pt <= gm.PieceTypeKing; pt++ {
		subset := attackers & b.PieceBB(side, pt)
		if subset != 0 {
			return uint64(1) << uint(bits.TrailingZeros64(subset)), pt
		}
	}
	return 0, gm.PieceTypeNone
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
