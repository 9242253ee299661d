package engine

import (
	"math/bits"

	gm "gannet-engine/gannetmg"
)

// Piece values in centipawns, shared by both game phases; the PSQT and the
// remaining terms carry the midgame/endgame taper.
var pieceValue = [7]int32{
	gm.PieceTypePawn:   100,
	gm.PieceTypeKnight: 320,
	gm.PieceTypeBishop: 330,
	gm.PieceTypeRook:   500,
	gm.PieceTypeQueen:  900,
}

// Game phase weights. Phase runs from TotalPhase (all pieces on) to 0.
const (
	knightPhase = 1
	bishopPhase = 1
	rookPhase   = 2
	queenPhase  = 4
	TotalPhase  = knightPhase*4 + bishopPhase*4 + rookPhase*4 + queenPhase*2
)

// Piece-square tables from White's perspective; Black indexes with sq^56.
var psqtMG = [7][64]int32{
	gm.PieceTypePawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -20, -20, 10, 10, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	gm.PieceTypeKnight: {
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	gm.PieceTypeBishop: {
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	gm.PieceTypeRook: {
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	gm.PieceTypeQueen: {
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-10, 5, 5, 5, 5, 5, 0, -10,
		0, 0, 5, 5, 5, 5, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	gm.PieceTypeKing: {
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	},
}

var psqtEG = [7][64]int32{
	gm.PieceTypePawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 5, 5, 5, 5, 5, 5, 5,
		10, 10, 10, 10, 10, 10, 10, 10,
		20, 20, 20, 20, 20, 20, 20, 20,
		35, 35, 35, 35, 35, 35, 35, 35,
		60, 60, 60, 60, 60, 60, 60, 60,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	gm.PieceTypeKnight: {
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	gm.PieceTypeBishop: {
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	gm.PieceTypeRook: {
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 5, 5, 5, 5, 5, 5, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	gm.PieceTypeQueen: {
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-5, 0, 5, 10, 10, 5, 0, -5,
		-5, 0, 5, 10, 10, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	gm.PieceTypeKing: {
		-50, -30, -30, -30, -30, -30, -30, -50,
		-30, -30, 0, 0, 0, 0, -30, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -20, -10, 0, 0, -10, -20, -30,
		-50, -40, -30, -20, -20, -30, -40, -50,
	},
}

// Pawn structure terms.
const (
	doubledPawnPenalty  int32 = 10
	isolatedPawnPenalty int32 = 15
	backwardPawnPenalty int32 = 8
	bishopPairBonusEG   int32 = 30
	tempoBonus          int32 = 10
)

// Passed pawn bonus by rank from the pawn's own side.
var passedBonusMG = [8]int32{0, 5, 10, 20, 35, 60, 100, 0}
var passedBonusEG = [8]int32{0, 10, 20, 35, 60, 100, 150, 0}

// Mobility weight per move, by piece kind.
var mobilityMG = [7]int32{gm.PieceTypeKnight: 4, gm.PieceTypeBishop: 3, gm.PieceTypeRook: 2, gm.PieceTypeQueen: 1}
var mobilityEG = [7]int32{gm.PieceTypeKnight: 4, gm.PieceTypeBishop: 3, gm.PieceTypeRook: 4, gm.PieceTypeQueen: 2}

// King attack units per attacking piece kind, mapped through kingDangerTable.
var kingAttackUnit = [7]int32{gm.PieceTypeKnight: 2, gm.PieceTypeBishop: 2, gm.PieceTypeRook: 3, gm.PieceTypeQueen: 5}

var kingDangerTable = [32]int32{
	0, 0, 4, 9, 16, 25, 36, 49, 62, 77, 92, 108, 124, 140, 156, 172,
	188, 204, 220, 236, 252, 268, 284, 300, 316, 332, 348, 364, 380, 396, 412, 428,
}

const pawnShieldBonus int32 = 8

// File and span masks, derived once at init.
var fileMask [8]uint64
var adjacentFilesMask [8]uint64
var passedMask [2][64]uint64 // enemy pawns here stop the pawn being passed
var frontSpanMask [2][64]uint64

func init() {
	for f := 0; f < 8; f++ {
		fileMask[f] = 0x0101010101010101 << uint(f)
	}
	for f := 0; f < 8; f++ {
		if f > 0 {
			adjacentFilesMask[f] |= fileMask[f-1]
		}
		if f < 7 {
			adjacentFilesMask[f] |= fileMask[f+1]
		}
	}
	for sq := 0; sq < 64; sq++ {
		rank, file := sq>>3, sq&7
		var ahead, behind uint64
		for r := rank + 1; r < 8; r++ {
			ahead |= 0xFF << uint(r*8)
		}
		for r := 0; r < rank; r++ {
			behind |= 0xFF << uint(r*8)
		}
		frontSpanMask[gm.White][sq] = ahead & fileMask[file]
		frontSpanMask[gm.Black][sq] = behind & fileMask[file]
		passedMask[gm.White][sq] = ahead & (fileMask[file] | adjacentFilesMask[file])
		passedMask[gm.Black][sq] = behind & (fileMask[file] | adjacentFilesMask[file])
	}
}

// GetPiecePhase sums the phase weights of all non-pawn material.
func GetPiecePhase(b *gm.Board) int {
	phase := 0
	for _, c := range [2]gm.Color{gm.White, gm.Black} {
		phase += knightPhase * bits.OnesCount64(b.PieceBB(c, gm.PieceTypeKnight))
		phase += bishopPhase * bits.OnesCount64(b.PieceBB(c, gm.PieceTypeBishop))
		phase += rookPhase * bits.OnesCount64(b.PieceBB(c, gm.PieceTypeRook))
		phase += queenPhase * bits.OnesCount64(b.PieceBB(c, gm.PieceTypeQueen))
	}
	if phase > TotalPhase {
		phase = TotalPhase
	}
	return phase
}

// Evaluate scores the position in centipawns from the side to move's
// perspective. Every term is computed for both colors with mirrored
// indexing; since p.Mirror() also hands the move to the other side,
// eval(p) == eval(p.Mirror()) holds by construction.
func Evaluate(b *gm.Board) int32 {
	var mg, eg [2]int32

	occ := b.AllOccupancy()
	pawns := [2]uint64{b.PieceBB(gm.White, gm.PieceTypePawn), b.PieceBB(gm.Black, gm.PieceTypePawn)}
	pawnAttacks := [2]uint64{pawnSetAttacks(pawns[gm.White], gm.White), pawnSetAttacks(pawns[gm.Black], gm.Black)}

	for _, us := range [2]gm.Color{gm.White, gm.Black} {
		them := us.Other()
		ui := int(us)

		// Material and piece-square terms.
		for pt := gm.PieceTypePawn; pt <= gm.PieceTypeKing; pt++ {
			for pieces := b.PieceBB(us, pt); pieces != 0; {
				sq := popBit(&pieces)
				idx := sq
				if us == gm.Black {
					idx = sq ^ 56
				}
				mg[ui] += pieceValue[pt] + psqtMG[pt][idx]
				eg[ui] += pieceValue[pt] + psqtEG[pt][idx]
			}
		}

		if bits.OnesCount64(b.PieceBB(us, gm.PieceTypeBishop)) >= 2 {
			eg[ui] += bishopPairBonusEG
		}

		mgP, egP := pawnStructure(us, pawns[ui], pawns[int(them)], pawnAttacks[int(them)])
		mg[ui] += mgP
		eg[ui] += egP

		mgM, egM := mobility(b, us, occ, pawnAttacks[int(them)])
		mg[ui] += mgM
		eg[ui] += egM

		mg[ui] += kingSafety(b, us)
	}

	phase := GetPiecePhase(b)
	scoreMG := mg[gm.White] - mg[gm.Black]
	scoreEG := eg[gm.White] - eg[gm.Black]
	blended := (scoreMG*int32(phase) + scoreEG*int32(TotalPhase-phase)) / TotalPhase

	if b.SideToMove() == gm.Black {
		blended = -blended
	}
	return blended + tempoBonus
}

func popBit(mask *uint64) int {
	idx := bits.TrailingZeros64(*mask)
	*mask &= *mask - 1
	return idx
}

// pawnSetAttacks returns every square attacked by a set of pawns.
func pawnSetAttacks(pawns uint64, c gm.Color) uint64 {
	const fileA, fileH = 0x0101010101010101, 0x8080808080808080
	if c == gm.White {
		return (pawns&^fileA)<<7 | (pawns&^fileH)<<9
	}
	return (pawns&^fileH)>>7 | (pawns&^fileA)>>9
}

// pawnStructure scores passed, doubled, isolated and backward pawns.
func pawnStructure(us gm.Color, ourPawns, theirPawns, theirPawnAttacks uint64) (mg, eg int32) {
	for pieces := ourPawns; pieces != 0; {
		sq := popBit(&pieces)
		file := sq & 7
		relRank := sq >> 3
		if us == gm.Black {
			relRank = 7 - relRank
		}

		if passedMask[us][sq]&theirPawns == 0 {
			mg += passedBonusMG[relRank]
			eg += passedBonusEG[relRank]
		}
		if frontSpanMask[us][sq]&ourPawns != 0 {
			mg -= doubledPawnPenalty
			eg -= doubledPawnPenalty
		}
		if adjacentFilesMask[file]&ourPawns == 0 {
			mg -= isolatedPawnPenalty
			eg -= isolatedPawnPenalty
		} else {
			// Backward: no friendly pawn alongside or behind on the adjacent
			// files, and the stop square is covered by an enemy pawn.
			support := adjacentFilesMask[file] &^ passedMask[us][sq]
			stop := sq + 8
			if us == gm.Black {
				stop = sq - 8
			}
			if support&ourPawns == 0 && stop >= 0 && stop < 64 &&
				theirPawnAttacks&(1<<uint(stop)) != 0 {
				mg -= backwardPawnPenalty
				eg -= backwardPawnPenalty
			}
		}
	}
	return mg, eg
}

// mobility counts attack-set destinations off own pieces and enemy pawn
// cover for the four mobile piece kinds.
func mobility(b *gm.Board, us gm.Color, occ, theirPawnAttacks uint64) (mg, eg int32) {
	ownOcc := b.ColorOccupancy(us)
	for pt := gm.PieceTypeKnight; pt <= gm.PieceTypeQueen; pt++ {
		for pieces := b.PieceBB(us, pt); pieces != 0; {
			sq := popBit(&pieces)
			var attacks uint64
			switch pt {
			case gm.PieceTypeKnight:
				attacks = gm.KnightAttackSet(sq)
			case gm.PieceTypeBishop:
				attacks = gm.BishopAttacks(sq, occ)
			case gm.PieceTypeRook:
				attacks = gm.RookAttacks(sq, occ)
			case gm.PieceTypeQueen:
				attacks = gm.QueenAttacks(sq, occ)
			}
			count := int32(bits.OnesCount64(attacks &^ ownOcc &^ theirPawnAttacks))
			mg += count * mobilityMG[pt]
			eg += count * mobilityEG[pt]
		}
	}
	return mg, eg
}

// kingSafety charges the enemy's attack pressure on our king zone against
// our pawn shield. Skipped entirely while the enemy lacks attacking
// material (a queen, or two minors).
func kingSafety(b *gm.Board, us gm.Color) int32 {
	them := us.Other()
	queens := bits.OnesCount64(b.PieceBB(them, gm.PieceTypeQueen))
	minors := bits.OnesCount64(b.PieceBB(them, gm.PieceTypeKnight) | b.PieceBB(them, gm.PieceTypeBishop))
	if queens == 0 && minors < 2 {
		return 0
	}

	ksq := b.KingSquare(us)
	if ksq == gm.NoSquare {
		return 0
	}
	zone := gm.KingAttackSet(int(ksq)) | 1<<uint(ksq)

	shield := int32(bits.OnesCount64(zone & b.PieceBB(us, gm.PieceTypePawn)))

	occ := b.AllOccupancy()
	var units int32
	for pt := gm.PieceTypeKnight; pt <= gm.PieceTypeQueen; pt++ {
		for pieces := b.PieceBB(them, pt); pieces != 0; {
			sq := popBit(&pieces)
			var attacks uint64
			switch pt {
			case gm.PieceTypeKnight:
				attacks = gm.KnightAttackSet(sq)
			case gm.PieceTypeBishop:
				attacks = gm.BishopAttacks(sq, occ)
			case gm.PieceTypeRook:
				attacks = gm.RookAttacks(sq, occ)
			case gm.PieceTypeQueen:
				attacks = gm.QueenAttacks(sq, occ)
			}
			if attacks&zone != 0 {
				units += kingAttackUnit[pt]
			}
		}
	}
	units -= shield
	if units < 0 {
		units = 0
	}
	if units >= int32(len(kingDangerTable)) {
		units = int32(len(kingDangerTable)) - 1
	}
	return shield*pawnShieldBonus - kingDangerTable[units]
}
