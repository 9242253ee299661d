package engine

import "fmt"

// Score bounds. Mate scores are encoded as ±(MateScore - ply) so a shorter
// mate always outscores a longer one; anything beyond MateThreshold is
// treated as a mate score when printing and when adjusting TT entries.
const (
	MaxScore      int32 = 32500
	MateScore     int32 = 32000
	MateThreshold int32 = 31000
	DrawScore     int32 = 0
)

// MaxPly bounds the search stack: killers, PV storage and the repetition
// stack are all sized by it.
const MaxPly = 128

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// matedIn returns the score of being checkmated at the given ply.
func matedIn(ply int) int32 { return -MateScore + int32(ply) }

// IsMateScore reports whether the score encodes a forced mate.
func IsMateScore(score int32) bool { return abs32(score) >= MateThreshold }

// MateDistance converts a mate score to full moves: positive when the side
// to move mates, negative when it is mated.
func MateDistance(score int32) int {
	if score > 0 {
		return int(MateScore-score+1) / 2
	}
	return -int(MateScore+score+1) / 2
}

// FormatUCIScore renders a score for an info line: "cp N" or "mate N".
func FormatUCIScore(score int32) string {
	if IsMateScore(score) {
		return fmt.Sprintf("mate %d", MateDistance(score))
	}
	return fmt.Sprintf("cp %d", score)
}
