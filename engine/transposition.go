package engine

import (
	"math/bits"
	"sync/atomic"

	gm "gannet-engine/gannetmg"
)

// Bound kinds stored in the table.
const (
	BoundNone uint8 = iota
	BoundUpper
	BoundLower
	BoundExact
)

const clusterSize = 4

// DefaultHashMB is the table size before any "setoption name Hash".
const DefaultHashMB = 16

// ttEntry is 16 bytes: one word of key material and one word of payload.
// The key word stores hash^data, so a reader that observes a torn pair
// (key from one store, data from another) fails the XOR check and reports
// a miss. Both words are written with plain aligned atomic stores; the hot
// path takes no locks.
type ttEntry struct {
	xorKey uint64
	data   uint64
}

// Payload layout inside data, low to high:
// move:16 | score:16 | eval:16 | depth:8 | bound:2 | age:6.
func packTTData(move uint16, score, eval int16, depth int8, bound, age uint8) uint64 {
	return uint64(move) |
		uint64(uint16(score))<<16 |
		uint64(uint16(eval))<<32 |
		uint64(uint8(depth))<<48 |
		uint64(bound&3)<<56 |
		uint64(age&63)<<58
}

// TTData is an unpacked probe result.
type TTData struct {
	Move  gm.Move
	Score int32
	Eval  int32
	Depth int8
	Bound uint8
}

// compactMove squeezes a move into 16 bits: from, to and promotion kind.
// The full move is recovered by matching against generated legal moves.
func compactMove(m gm.Move) uint16 {
	return uint16(m.From()) | uint16(m.To())<<6 | uint16(m.PromotionType())<<12
}

func expandMove(c uint16) gm.Move {
	if c == 0 {
		return 0
	}
	promo := gm.Piece(c >> 12 & 7)
	return gm.NewMove(gm.Square(c&63), gm.Square(c>>6&63), gm.NoPiece, gm.NoPiece, promo, gm.FlagNone)
}

// TransTable is the shared transposition table: power-of-two clusters of
// four entries, lossy replacement, torn-write detection via the XOR'd key
// word. Safe for concurrent probe/store from all search threads.
type TransTable struct {
	entries     []ttEntry
	clusterMask uint64
	age         uint8
}

// NewTransTable allocates a table of roughly the given size in megabytes.
func NewTransTable(megabytes int) *TransTable {
	tt := &TransTable{}
	tt.Resize(megabytes)
	return tt
}

// Resize reallocates the table to approximately the requested size and
// clears it. The cluster count is rounded down to a power of two so the
// index is a single mask.
func (tt *TransTable) Resize(megabytes int) {
	if megabytes < 1 {
		megabytes = 1
	}
	bytes := uint64(megabytes) << 20
	clusters := bytes / (clusterSize * 16)
	if clusters == 0 {
		clusters = 1
	}
	clusters = 1 << (63 - bits.LeadingZeros64(clusters))
	tt.entries = make([]ttEntry, clusters*clusterSize)
	tt.clusterMask = clusters - 1
	tt.age = 0
}

// Clear wipes all entries without reallocating.
func (tt *TransTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = ttEntry{}
	}
}

// NextAge advances the 6-bit generation counter. Called per "ucinewgame"
// and per root search so stale entries lose replacement priority.
func (tt *TransTable) NextAge() {
	tt.age = (tt.age + 1) & 63
}

// Probe looks the position up. Mate scores come back adjusted to the probing
// ply so "mate in N from here" stays correct regardless of where the entry
// was written.
func (tt *TransTable) Probe(hash uint64, ply int) (TTData, bool) {
	base := (hash & tt.clusterMask) * clusterSize
	for i := uint64(0); i < clusterSize; i++ {
		e := &tt.entries[base+i]
		data := atomic.LoadUint64(&e.data)
		xorKey := atomic.LoadUint64(&e.xorKey)
		if data == 0 || xorKey^data != hash {
			continue
		}
		score := int32(int16(data >> 16))
		if score > MateThreshold {
			score -= int32(ply)
		} else if score < -MateThreshold {
			score += int32(ply)
		}
		return TTData{
			Move:  expandMove(uint16(data)),
			Score: score,
			Eval:  int32(int16(data >> 32)),
			Depth: int8(data >> 48),
			Bound: uint8(data >> 56 & 3),
		}, true
	}
	return TTData{}, false
}

// Usable reports whether a probe result can cut the current node, honoring
// the stored bound kind against the (alpha, beta) window.
func (d TTData) Usable(depth int8, alpha, beta int32) (int32, bool) {
	if d.Depth < depth {
		return 0, false
	}
	switch d.Bound {
	case BoundExact:
		return d.Score, true
	case BoundLower:
		if d.Score >= beta {
			return d.Score, true
		}
	case BoundUpper:
		if d.Score <= alpha {
			return d.Score, true
		}
	}
	return 0, false
}

// Store writes a search result. Slot choice within the cluster: a matching
// key first, then any slot from an older generation or with no more depth
// than the new entry, preferring the shallowest and oldest. Current-age
// entries deeper than the new data are left alone.
func (tt *TransTable) Store(hash uint64, depth int8, ply int, move gm.Move, score, eval int32, bound uint8) {
	base := (hash & tt.clusterMask) * clusterSize

	if score > MateThreshold {
		score += int32(ply)
	} else if score < -MateThreshold {
		score -= int32(ply)
	}

	target := -1
	bestPriority := int32(1) << 30
	for i := uint64(0); i < clusterSize; i++ {
		e := &tt.entries[base+i]
		data := atomic.LoadUint64(&e.data)
		if data == 0 {
			target = int(base + i)
			break
		}
		if atomic.LoadUint64(&e.xorKey)^data == hash {
			// Keep the existing move when the new result has none.
			if move == 0 {
				move = expandMove(uint16(data))
			}
			target = int(base + i)
			break
		}
		entryDepth := int32(int8(data >> 48))
		entryAge := uint8(data >> 58 & 63)
		if entryAge == tt.age && entryDepth > int32(depth) {
			continue
		}
		// Candidate: rank by depth, breaking ties toward older entries.
		priority := entryDepth*64 - int32((tt.age-entryAge)&63)
		if priority < bestPriority {
			bestPriority = priority
			target = int(base + i)
		}
	}
	if target < 0 {
		return
	}

	data := packTTData(compactMove(move), int16(clamp32(score, -MaxScore, MaxScore)),
		int16(clamp32(eval, -MaxScore, MaxScore)), depth, bound, tt.age)
	e := &tt.entries[target]
	atomic.StoreUint64(&e.xorKey, hash^data)
	atomic.StoreUint64(&e.data, data)
}

// Hashfull estimates table occupancy in permille from a sample of clusters,
// counting only entries written during the current generation.
func (tt *TransTable) Hashfull() int {
	sample := 1000
	if len(tt.entries) < sample {
		sample = len(tt.entries)
	}
	used := 0
	for i := 0; i < sample; i++ {
		data := atomic.LoadUint64(&tt.entries[i].data)
		if data != 0 && uint8(data>>58&63) == tt.age {
			used++
		}
	}
	if sample == 0 {
		return 0
	}
	return used * 1000 / sample
}
