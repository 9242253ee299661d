package engine

// Options is the full set of recognized UCI options with their effects.
// The UCI loop mutates a single instance between searches; the searchers
// read it.
type Options struct {
	HashMB          int
	Threads         int
	Ponder          bool
	MultiPV         int
	MoveOverhead    int // milliseconds subtracted from every time budget
	SoftTimePercent int
	HardTimePercent int
	MaxNodes        uint64
}

// DefaultOptions mirrors the defaults advertised by the "uci" handshake.
func DefaultOptions() Options {
	return Options{
		HashMB:          DefaultHashMB,
		Threads:         1,
		Ponder:          false,
		MultiPV:         1,
		MoveOverhead:    30,
		SoftTimePercent: 100,
		HardTimePercent: 30,
	}
}
