package gannetmg

import "math/bits"

// Piece encodes type and color in one byte:
// piece & 7 is the PieceType, piece & 8 set means Black.
type Piece uint8

const (
	NoPiece     Piece = 0
	WhitePawn   Piece = 1
	WhiteKnight Piece = 2
	WhiteBishop Piece = 3
	WhiteRook   Piece = 4
	WhiteQueen  Piece = 5
	WhiteKing   Piece = 6

	BlackPawn   Piece = 1 | 8
	BlackKnight Piece = 2 | 8
	BlackBishop Piece = 3 | 8
	BlackRook   Piece = 4 | 8
	BlackQueen  Piece = 5 | 8
	BlackKing   Piece = 6 | 8
)

// PieceType is the colorless piece kind, used to index lookup tables.
type PieceType uint8

const (
	PieceTypeNone   PieceType = 0
	PieceTypePawn   PieceType = 1
	PieceTypeKnight PieceType = 2
	PieceTypeBishop PieceType = 3
	PieceTypeRook   PieceType = 4
	PieceTypeQueen  PieceType = 5
	PieceTypeKing   PieceType = 6
)

// Type returns the colorless kind of the piece.
func (p Piece) Type() PieceType { return PieceType(p & 7) }

// Color returns the side owning the piece. NoPiece reports White.
func (p Piece) Color() Color {
	if p&8 != 0 {
		return Black
	}
	return White
}

// PieceFromType combines a side and a colorless kind into a Piece.
func PieceFromType(c Color, pt PieceType) Piece {
	if pt == PieceTypeNone {
		return NoPiece
	}
	if c == Black {
		return Piece(pt) | 8
	}
	return Piece(pt)
}

type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opposing side.
func (c Color) Other() Color { return c ^ 1 }

// CastlingRights is a bit set of the four castling permissions.
type CastlingRights uint8

const (
	CastleWhiteKing CastlingRights = 1 << iota
	CastleWhiteQueen
	CastleBlackKing
	CastleBlackQueen
)

// Square indexes the board 0..63, file-major with a1=0 and h8=63.
type Square int

const NoSquare Square = -1

// File returns the square's file 0..7.
func (sq Square) File() int { return int(sq) & 7 }

// Rank returns the square's rank 0..7.
func (sq Square) Rank() int { return int(sq) >> 3 }

// String renders the square in coordinate notation, e.g. "e4".
func (sq Square) String() string {
	if sq == NoSquare {
		return "-"
	}
	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

// Board holds the full position state. It is mutated only through
// MakeMove/UnmakeMove (and the null-move pair); the zobrist key is kept
// incrementally in sync with every change.
type Board struct {
	pieceBB   [2][7]uint64 // [color][PieceType]; index 0 unused
	occupancy [2]uint64
	pieces    [64]Piece

	sideToMove Color
	castling   CastlingRights
	epSquare   Square
	halfmove   int
	fullmove   int
	hash       uint64
}

// SideToMove reports which side is to play.
func (b *Board) SideToMove() Color { return b.sideToMove }

// Hash returns the current zobrist key.
func (b *Board) Hash() uint64 { return b.hash }

// CastlingRights returns the current castling permission set.
func (b *Board) CastlingRights() CastlingRights { return b.castling }

// EnPassantSquare returns the en-passant target square or NoSquare.
func (b *Board) EnPassantSquare() Square { return b.epSquare }

// HalfmoveClock returns plies since the last capture or pawn move.
func (b *Board) HalfmoveClock() int { return b.halfmove }

// FullmoveNumber returns the full move counter, incremented after Black moves.
func (b *Board) FullmoveNumber() int { return b.fullmove }

// PieceAt returns the piece occupying a square.
func (b *Board) PieceAt(sq Square) Piece { return b.pieces[sq] }

// PieceBB returns the bitboard for one piece kind of one side.
func (b *Board) PieceBB(c Color, pt PieceType) uint64 { return b.pieceBB[c][pt] }

// ColorOccupancy returns all squares occupied by the given side.
func (b *Board) ColorOccupancy(c Color) uint64 { return b.occupancy[c] }

// AllOccupancy returns all occupied squares.
func (b *Board) AllOccupancy() uint64 { return b.occupancy[White] | b.occupancy[Black] }

// KingSquare returns the square of the given side's king.
func (b *Board) KingSquare(c Color) Square {
	kbb := b.pieceBB[c][PieceTypeKing]
	if kbb == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(kbb))
}

// Copy returns an independent duplicate of the board. SMP workers search on
// copies so that make/unmake never crosses a thread boundary.
func (b *Board) Copy() *Board {
	dup := *b
	return &dup
}

// bb returns a bitboard with only the given square's bit set.
func bb(sq Square) uint64 { return 1 << uint(sq) }

// popLSB removes the lowest set bit from the mask and returns its index.
func popLSB(mask *uint64) int {
	idx := bits.TrailingZeros64(*mask)
	*mask &= *mask - 1
	return idx
}

// addPiece places a piece on an empty square, updating bitboards and hash.
func (b *Board) addPiece(sq Square, p Piece) {
	c := p.Color()
	b.pieces[sq] = p
	b.pieceBB[c][p.Type()] |= bb(sq)
	b.occupancy[c] |= bb(sq)
	b.hash ^= zobristPiece[p][sq]
}

// removePiece clears a square, updating bitboards and hash.
func (b *Board) removePiece(sq Square) Piece {
	p := b.pieces[sq]
	if p == NoPiece {
		return NoPiece
	}
	c := p.Color()
	b.pieces[sq] = NoPiece
	b.pieceBB[c][p.Type()] &^= bb(sq)
	b.occupancy[c] &^= bb(sq)
	b.hash ^= zobristPiece[p][sq]
	return p
}

// movePiece shifts a piece between two squares without touching captures.
func (b *Board) movePiece(from, to Square, p Piece) {
	c := p.Color()
	fromTo := bb(from) | bb(to)
	b.pieces[from] = NoPiece
	b.pieces[to] = p
	b.pieceBB[c][p.Type()] ^= fromTo
	b.occupancy[c] ^= fromTo
	b.hash ^= zobristPiece[p][from] ^ zobristPiece[p][to]
}

// InCheck reports whether the given side's king is attacked.
func (b *Board) InCheck(c Color) bool {
	ksq := b.KingSquare(c)
	if ksq == NoSquare {
		return false
	}
	return b.isSquareAttackedWithOcc(int(ksq), c.Other(), b.AllOccupancy())
}

// HasLegalMoves reports whether the side to move has at least one legal move.
func (b *Board) HasLegalMoves() bool {
	var buf [64]Move
	return len(b.GenerateMovesInto(buf[:0])) > 0
}

// InCheckmate reports whether the side to move is checkmated.
func (b *Board) InCheckmate() bool {
	return b.InCheck(b.sideToMove) && !b.HasLegalMoves()
}

// InStalemate reports whether the side to move is stalemated.
func (b *Board) InStalemate() bool {
	return !b.InCheck(b.sideToMove) && !b.HasLegalMoves()
}

// IsDrawBy50 reports the fifty-move rule (halfmove counts half-moves).
func (b *Board) IsDrawBy50() bool { return b.halfmove >= 100 }

// InsufficientMaterial reports positions no sequence of legal moves can win:
// K vs K, K+minor vs K, and K+B vs K+B with same-colored bishops.
func (b *Board) InsufficientMaterial() bool {
	if b.pieceBB[White][PieceTypePawn]|b.pieceBB[Black][PieceTypePawn] != 0 {
		return false
	}
	if b.pieceBB[White][PieceTypeRook]|b.pieceBB[Black][PieceTypeRook] != 0 {
		return false
	}
	if b.pieceBB[White][PieceTypeQueen]|b.pieceBB[Black][PieceTypeQueen] != 0 {
		return false
	}
	knights := b.pieceBB[White][PieceTypeKnight] | b.pieceBB[Black][PieceTypeKnight]
	bishops := b.pieceBB[White][PieceTypeBishop] | b.pieceBB[Black][PieceTypeBishop]
	minors := bits.OnesCount64(knights | bishops)
	if minors <= 1 {
		return true
	}
	// Two bishops on the same square color, one per side, cannot mate either.
	if knights == 0 && minors == 2 &&
		bits.OnesCount64(b.pieceBB[White][PieceTypeBishop]) == 1 &&
		bits.OnesCount64(b.pieceBB[Black][PieceTypeBishop]) == 1 {
		const lightSquares = 0x55AA55AA55AA55AA
		wLight := b.pieceBB[White][PieceTypeBishop]&lightSquares != 0
		bLight := b.pieceBB[Black][PieceTypeBishop]&lightSquares != 0
		return wLight == bLight
	}
	return false
}

// IsDrawByRepetition reports threefold repetition given the zobrist keys of
// the positions played before the current one. The current position counts
// as one occurrence; the key already folds in side to move, castling rights
// and the en-passant file, which the repetition rule requires.
func (b *Board) IsDrawByRepetition(history []uint64) bool {
	matches := 0
	end := len(history)
	if end > 0 && history[end-1] == b.hash {
		end--
	}
	for i := 0; i < end; i++ {
		if history[i] == b.hash {
			matches++
			if matches >= 2 {
				return true
			}
		}
	}
	return false
}

// Mirror returns the color-flipped position: every piece moves to the
// rank-mirrored square with its color swapped, castling rights and the
// en-passant square follow, and the side to move is reversed. A
// side-to-move relative evaluation scores the mirror exactly as the original.
func (b *Board) Mirror() *Board {
	m := &Board{
		sideToMove: b.sideToMove.Other(),
		epSquare:   NoSquare,
		halfmove:   b.halfmove,
		fullmove:   b.fullmove,
	}
	for sq := Square(0); sq < 64; sq++ {
		p := b.pieces[sq]
		if p == NoPiece {
			continue
		}
		flipped := Square(int(sq) ^ 56)
		m.addPieceRaw(flipped, PieceFromType(p.Color().Other(), p.Type()))
	}
	if b.castling&CastleWhiteKing != 0 {
		m.castling |= CastleBlackKing
	}
	if b.castling&CastleWhiteQueen != 0 {
		m.castling |= CastleBlackQueen
	}
	if b.castling&CastleBlackKing != 0 {
		m.castling |= CastleWhiteKing
	}
	if b.castling&CastleBlackQueen != 0 {
		m.castling |= CastleWhiteQueen
	}
	if b.epSquare != NoSquare {
		m.epSquare = Square(int(b.epSquare) ^ 56)
	}
	m.hash = m.ComputeZobrist()
	return m
}

// addPieceRaw is addPiece without hash maintenance, for board construction.
func (b *Board) addPieceRaw(sq Square, p Piece) {
	c := p.Color()
	b.pieces[sq] = p
	b.pieceBB[c][p.Type()] |= bb(sq)
	b.occupancy[c] |= bb(sq)
}

// Validate cross-checks pieces[], the per-kind bitboards, occupancy and the
// incremental zobrist key. Test-only sanity net.
func (b *Board) Validate() bool {
	var pieceBB [2][7]uint64
	var occ [2]uint64
	for sq := Square(0); sq < 64; sq++ {
		p := b.pieces[sq]
		if p == NoPiece {
			continue
		}
		pieceBB[p.Color()][p.Type()] |= bb(sq)
		occ[p.Color()] |= bb(sq)
	}
	if occ != b.occupancy || pieceBB != b.pieceBB {
		return false
	}
	return b.hash == b.ComputeZobrist()
}
