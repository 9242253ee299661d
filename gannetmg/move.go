package gannetmg

import (
	"errors"
	"fmt"
)

// Move packs a full move description into 32 bits:
// from:6 | to:6 | piece:4 | captured:4 | promotion:4 | flag:2.
// Carrying the moving and captured pieces makes unmake and move ordering
// cheap at the cost of a few spare bits.
type Move uint32

const (
	moveToShift      = 6
	movePieceShift   = 12
	moveCaptureShift = 16
	movePromoteShift = 20
	moveFlagShift    = 24
)

// Move flags. Promotions are signalled by a non-zero promotion piece.
const (
	FlagNone uint8 = iota
	FlagDoublePush
	FlagCastle
	FlagEnPassant
)

// NewMove builds a Move from its components.
func NewMove(from, to Square, piece, captured, promotion Piece, flag uint8) Move {
	return Move(uint32(from&0x3F) |
		uint32(to&0x3F)<<moveToShift |
		uint32(piece&0xF)<<movePieceShift |
		uint32(captured&0xF)<<moveCaptureShift |
		uint32(promotion&0xF)<<movePromoteShift |
		uint32(flag&0x3)<<moveFlagShift)
}

// From returns the origin square.
func (m Move) From() Square { return Square(uint32(m) & 0x3F) }

// To returns the destination square.
func (m Move) To() Square { return Square(uint32(m) >> moveToShift & 0x3F) }

// MovedPiece returns the piece being moved.
func (m Move) MovedPiece() Piece { return Piece(uint32(m) >> movePieceShift & 0xF) }

// CapturedPiece returns the captured piece, or NoPiece.
func (m Move) CapturedPiece() Piece { return Piece(uint32(m) >> moveCaptureShift & 0xF) }

// PromotionPiece returns the piece promoted to, or NoPiece.
func (m Move) PromotionPiece() Piece { return Piece(uint32(m) >> movePromoteShift & 0xF) }

// PromotionType returns the colorless promoted kind, or PieceTypeNone.
func (m Move) PromotionType() PieceType { return m.PromotionPiece().Type() }

// Flag returns the special-move flag.
func (m Move) Flag() uint8 { return uint8(uint32(m) >> moveFlagShift & 0x3) }

// IsCapture reports whether the move captures, including en passant.
func (m Move) IsCapture() bool { return m.CapturedPiece() != NoPiece }

// String renders the move in UCI coordinate form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == 0 {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	switch m.PromotionType() {
	case PieceTypeKnight:
		s += "n"
	case PieceTypeBishop:
		s += "b"
	case PieceTypeRook:
		s += "r"
	case PieceTypeQueen:
		s += "q"
	}
	return s
}

var errBadMove = errors.New("malformed move string")

// ParseMove reads UCI coordinate notation. The result carries only squares
// and promotion kind; callers match it against generated legal moves to
// recover piece, capture and flag information.
func ParseMove(s string) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return 0, fmt.Errorf("%w: %q", errBadMove, s)
	}
	if s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' ||
		s[2] < 'a' || s[2] > 'h' || s[3] < '1' || s[3] > '8' {
		return 0, fmt.Errorf("%w: %q", errBadMove, s)
	}
	from := Square(int(s[1]-'1')*8 + int(s[0]-'a'))
	to := Square(int(s[3]-'1')*8 + int(s[2]-'a'))
	var promo Piece
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = Piece(PieceTypeKnight)
		case 'b':
			promo = Piece(PieceTypeBishop)
		case 'r':
			promo = Piece(PieceTypeRook)
		case 'q':
			promo = Piece(PieceTypeQueen)
		default:
			return 0, fmt.Errorf("%w: %q", errBadMove, s)
		}
	}
	return NewMove(from, to, NoPiece, NoPiece, promo, FlagNone), nil
}

// Matches reports whether a generated legal move corresponds to a parsed
// UCI move: same squares and the same promotion kind.
func (m Move) Matches(parsed Move) bool {
	return m.From() == parsed.From() && m.To() == parsed.To() &&
		m.PromotionType() == parsed.PromotionType()
}
