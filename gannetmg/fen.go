package gannetmg

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// FENStartPos is the standard initial position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFen is wrapped by every ParseFEN failure, whether the string is
// malformed or the described position violates a board invariant.
var ErrInvalidFen = errors.New("invalid FEN")

func fenErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFen, fmt.Sprintf(format, args...))
}

func pieceFromChar(ch rune) Piece {
	switch ch {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	}
	return NoPiece
}

func charFromPiece(p Piece) byte {
	const chars = " PNBRQK"
	ch := chars[p.Type()]
	if p.Color() == Black {
		ch += 'a' - 'A'
	}
	return ch
}

// ParseFEN parses the six FEN fields into a Board. The halfmove clock and
// fullmove number may be omitted. Positions that violate board invariants
// (missing or extra kings, pawns on the back ranks, more than eight pawns
// per side, side not to move in check, a bogus en-passant square) are
// rejected alongside plainly malformed strings.
func ParseFEN(fen string) (*Board, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fenErr("want at least 4 fields, got %d", len(fields))
	}

	b := &Board{epSquare: NoSquare, fullmove: 1}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fenErr("want 8 ranks, got %d", len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			p := pieceFromChar(ch)
			if p == NoPiece {
				return nil, fenErr("unrecognized piece %q", ch)
			}
			if file >= 8 {
				return nil, fenErr("rank %d overflows", rank+1)
			}
			b.addPieceRaw(Square(rank*8+file), p)
			file++
		}
		if file != 8 {
			return nil, fenErr("rank %d has %d files", rank+1, file)
		}
	}

	switch fields[1] {
	case "w":
		b.sideToMove = White
	case "b":
		b.sideToMove = Black
	default:
		return nil, fenErr("side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				b.castling |= CastleWhiteKing
			case 'Q':
				b.castling |= CastleWhiteQueen
			case 'k':
				b.castling |= CastleBlackKing
			case 'q':
				b.castling |= CastleBlackQueen
			default:
				return nil, fenErr("castling rights %q", fields[2])
			}
		}
	}

	if fields[3] != "-" {
		if len(fields[3]) != 2 ||
			fields[3][0] < 'a' || fields[3][0] > 'h' ||
			fields[3][1] < '1' || fields[3][1] > '8' {
			return nil, fenErr("en passant square %q", fields[3])
		}
		b.epSquare = Square(int(fields[3][1]-'1')*8 + int(fields[3][0]-'a'))
	}

	if len(fields) > 4 {
		hm, err := strconv.Atoi(fields[4])
		if err != nil || hm < 0 {
			return nil, fenErr("halfmove clock %q", fields[4])
		}
		b.halfmove = hm
	}
	if len(fields) > 5 {
		fm, err := strconv.Atoi(fields[5])
		if err != nil || fm < 1 {
			return nil, fenErr("fullmove number %q", fields[5])
		}
		b.fullmove = fm
	}

	if err := b.checkInvariants(); err != nil {
		return nil, err
	}
	b.hash = b.ComputeZobrist()
	return b, nil
}

// checkInvariants enforces the structural position rules ParseFEN promises.
func (b *Board) checkInvariants() error {
	for _, c := range [2]Color{White, Black} {
		if n := bits.OnesCount64(b.pieceBB[c][PieceTypeKing]); n != 1 {
			return fenErr("%d kings for one side", n)
		}
		if n := bits.OnesCount64(b.pieceBB[c][PieceTypePawn]); n > 8 {
			return fenErr("%d pawns for one side", n)
		}
	}
	const backRanks = 0xFF000000000000FF
	if (b.pieceBB[White][PieceTypePawn]|b.pieceBB[Black][PieceTypePawn])&backRanks != 0 {
		return fenErr("pawn on a back rank")
	}
	if b.InCheck(b.sideToMove.Other()) {
		return fenErr("side not to move is in check")
	}
	if b.epSquare != NoSquare {
		// The en-passant square must sit behind an enemy pawn that has just
		// double-pushed: rank 6 seen by White to move, rank 3 by Black.
		if b.sideToMove == White {
			if b.epSquare.Rank() != 5 || b.pieces[b.epSquare-8] != BlackPawn {
				return fenErr("en passant square %s", b.epSquare)
			}
		} else {
			if b.epSquare.Rank() != 2 || b.pieces[b.epSquare+8] != WhitePawn {
				return fenErr("en passant square %s", b.epSquare)
			}
		}
		if b.pieces[b.epSquare] != NoPiece {
			return fenErr("occupied en passant square %s", b.epSquare)
		}
	}
	return nil
}

// ToFEN renders the canonical FEN of the position. ParseFEN∘ToFEN round-trips
// for every position reachable through MakeMove.
func (b *Board) ToFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.pieces[rank*8+file]
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteByte(charFromPiece(p))
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if b.sideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	if b.castling == 0 {
		sb.WriteByte('-')
	} else {
		for _, pair := range []struct {
			right CastlingRights
			ch    byte
		}{
			{CastleWhiteKing, 'K'}, {CastleWhiteQueen, 'Q'},
			{CastleBlackKing, 'k'}, {CastleBlackQueen, 'q'},
		} {
			if b.castling&pair.right != 0 {
				sb.WriteByte(pair.ch)
			}
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(b.epSquare.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.halfmove))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.fullmove))
	return sb.String()
}
