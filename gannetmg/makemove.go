package gannetmg

// MoveState records what MakeMove destroyed so UnmakeMove can restore the
// position bit-for-bit, zobrist key included.
type MoveState struct {
	move         Move
	captured     Piece
	prevCastling CastlingRights
	prevEP       Square
	prevHalfmove int
	prevFullmove int
	prevHash     uint64
}

// NullState is the undo record for a null move.
type NullState struct {
	prevEP       Square
	prevHalfmove int
	prevFullmove int
	prevHash     uint64
}

// castlingRightsMask[sq] clears the rights lost when a piece moves from or
// is captured on sq: the king squares drop both rights, the rook home
// squares drop one.
var castlingRightsMask = func() (m [64]CastlingRights) {
	for sq := range m {
		m[sq] = CastleWhiteKing | CastleWhiteQueen | CastleBlackKing | CastleBlackQueen
	}
	m[0] &^= CastleWhiteQueen
	m[7] &^= CastleWhiteKing
	m[4] &^= CastleWhiteKing | CastleWhiteQueen
	m[56] &^= CastleBlackQueen
	m[63] &^= CastleBlackKing
	m[60] &^= CastleBlackKing | CastleBlackQueen
	return m
}()

// MakeMove applies a move. If the move leaves the mover's king attacked the
// board is restored and ok is false; the legal generator never produces such
// moves, but the pseudo-legal path relies on this filter.
func (b *Board) MakeMove(m Move) (ok bool, st MoveState) {
	st = MoveState{
		move:         m,
		captured:     NoPiece,
		prevCastling: b.castling,
		prevEP:       b.epSquare,
		prevHalfmove: b.halfmove,
		prevFullmove: b.fullmove,
		prevHash:     b.hash,
	}

	from := m.From()
	to := m.To()
	moved := m.MovedPiece()
	us := b.sideToMove
	them := us.Other()

	if b.epSquare != NoSquare {
		b.hash ^= zobristEnPassant[b.epSquare.File()]
		b.epSquare = NoSquare
	}

	switch m.Flag() {
	case FlagEnPassant:
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		st.captured = b.removePiece(capSq)
		b.movePiece(from, to, moved)
	case FlagCastle:
		b.movePiece(from, to, moved)
		for _, spec := range castleSpecs[us] {
			if spec.kingTo == to {
				b.movePiece(spec.rookHome, spec.transit, spec.rookNeeded)
			}
		}
	default:
		if m.IsCapture() {
			st.captured = b.removePiece(to)
		}
		if promo := m.PromotionPiece(); promo != NoPiece {
			b.removePiece(from)
			b.addPiece(to, promo)
		} else {
			b.movePiece(from, to, moved)
		}
		if m.Flag() == FlagDoublePush {
			ep := from + 8
			if us == Black {
				ep = from - 8
			}
			b.epSquare = ep
			b.hash ^= zobristEnPassant[ep.File()]
		}
	}

	if newCastling := b.castling & castlingRightsMask[from] & castlingRightsMask[to]; newCastling != b.castling {
		b.hash ^= zobristCastle[b.castling] ^ zobristCastle[newCastling]
		b.castling = newCastling
	}

	b.sideToMove = them
	b.hash ^= zobristSide

	// The pseudo-legal path relies on this filter being complete, so the
	// mover's king safety is always queried; a gate on move geometry would
	// wave through moves that fail to resolve an existing check.
	ksq := b.KingSquare(us)
	if ksq == NoSquare || b.isSquareAttackedWithOcc(int(ksq), them, b.AllOccupancy()) {
		b.UnmakeMove(m, st)
		return false, st
	}
	// Castling may not leave or cross an attacked square either; the filter
	// above only covers the king's destination.
	if m.Flag() == FlagCastle {
		occ := b.AllOccupancy()
		for _, spec := range castleSpecs[us] {
			if spec.kingTo == to &&
				(b.isSquareAttackedWithOcc(int(spec.kingFrom), them, occ) ||
					b.isSquareAttackedWithOcc(int(spec.transit), them, occ)) {
				b.UnmakeMove(m, st)
				return false, st
			}
		}
	}

	if moved.Type() == PieceTypePawn || st.captured != NoPiece {
		b.halfmove = 0
	} else {
		b.halfmove++
	}
	if us == Black {
		b.fullmove++
	}
	return true, st
}

// UnmakeMove reverses a move applied with MakeMove, using its MoveState.
func (b *Board) UnmakeMove(m Move, st MoveState) {
	us := b.sideToMove.Other() // the side that made the move
	from := m.From()
	to := m.To()
	moved := m.MovedPiece()

	switch m.Flag() {
	case FlagEnPassant:
		b.movePiece(to, from, moved)
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		b.addPiece(capSq, st.captured)
	case FlagCastle:
		b.movePiece(to, from, moved)
		for _, spec := range castleSpecs[us] {
			if spec.kingTo == to {
				b.movePiece(spec.transit, spec.rookHome, spec.rookNeeded)
			}
		}
	default:
		if promo := m.PromotionPiece(); promo != NoPiece {
			b.removePiece(to)
			b.addPiece(from, moved)
		} else {
			b.movePiece(to, from, moved)
		}
		if st.captured != NoPiece {
			b.addPiece(to, st.captured)
		}
	}

	b.sideToMove = us
	b.castling = st.prevCastling
	b.epSquare = st.prevEP
	b.halfmove = st.prevHalfmove
	b.fullmove = st.prevFullmove
	// The incremental updates above cancel out; restoring the saved key makes
	// the round trip exact by construction.
	b.hash = st.prevHash
}

// MakeNullMove passes the turn without moving: the en-passant square is
// cleared, clocks advance as a reversible half-move, and the side flips.
func (b *Board) MakeNullMove() (st NullState) {
	st = NullState{
		prevEP:       b.epSquare,
		prevHalfmove: b.halfmove,
		prevFullmove: b.fullmove,
		prevHash:     b.hash,
	}
	if b.epSquare != NoSquare {
		b.hash ^= zobristEnPassant[b.epSquare.File()]
		b.epSquare = NoSquare
	}
	b.halfmove++
	if b.sideToMove == Black {
		b.fullmove++
	}
	b.sideToMove = b.sideToMove.Other()
	b.hash ^= zobristSide
	return st
}

// UnmakeNullMove restores the state prior to MakeNullMove.
func (b *Board) UnmakeNullMove(st NullState) {
	b.sideToMove = b.sideToMove.Other()
	b.epSquare = st.prevEP
	b.halfmove = st.prevHalfmove
	b.fullmove = st.prevFullmove
	b.hash = st.prevHash
}
