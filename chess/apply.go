package chess

// play moves the piece on from to to, handling castling rook relocation, promotion and
// en-passant removal. It returns the piece as it stood before promotion.
func (g *grid) play(from, to Square) Piece {
	p := g.at(from)
	captured := g.at(to)
	g.set(from, Piece{})
	g.set(to, p)

	switch p.Kind {
	case King:
		if df := to.File - from.File; df == 2 || df == -2 {
			rookFrom, rookTo := Sq(from.Rank, Width-1), Sq(from.Rank, to.File-1)
			if df < 0 {
				rookFrom, rookTo = Sq(from.Rank, 0), Sq(from.Rank, to.File+1)
			}
			g.set(rookTo, g.at(rookFrom))
			g.set(rookFrom, Piece{})
		}
	case Pawn:
		if to.Rank == p.Color.Opposite().homeRank() {
			g.set(to, Piece{Color: p.Color, Kind: Queen})
		} else if from.File != to.File && captured.Empty() {
			g.set(Sq(from.Rank, to.File), Piece{})
		}
	}
	return p
}

// Apply executes from->to and updates history, king squares and repetition counts.
// It does not check legality: run AllowedMoves first.
func (b *Board) Apply(from, to Square) (Move, error) {
	if !from.Valid() || !to.Valid() {
		return Move{}, ErrInvalidSquare
	}
	if b.squares.at(from).Empty() {
		return Move{}, ErrEmptySquare
	}

	// Only hand-built positions can put a king on the destination.
	if captured := b.squares.at(to); captured.Kind == King {
		b.hasKing[captured.Color] = false
	}

	moved := b.squares.play(from, to)
	m := Move{Piece: moved, From: from, To: to}
	b.history = append(b.history, m)

	if moved.Kind == King {
		b.kings[moved.Color] = to
		b.hasKing[moved.Color] = true
	}

	if b.positions == nil {
		b.positions = make(map[grid]int)
	}
	b.positions[b.squares]++
	if n := b.positions[b.squares]; n > b.maxRepetition {
		b.maxRepetition = n
	}
	return m, nil
}
