package chess

// AllowedMoves returns the playable destinations for the piece on from when color is to
// move: own-piece captures removed, castling added for an unmoved king, and every
// candidate that would leave color's king attacked discarded.
func (b *Board) AllowedMoves(from Square, color Color) SquareSet {
	if !from.Valid() {
		return 0
	}
	p := b.squares.at(from)
	if p.Empty() || p.Color != color {
		return 0
	}

	candidates := b.PseudoLegalMoves(from) &^ b.occupancy(color)
	if p.Kind == King {
		candidates |= b.castlingMoves(from, color)
	}

	var out SquareSet
	for set := candidates; set != 0; set &= set - 1 {
		to := squareAt(lowest(set))
		if !b.exposesKing(from, to, color) {
			out = out.Add(to)
		}
	}
	return out
}

// exposesKing plays from->to on a scratch copy of the grid and checks whether color's
// king is attacked afterwards.
func (b *Board) exposesKing(from, to Square, color Color) bool {
	scratch := b.squares
	moved := scratch.play(from, to)
	king, ok := b.kings[color], b.hasKing[color]
	if moved.Kind == King {
		king, ok = to, true
	}
	if !ok {
		return false
	}
	return scratch.attackedBy(king, color.Opposite())
}

func (b *Board) castlingMoves(from Square, c Color) SquareSet {
	home := c.homeRank()
	if from != Sq(home, 4) || b.kingMoved(c) {
		return 0
	}
	opp := c.Opposite()
	if b.squares.attackedBy(from, opp) {
		return 0
	}
	var out SquareSet
	for _, side := range [2]struct{ rookFile, step int }{{0, -1}, {Width - 1, 1}} {
		corner := Sq(home, side.rookFile)
		if b.squares.at(corner) != (Piece{Color: c, Kind: Rook}) || b.touched(corner) {
			continue
		}
		clear := true
		for f := from.File + side.step; f != side.rookFile; f += side.step {
			if b.squares.occupied(Sq(home, f)) {
				clear = false
				break
			}
		}
		if !clear || b.squares.attackedBy(from.offset(0, side.step), opp) {
			continue
		}
		out = out.Add(from.offset(0, 2*side.step))
	}
	return out
}

func (b *Board) kingMoved(c Color) bool {
	king := Piece{Color: c, Kind: King}
	for _, m := range b.history {
		if m.Piece == king {
			return true
		}
	}
	return false
}

// touched reports whether any ply started or ended on sq. A rook corner that was ever
// touched has lost its castling right, even if a rook stands there again.
func (b *Board) touched(sq Square) bool {
	for _, m := range b.history {
		if m.From == sq || m.To == sq {
			return true
		}
	}
	return false
}

func (b *Board) occupancy(c Color) SquareSet {
	var out SquareSet
	for r := 0; r < Height; r++ {
		for f := 0; f < Width; f++ {
			if p := b.squares[r][f]; !p.Empty() && p.Color == c {
				out = out.Add(Sq(r, f))
			}
		}
	}
	return out
}

// InCheck reports whether the king of c is attacked.
func (b *Board) InCheck(c Color) bool {
	king, ok := b.KingSquare(c)
	return ok && b.squares.attackedBy(king, c.Opposite())
}

// LegalMoves maps every square holding a piece of c to its non-empty allowed set.
func (b *Board) LegalMoves(c Color) map[Square]SquareSet {
	out := make(map[Square]SquareSet)
	for set := b.occupancy(c); set != 0; set &= set - 1 {
		from := squareAt(lowest(set))
		if moves := b.AllowedMoves(from, c); !moves.Empty() {
			out[from] = moves
		}
	}
	return out
}

// HasLegalMove stops at the first piece of c with somewhere to go.
func (b *Board) HasLegalMove(c Color) bool {
	for set := b.occupancy(c); set != 0; set &= set - 1 {
		if !b.AllowedMoves(squareAt(lowest(set)), c).Empty() {
			return true
		}
	}
	return false
}
