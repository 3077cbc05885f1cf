package chess

type direction struct{ dr, df int }

var (
	straight   = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal   = []direction{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}
	allDirs    = append(append([]direction(nil), straight...), diagonal...)
	knightJump = []direction{{2, 1}, {1, 2}, {-1, 2}, {-2, 1}, {-2, -1}, {-1, -2}, {1, -2}, {2, -1}}
)

// slide walks each direction one square at a time, stopping at the edge or after the
// first occupied square. The occupied square is included whatever its color.
func (g *grid) slide(from Square, dirs []direction) SquareSet {
	var out SquareSet
	for _, d := range dirs {
		for sq := from.offset(d.dr, d.df); sq.Valid(); sq = sq.offset(d.dr, d.df) {
			out = out.Add(sq)
			if g.occupied(sq) {
				break
			}
		}
	}
	return out
}

func steps(from Square, dirs []direction) SquareSet {
	var out SquareSet
	for _, d := range dirs {
		if sq := from.offset(d.dr, d.df); sq.Valid() {
			out = out.Add(sq)
		}
	}
	return out
}

// PseudoLegalMoves returns the destinations the piece on from could reach by its movement
// pattern alone. Own-piece captures and king exposure are not filtered; castling is added
// by AllowedMoves.
func (b *Board) PseudoLegalMoves(from Square) SquareSet {
	if !from.Valid() {
		return 0
	}
	p := b.squares.at(from)
	switch p.Kind {
	case King:
		return steps(from, allDirs)
	case Queen:
		return b.squares.slide(from, allDirs)
	case Rook:
		return b.squares.slide(from, straight)
	case Bishop:
		return b.squares.slide(from, diagonal)
	case Knight:
		return steps(from, knightJump)
	case Pawn:
		return b.pawnMoves(from, p.Color)
	}
	return 0
}

func (b *Board) pawnMoves(from Square, c Color) SquareSet {
	var out SquareSet
	fwd := c.forward()
	one := from.offset(fwd, 0)
	if one.Valid() && !b.squares.occupied(one) {
		out = out.Add(one)
		two := from.offset(2*fwd, 0)
		if from.Rank == c.pawnRank() && two.Valid() && !b.squares.occupied(two) {
			out = out.Add(two)
		}
	}
	for _, df := range [2]int{-1, 1} {
		target := from.offset(fwd, df)
		if !target.Valid() {
			continue
		}
		if occupant := b.squares.at(target); !occupant.Empty() {
			if occupant.Color != c {
				out = out.Add(target)
			}
			continue
		}
		if b.enPassantFile(from, c) == target.File {
			out = out.Add(target)
		}
	}
	return out
}

// enPassantFile returns the file a pawn of color c standing on from may capture en
// passant on, or -1. The previous ply must be an opponent pawn's double step that landed
// beside from on the same rank.
func (b *Board) enPassantFile(from Square, c Color) int {
	last, ok := b.LastMove()
	if !ok || last.Piece.Kind != Pawn || last.Piece.Color == c {
		return -1
	}
	if abs(last.To.Rank-last.From.Rank) != 2 || last.To.Rank != from.Rank || abs(last.To.File-from.File) != 1 {
		return -1
	}
	return last.To.File
}

// attackedBy reports whether any piece of color by attacks sq. Pawns attack diagonally
// only; sliders are blocked by the first occupied square.
func (g *grid) attackedBy(sq Square, by Color) bool {
	pawnRank := -by.forward()
	for _, df := range [2]int{-1, 1} {
		if from := sq.offset(pawnRank, df); from.Valid() && g.at(from) == (Piece{Color: by, Kind: Pawn}) {
			return true
		}
	}
	for _, d := range knightJump {
		if from := sq.offset(d.dr, d.df); from.Valid() && g.at(from) == (Piece{Color: by, Kind: Knight}) {
			return true
		}
	}
	for _, d := range allDirs {
		if from := sq.offset(d.dr, d.df); from.Valid() && g.at(from) == (Piece{Color: by, Kind: King}) {
			return true
		}
	}
	return g.rayHits(sq, straight, by, Rook) || g.rayHits(sq, diagonal, by, Bishop)
}

func (g *grid) rayHits(sq Square, dirs []direction, by Color, slider Kind) bool {
	for _, d := range dirs {
		for cur := sq.offset(d.dr, d.df); cur.Valid(); cur = cur.offset(d.dr, d.df) {
			p := g.at(cur)
			if p.Empty() {
				continue
			}
			if p.Color == by && (p.Kind == slider || p.Kind == Queen) {
				return true
			}
			break
		}
	}
	return false
}

// attacks is the union of squares attacked by every piece of color by.
func (g *grid) attacks(by Color) SquareSet {
	var out SquareSet
	for r := 0; r < Height; r++ {
		for f := 0; f < Width; f++ {
			p := g[r][f]
			if p.Empty() || p.Color != by {
				continue
			}
			from := Sq(r, f)
			switch p.Kind {
			case Pawn:
				out |= steps(from, []direction{{by.forward(), -1}, {by.forward(), 1}})
			case King:
				out |= steps(from, allDirs)
			case Knight:
				out |= steps(from, knightJump)
			case Queen:
				out |= g.slide(from, allDirs)
			case Rook:
				out |= g.slide(from, straight)
			case Bishop:
				out |= g.slide(from, diagonal)
			}
		}
	}
	return out
}

// Attacks returns every square attacked by color by in the current position.
func (b *Board) Attacks(by Color) SquareSet {
	return b.squares.attacks(by)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
