package chess

import (
	"fmt"
	"strings"
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "white":
		*c = White
	case "black":
		*c = Black
	default:
		return fmt.Errorf("unknown color %q", text)
	}
	return nil
}

// homeRank is the back rank of the color, where its king and rooks start.
func (c Color) homeRank() int {
	if c == White {
		return 0
	}
	return Height - 1
}

func (c Color) pawnRank() int {
	if c == White {
		return 1
	}
	return Height - 2
}

func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

type Kind uint8

const (
	NoKind Kind = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

var kindLetters = [...]byte{NoKind: ' ', King: 'k', Queen: 'q', Rook: 'r', Bishop: 'b', Knight: 'n', Pawn: 'p'}

// Piece is a value; the zero Piece marks an empty square.
type Piece struct {
	Color Color
	Kind  Kind
}

func (p Piece) Empty() bool { return p.Kind == NoKind }

// Letter is the display character: uppercase for White, lowercase for Black, space if empty.
func (p Piece) Letter() byte {
	l := kindLetters[p.Kind]
	if p.Color == White && p.Kind != NoKind {
		l -= 'a' - 'A'
	}
	return l
}

func pieceFromLetter(l byte) (Piece, bool) {
	if l == ' ' {
		return Piece{}, true
	}
	color := Black
	if l >= 'A' && l <= 'Z' {
		color = White
		l += 'a' - 'A'
	}
	for k, letter := range kindLetters {
		if Kind(k) != NoKind && letter == l {
			return Piece{Color: color, Kind: Kind(k)}, true
		}
	}
	return Piece{}, false
}

// Move is one executed ply as recorded in the board history.
type Move struct {
	Piece Piece
	From  Square
	To    Square
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}

type grid [Height][Width]Piece

func (g *grid) at(sq Square) Piece {
	return g[sq.Rank][sq.File]
}

func (g *grid) set(sq Square, p Piece) {
	g[sq.Rank][sq.File] = p
}

func (g *grid) occupied(sq Square) bool {
	return !g[sq.Rank][sq.File].Empty()
}

// Board is the authoritative state of one game. It is owned by a single goroutine and
// is not safe for concurrent use.
type Board struct {
	squares       grid
	history       []Move
	kings         [2]Square
	hasKing       [2]bool
	positions     map[grid]int
	maxRepetition int

	GameOver bool
	Name     string
}

const (
	DefaultName   = "Room"
	MaxNameLength = 32
)

var backRank = [Width]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position.
func NewBoard(name string) *Board {
	var g grid
	for file, kind := range backRank {
		g[0][file] = Piece{Color: White, Kind: kind}
		g[1][file] = Piece{Color: White, Kind: Pawn}
		g[Height-2][file] = Piece{Color: Black, Kind: Pawn}
		g[Height-1][file] = Piece{Color: Black, Kind: kind}
	}
	return newBoardFromGrid(g, name)
}

func newBoardFromGrid(g grid, name string) *Board {
	b := &Board{
		squares:   g,
		positions: make(map[grid]int),
		Name:      normalizeName(name),
	}
	for r := 0; r < Height; r++ {
		for f := 0; f < Width; f++ {
			if p := g[r][f]; p.Kind == King {
				b.kings[p.Color] = Sq(r, f)
				b.hasKing[p.Color] = true
			}
		}
	}
	b.positions[g] = 1
	b.maxRepetition = 1
	return b
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	if r := []rune(name); len(r) > MaxNameLength {
		name = string(r[:MaxNameLength])
	}
	return name
}

// Clone returns a deep copy; mutating the copy never affects b.
func (b *Board) Clone() *Board {
	c := *b
	c.history = append([]Move(nil), b.history...)
	c.positions = make(map[grid]int, len(b.positions))
	for k, v := range b.positions {
		c.positions[k] = v
	}
	return &c
}

// ColorToPlay derives the side to move from history parity.
func (b *Board) ColorToPlay() Color {
	if len(b.history)%2 == 0 {
		return White
	}
	return Black
}

func (b *Board) At(sq Square) Piece {
	if !sq.Valid() {
		return Piece{}
	}
	return b.squares.at(sq)
}

// Place puts p on sq, replacing whatever was there. It is meant for setting up
// positions before play; it does not touch history or repetition counts.
func (b *Board) Place(sq Square, p Piece) {
	if old := b.squares.at(sq); old.Kind == King && b.kings[old.Color] == sq {
		b.hasKing[old.Color] = false
	}
	b.squares.set(sq, p)
	if p.Kind == King {
		b.kings[p.Color] = sq
		b.hasKing[p.Color] = true
	}
}

// KingSquare reports where the king of c stands, if it is on the board.
func (b *Board) KingSquare(c Color) (Square, bool) {
	return b.kings[c], b.hasKing[c]
}

func (b *Board) History() []Move {
	return append([]Move(nil), b.history...)
}

func (b *Board) Plies() int {
	return len(b.history)
}

func (b *Board) LastMove() (Move, bool) {
	if len(b.history) == 0 {
		return Move{}, false
	}
	return b.history[len(b.history)-1], true
}

// Repetitions reports how often the current occupancy has occurred.
func (b *Board) Repetitions() int {
	return b.positions[b.squares]
}

func (b *Board) MaxRepetition() int {
	return b.maxRepetition
}

// String renders the board row by row, rank 0 first, one character per square.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow(Height * (Width + 1))
	for r := 0; r < Height; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for f := 0; f < Width; f++ {
			sb.WriteByte(b.squares[r][f].Letter())
		}
	}
	return sb.String()
}

// ParseBoard reads the String form back into a board with no history.
func ParseBoard(s string) (*Board, error) {
	rows := strings.Split(s, "\n")
	if len(rows) != Height {
		return nil, fmt.Errorf("%w: want %d rows, got %d", ErrInvalidBoard, Height, len(rows))
	}
	var g grid
	for r, row := range rows {
		if len(row) != Width {
			return nil, fmt.Errorf("%w: row %d has %d squares", ErrInvalidBoard, r, len(row))
		}
		for f := 0; f < Width; f++ {
			p, ok := pieceFromLetter(row[f])
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q at %v", ErrInvalidBoard, row[f], Sq(r, f))
			}
			g[r][f] = p
		}
	}
	return newBoardFromGrid(g, ""), nil
}
