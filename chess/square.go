package chess

import (
	"encoding/json"
	"fmt"
	"math/bits"
)

const (
	Width  = 8
	Height = 8
)

// Square addresses one cell of the board. Rank 0 is White's back rank.
type Square struct {
	Rank int
	File int
}

func Sq(rank, file int) Square {
	return Square{Rank: rank, File: file}
}

func (s Square) Valid() bool {
	return s.Rank >= 0 && s.Rank < Height && s.File >= 0 && s.File < Width
}

func (s Square) index() int {
	return s.Rank*Width + s.File
}

func (s Square) offset(dr, df int) Square {
	return Square{Rank: s.Rank + dr, File: s.File + df}
}

// String renders the square in coordinate notation, e.g. (0,4) is "e1".
func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.Rank, s.File)
	}
	return string([]byte{byte('a' + s.File), byte('1' + s.Rank)})
}

// ParseSquare reads coordinate notation such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	sq := Square{Rank: int(s[1] - '1'), File: int(s[0] - 'a')}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return sq, nil
}

// MarshalJSON encodes the square as [rank, file].
func (s Square) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Rank, s.File})
}

func (s *Square) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	sq := Square{Rank: pair[0], File: pair[1]}
	if !sq.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidSquare, pair)
	}
	*s = sq
	return nil
}

func squareAt(idx int) Square {
	return Square{Rank: idx / Width, File: idx % Width}
}

// SquareSet is a set of squares packed into one bit per square.
type SquareSet uint64

func SetOf(squares ...Square) SquareSet {
	var s SquareSet
	for _, sq := range squares {
		s = s.Add(sq)
	}
	return s
}

func (s SquareSet) Add(sq Square) SquareSet { return s | 1<<sq.index() }

func (s SquareSet) Remove(sq Square) SquareSet { return s &^ (1 << sq.index()) }

func (s SquareSet) Has(sq Square) bool { return sq.Valid() && s&(1<<sq.index()) != 0 }

func (s SquareSet) Empty() bool { return s == 0 }

func (s SquareSet) Len() int { return bits.OnesCount64(uint64(s)) }

// Squares lists the members in index order (rank-major).
func (s SquareSet) Squares() []Square {
	out := make([]Square, 0, s.Len())
	for b := uint64(s); b != 0; b &= b - 1 {
		out = append(out, squareAt(bits.TrailingZeros64(b)))
	}
	return out
}

func (s SquareSet) String() string {
	return fmt.Sprint(s.Squares())
}

func lowest(s SquareSet) int {
	return bits.TrailingZeros64(uint64(s))
}
