package chess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultString(t *testing.T) {
	require.Equal(t, "white_won", Result{Status: Win, Winner: White}.String())
	require.Equal(t, "black_won", Result{Status: Win, Winner: Black}.String())
	require.Equal(t, "draw", Result{Status: Draw}.String())
	require.Equal(t, "in_progress", Result{}.String())
	require.False(t, Result{}.Over())
}

func TestStartingPositionInProgress(t *testing.T) {
	require.Equal(t, Result{Status: InProgress}, NewBoard("").Result())
}

func TestFoolsMate(t *testing.T) {
	b := NewBoard("")
	for _, mv := range [][2]Square{
		{Sq(1, 5), Sq(2, 5)},
		{Sq(6, 4), Sq(4, 4)},
		{Sq(1, 6), Sq(3, 6)},
	} {
		require.True(t, b.AllowedMoves(mv[0], b.ColorToPlay()).Has(mv[1]))
		mustApply(t, b, mv[0], mv[1])
		require.False(t, b.Result().Over())
	}

	mustApply(t, b, Sq(7, 3), Sq(3, 7))
	require.True(t, b.InCheck(White))
	require.Equal(t, Result{Status: Win, Winner: Black}, b.Result())
}

func TestCheckmateKingOnE7(t *testing.T) {
	b := onePiece(Sq(6, 4), wK)
	b.Place(Sq(5, 4), bQ)
	b.Place(Sq(4, 4), bK)
	b.Place(Sq(7, 0), bR)

	require.True(t, b.InCheck(White))
	require.True(t, b.AllowedMoves(Sq(6, 4), White).Empty())
	require.Equal(t, Result{Status: Win, Winner: Black}, b.Result())
}

func TestCheckWithEscapeIsNotMate(t *testing.T) {
	b := onePiece(Sq(6, 4), wK)
	b.Place(Sq(5, 4), bQ)
	b.Place(Sq(7, 0), bR)

	// The queen is undefended, so the king takes it.
	require.True(t, b.AllowedMoves(Sq(6, 4), White).Has(Sq(5, 4)))
	require.Equal(t, Result{Status: InProgress}, b.Result())
}

func TestQuietPositionInProgress(t *testing.T) {
	b := onePiece(Sq(6, 4), wK)
	b.Place(Sq(4, 3), bR)
	b.Place(Sq(7, 5), bR)
	b.Place(Sq(6, 6), bK)
	for _, sq := range []Square{Sq(1, 0), Sq(1, 2), Sq(3, 1), Sq(3, 7)} {
		b.Place(sq, wP)
	}
	for _, sq := range []Square{Sq(5, 0), Sq(5, 6), Sq(6, 1)} {
		b.Place(sq, bP)
	}

	require.False(t, b.InCheck(White))
	require.Equal(t, Result{Status: InProgress}, b.Result())
}

func TestStalemate(t *testing.T) {
	b := onePiece(Sq(7, 7), bK)
	b.Place(Sq(5, 6), wQ)
	b.Place(Sq(0, 0), wK)

	require.False(t, b.InCheck(Black))
	require.False(t, b.HasLegalMove(Black))
	require.Equal(t, Result{Status: Draw}, b.Result())
}

func TestThreefoldRepetition(t *testing.T) {
	b := NewBoard("")
	shuffle := [][2]Square{
		{Sq(0, 6), Sq(2, 5)},
		{Sq(7, 6), Sq(5, 5)},
		{Sq(2, 5), Sq(0, 6)},
		{Sq(5, 5), Sq(7, 6)},
	}

	for round := 0; round < 2; round++ {
		for i, mv := range shuffle {
			mustApply(t, b, mv[0], mv[1])
			if round == 1 && i == len(shuffle)-1 {
				break
			}
			require.Equal(t, Result{Status: InProgress}, b.Result(), "round %d ply %d", round, i)
		}
	}

	require.Equal(t, 3, b.Repetitions())
	require.Equal(t, Result{Status: Draw}, b.Result())
}

func TestRepetitionIgnoresOtherPositions(t *testing.T) {
	b := NewBoard("")
	mustApply(t, b, Sq(0, 6), Sq(2, 5))
	mustApply(t, b, Sq(7, 6), Sq(5, 5))
	mustApply(t, b, Sq(2, 5), Sq(0, 6))
	mustApply(t, b, Sq(5, 5), Sq(7, 6))
	require.Equal(t, 2, b.Repetitions())
	require.Equal(t, 2, b.MaxRepetition())

	mustApply(t, b, Sq(1, 4), Sq(3, 4))
	require.Equal(t, 1, b.Repetitions())
	require.Equal(t, 2, b.MaxRepetition())
	require.False(t, b.Result().Over())
}
