package chess

type Status uint8

const (
	InProgress Status = iota
	Win
	Draw
)

// Result is the outcome of a position. Winner is meaningful only when Status is Win.
type Result struct {
	Status Status
	Winner Color
}

func (r Result) Over() bool { return r.Status != InProgress }

func (r Result) String() string {
	switch r.Status {
	case Win:
		return r.Winner.String() + "_won"
	case Draw:
		return "draw"
	}
	return "in_progress"
}

const RepetitionLimit = 3

// Result classifies the current position: threefold repetition first, then checkmate or
// stalemate for either side, starting with a side that is in check.
func (b *Board) Result() Result {
	if b.maxRepetition >= RepetitionLimit {
		return Result{Status: Draw}
	}

	order := [2]Color{White, Black}
	if b.InCheck(Black) {
		order = [2]Color{Black, White}
	}
	for _, c := range order {
		if r := b.outcomeFor(c); r.Over() {
			return r
		}
	}
	return Result{Status: InProgress}
}

func (b *Board) outcomeFor(c Color) Result {
	if b.HasLegalMove(c) {
		return Result{Status: InProgress}
	}
	if b.InCheck(c) {
		return Result{Status: Win, Winner: c.Opposite()}
	}
	return Result{Status: Draw}
}
