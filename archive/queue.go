package archive

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const writeTimeout = 5 * time.Second

// Queue hands records to a Recorder on its own goroutine so callers never wait on I/O.
type Queue struct {
	recorder Recorder
	records  chan Record
	log      zerolog.Logger
}

func NewQueue(recorder Recorder, size int, log zerolog.Logger) *Queue {
	return &Queue{
		recorder: recorder,
		records:  make(chan Record, size),
		log:      log.With().Str("component", "archive").Logger(),
	}
}

// Enqueue never blocks. When the buffer is full the record is dropped and false returned.
func (q *Queue) Enqueue(rec Record) bool {
	select {
	case q.records <- rec:
		return true
	default:
		q.log.Warn().Str("room_id", rec.RoomID).Msg("archive queue full, dropping record")
		return false
	}
}

// Run writes queued records until ctx is cancelled.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-q.records:
			q.write(ctx, rec)
		}
	}
}

func (q *Queue) write(ctx context.Context, rec Record) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := q.recorder.Record(ctx, rec); err != nil {
		q.log.Error().Err(err).Str("room_id", rec.RoomID).Msg("archive write failed")
		return
	}
	q.log.Debug().Str("room_id", rec.RoomID).Str("result", rec.Result).Int("plies", len(rec.Moves)).Msg("game archived")
}
