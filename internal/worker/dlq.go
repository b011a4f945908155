package worker

// Dead letter queue. Jobs whose processing failed terminally land in a
// Redis list per source queue (dlq:{queue}) for inspection and replay.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with enough metadata to debug and replay it.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// DLQ gives access to the dead letter lists of the worker queues.
type DLQ struct {
	rdb *redis.Client
}

func NewDLQ(rdb *redis.Client) *DLQ { return &DLQ{rdb: rdb} }

// Push moves a failed job into the dead letter list of its source queue.
// Errors are logged, not returned: by the time a job is headed for the DLQ
// there is nobody left to hand the error to.
func (q *DLQ) Push(ctx context.Context, queue string, job Job, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}
	if err := q.rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: push")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("job moved to dead letter queue")
}

// Length reports how many entries a queue's dead letter list holds.
func (q *DLQ) Length(ctx context.Context, queue string) (int64, error) {
	return q.rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// Replay moves up to max dead entries back onto their source queue. Used
// after fixing whatever made delivery fail, e.g. bad SMTP credentials.
func (q *DLQ) Replay(ctx context.Context, queue string, max int) (int, error) {
	replayed := 0
	for replayed < max {
		raw, err := q.rdb.RPop(ctx, DLQPrefix+queue).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return replayed, err
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("dlq: skipping unreadable entry")
			continue
		}

		job := Job{Type: entry.JobType, Payload: entry.Payload}
		encoded, err := json.Marshal(job)
		if err != nil {
			return replayed, err
		}
		if err := q.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
			return replayed, err
		}
		replayed++
	}
	return replayed, nil
}
