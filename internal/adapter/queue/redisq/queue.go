package redisq

import (
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evaluasi/cv-evaluator/internal/domain"
	"github.com/evaluasi/cv-evaluator/internal/observability"
)

const (
	keyPending    = "evalq:pending"
	keyRetry      = "evalq:retry"
	taskKeyPrefix = "evalq:task:"
)

func taskKey(jobID string) string { return taskKeyPrefix + jobID }

// enqueueScript admits a key unless it is already in-flight. A done or
// exhausted key may be re-admitted; its bookkeeping starts over.
var enqueueScript = redis.NewScript(`
local state = redis.call("HGET", KEYS[1], "state")
if state == "pending" or state == "active" or state == "retry_scheduled" then
  return 0
end
redis.call("HSET", KEYS[1], "state", "pending", "attempts", 0, "last_error", "")
redis.call("LPUSH", KEYS[2], ARGV[1])
return 1
`)

// Queue implements domain.Queue on Redis. Envelopes wait on a list, retries
// park on a zset scored by due time, and per-key state lives in a hash.
type Queue struct {
	rdb         *redis.Client
	maxAttempts int
	retryDelay  time.Duration
}

// New constructs a Queue. maxAttempts counts the first delivery; retryDelay
// is fixed per retry, no exponential growth.
func New(rdb *redis.Client, maxAttempts int, retryDelay time.Duration) *Queue {
	return &Queue{rdb: rdb, maxAttempts: maxAttempts, retryDelay: retryDelay}
}

// NewClient builds a go-redis client from a redis:// URL.
func NewClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("op=queue.parse_url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Enqueue admits one unit of work keyed by jobID. Enqueueing a key that is
// already pending or active is idempotent.
func (q *Queue) Enqueue(ctx domain.Context, jobID string) error {
	admitted, err := enqueueScript.Run(ctx, q.rdb, []string{taskKey(jobID), keyPending}, jobID).Int()
	if err != nil {
		return fmt.Errorf("op=queue.enqueue: %w", err)
	}
	if admitted == 1 {
		observability.EnqueueJob("evaluate")
	}
	return nil
}

// Task reads the bookkeeping for one job key. ErrNotFound when the key was
// never enqueued.
func (q *Queue) Task(ctx domain.Context, jobID string) (Task, error) {
	vals, err := q.rdb.HGetAll(ctx, taskKey(jobID)).Result()
	if err != nil {
		return Task{}, fmt.Errorf("op=queue.task: %w", err)
	}
	if len(vals) == 0 {
		return Task{}, fmt.Errorf("op=queue.task: job %s: %w", jobID, domain.ErrNotFound)
	}
	attempts, _ := strconv.Atoi(vals["attempts"])
	return Task{
		JobID:     jobID,
		State:     TaskState(vals["state"]),
		Attempts:  attempts,
		LastError: vals["last_error"],
	}, nil
}

// PendingDepth reports how many envelopes wait on the pending list.
func (q *Queue) PendingDepth(ctx domain.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, keyPending).Result()
	if err != nil {
		return 0, fmt.Errorf("op=queue.depth: %w", err)
	}
	return n, nil
}

// Ping verifies the Redis connection; used by readiness checks.
func (q *Queue) Ping(ctx domain.Context) error {
	if err := q.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("op=queue.ping: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (q *Queue) Close() error { return q.rdb.Close() }
