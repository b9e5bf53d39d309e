// Package redisq implements the durable job queue on Redis. Each job key
// carries an explicit state machine (pending -> active -> {done,
// retry_scheduled -> pending, exhausted}) kept in a Redis hash, decoupled
// from the list/zset plumbing that moves envelopes around.
package redisq

// TaskState is the queue-level lifecycle state of one job key.
type TaskState string

const (
	StatePending        TaskState = "pending"
	StateActive         TaskState = "active"
	StateRetryScheduled TaskState = "retry_scheduled"
	StateDone           TaskState = "done"
	StateExhausted      TaskState = "exhausted"
)

// InFlight reports whether the state still owns the key: enqueueing the same
// key again while in-flight must be a no-op.
func (s TaskState) InFlight() bool {
	return s == StatePending || s == StateActive || s == StateRetryScheduled
}

// Task is a point-in-time read of one job key's queue bookkeeping.
type Task struct {
	JobID     string
	State     TaskState
	Attempts  int
	LastError string
}
