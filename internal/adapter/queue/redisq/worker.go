package redisq

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evaluasi/cv-evaluator/internal/domain"
	"github.com/evaluasi/cv-evaluator/internal/observability"
)

// Handler executes one delivery. A returned error triggers the queue's
// retry policy for the envelope's key.
type Handler func(ctx context.Context, env domain.QueueEnvelope) error

// acquireScript marks a delivery active and charges one attempt.
var acquireScript = redis.NewScript(`
local attempts = redis.call("HINCRBY", KEYS[1], "attempts", 1)
redis.call("HSET", KEYS[1], "state", "active")
return attempts
`)

var completeScript = redis.NewScript(`
redis.call("HSET", KEYS[1], "state", "done")
return 1
`)

// failScript either parks the key for a fixed-delay retry or, when the
// attempt budget is spent, marks it exhausted. Returns -1 when exhausted.
var failScript = redis.NewScript(`
local attempts = tonumber(redis.call("HGET", KEYS[1], "attempts") or "0")
redis.call("HSET", KEYS[1], "last_error", ARGV[3])
if attempts >= tonumber(ARGV[1]) then
  redis.call("HSET", KEYS[1], "state", "exhausted")
  return -1
end
redis.call("HSET", KEYS[1], "state", "retry_scheduled")
redis.call("ZADD", KEYS[2], ARGV[2], ARGV[4])
return attempts
`)

// promoteScript moves every due retry back onto the pending list.
var promoteScript = redis.NewScript(`
local due = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
for _, id in ipairs(due) do
  redis.call("ZREM", KEYS[1], id)
  redis.call("HSET", ARGV[2] .. id, "state", "pending")
  redis.call("LPUSH", KEYS[2], id)
end
return #due
`)

// WorkerPool drains the pending list with a fixed number of consumers. Each
// envelope is delivered to exactly one consumer; shutdown stops new dequeues
// but lets in-flight handlers run to completion.
type WorkerPool struct {
	q           *Queue
	handler     Handler
	concurrency int

	promoteEvery time.Duration
	popTimeout   time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewWorkerPool constructs a pool of concurrency consumers over q.
func NewWorkerPool(q *Queue, handler Handler, concurrency int) *WorkerPool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &WorkerPool{
		q:            q,
		handler:      handler,
		concurrency:  concurrency,
		promoteEvery: 100 * time.Millisecond,
		popTimeout:   time.Second,
	}
}

// Start launches the consumers and the retry promoter. It returns
// immediately; call Stop to drain.
func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go func(slot int) {
			defer p.wg.Done()
			p.consume(ctx, slot)
		}(i)
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.promote(ctx)
	}()
}

// Stop blocks until every consumer has finished its in-flight delivery.
func (p *WorkerPool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *WorkerPool) consume(ctx context.Context, slot int) {
	log := slog.With(slog.Int("slot", slot))
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		res, err := p.q.rdb.BRPop(ctx, p.popTimeout, keyPending).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Error("queue pop failed", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.popTimeout):
			}
			continue
		}
		if len(res) != 2 {
			continue
		}
		p.deliver(ctx, res[1], log)
	}
}

func (p *WorkerPool) deliver(ctx context.Context, jobID string, log *slog.Logger) {
	attempts, err := acquireScript.Run(ctx, p.q.rdb, []string{taskKey(jobID)}).Int()
	if err != nil {
		log.Error("queue acquire failed", slog.String("job_id", jobID), slog.Any("error", err))
		return
	}
	if attempts > 1 {
		observability.RetryJob("evaluate")
	}
	log.Info("delivering job", slog.String("job_id", jobID), slog.Int("attempt", attempts))

	// The handler outlives pool shutdown: only new dequeues stop.
	hctx := context.WithoutCancel(ctx)
	if err := p.handler(hctx, domain.QueueEnvelope{JobID: jobID}); err != nil {
		p.fail(hctx, jobID, err, log)
		return
	}
	if _, err := completeScript.Run(hctx, p.q.rdb, []string{taskKey(jobID)}).Result(); err != nil {
		log.Error("queue complete failed", slog.String("job_id", jobID), slog.Any("error", err))
	}
}

func (p *WorkerPool) fail(ctx context.Context, jobID string, cause error, log *slog.Logger) {
	due := time.Now().Add(p.q.retryDelay).UnixMilli()
	state, err := failScript.Run(ctx, p.q.rdb,
		[]string{taskKey(jobID), keyRetry},
		p.q.maxAttempts, due, cause.Error(), jobID,
	).Int()
	if err != nil {
		log.Error("queue fail bookkeeping failed", slog.String("job_id", jobID), slog.Any("error", err))
		return
	}
	if state == -1 {
		log.Warn("job exhausted retry budget",
			slog.String("job_id", jobID),
			slog.Int("max_attempts", p.q.maxAttempts),
			slog.Any("error", cause))
		return
	}
	log.Warn("job scheduled for retry",
		slog.String("job_id", jobID),
		slog.Int("attempt", state),
		slog.Duration("delay", p.q.retryDelay),
		slog.Any("error", cause))
}

func (p *WorkerPool) promote(ctx context.Context) {
	ticker := time.NewTicker(p.promoteEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().UnixMilli()
			if _, err := promoteScript.Run(ctx, p.q.rdb,
				[]string{keyRetry, keyPending}, now, taskKeyPrefix,
			).Result(); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("retry promotion failed", slog.Any("error", err))
			}
			if depth, err := p.q.PendingDepth(ctx); err == nil {
				observability.QueuePendingDepth.Set(float64(depth))
			}
		}
	}
}
