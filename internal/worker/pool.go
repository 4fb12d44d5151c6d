package worker

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

// Handler processes one inbound chat event.
type Handler interface {
	Dispatch(ctx context.Context, ev domain.InboundEvent) error
}

// Pool runs inbound events on a fixed set of workers. Events from the same
// sender always land on the same worker so a user's messages are handled in
// the order they arrived. Every worker queues up to bufferSize events.
type Pool struct {
	queues     []chan domain.InboundEvent
	bufferSize int
	handler    Handler
	timeout    time.Duration
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewPool(bufferSize int, handler Handler, timeout time.Duration, logger zerolog.Logger) *Pool {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Pool{
		bufferSize: bufferSize,
		handler:    handler,
		timeout:    timeout,
		logger:     logger.With().Str("component", "worker_pool").Logger(),
	}
}

func (p *Pool) Start(workerCount int) {
	if workerCount < 1 {
		workerCount = 1
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.queues != nil || p.closed {
		return
	}

	p.queues = make([]chan domain.InboundEvent, workerCount)
	for i := range p.queues {
		p.queues[i] = make(chan domain.InboundEvent, p.bufferSize)
		p.wg.Add(1)
		go p.worker(i, p.queues[i])
	}
	p.logger.Info().Int("workers", workerCount).Int("queue_per_worker", p.bufferSize).Msg("Worker pool started")
}

func (p *Pool) worker(id int, jobs <-chan domain.InboundEvent) {
	defer p.wg.Done()

	for ev := range jobs {
		p.handle(id, ev)
	}
}

func (p *Pool) handle(id int, ev domain.InboundEvent) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Int("worker", id).
				Str("sender_id", ev.SenderID).
				Interface("panic", r).
				Msg("Event handler panicked")
		}
	}()

	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.handler.Dispatch(ctx, ev); err != nil {
		p.logger.Error().
			Err(err).
			Int("worker", id).
			Str("sender_id", ev.SenderID).
			Msg("Event processing failed")
	}
}

// Submit queues ev without blocking. It returns false when the sender's
// queue is full or the pool is not running.
func (p *Pool) Submit(ev domain.InboundEvent) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || len(p.queues) == 0 {
		return false
	}

	select {
	case p.queues[p.shard(ev.SenderID)] <- ev:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting events and waits for queued ones to finish.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, q := range p.queues {
		close(q)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info().Msg("Worker pool stopped")
}

func (p *Pool) shard(senderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(senderID))
	return int(h.Sum32() % uint32(len(p.queues)))
}
