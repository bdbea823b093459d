package indexing

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	domstory "github.com/kailas-cloud/storyline/internal/domain/story"
	"github.com/kailas-cloud/storyline/internal/metrics"
)

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 30 * time.Second
)

// Handler processes one queued story id.
type Handler func(ctx context.Context, id domstory.ID)

// PoolConfig is the configuration of the background indexing pool.
type PoolConfig struct {
	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds a single job (defaults to 30s).
	JobTimeout time.Duration

	Logger *zap.Logger
}

// Pool runs indexing jobs off the request path.
type Pool struct {
	config  PoolConfig
	handler Handler
	queue   chan domstory.ID
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	logger  *zap.Logger
}

// NewPool creates a pool and starts its workers.
func NewPool(c PoolConfig, h Handler) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	p := &Pool{
		config:  c,
		handler: h,
		queue:   make(chan domstory.ID, c.QueueSize),
		logger:  c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}
	return p, nil
}

// Enqueue submits a story for indexing.
// Returns false when the queue is full or the pool is closed; the job is dropped.
func (p *Pool) Enqueue(id domstory.ID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn("Indexing job not queued, pool closed", zap.String("id", id.String()))
		metrics.IndexingJobsTotal.WithLabelValues("dropped").Inc()
		return false
	}

	select {
	case p.queue <- id:
		metrics.IndexingQueueDepth.Set(float64(len(p.queue)))
		p.logger.Debug("Indexing job queued", zap.String("id", id.String()))
		return true
	default:
		metrics.IndexingJobsTotal.WithLabelValues("dropped").Inc()
		p.logger.Error("Indexing job not queued, queue full, job dropped", zap.String("id", id.String()))
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to drain.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker(n uint) {
	defer p.wg.Done()
	p.logger.Debug("Indexing worker started", zap.Uint("worker_id", n))

	for id := range p.queue {
		metrics.IndexingQueueDepth.Set(float64(len(p.queue)))
		ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
		p.handler(ctx, id)
		cancel()
	}

	p.logger.Debug("Indexing worker stopped", zap.Uint("worker_id", n))
}
