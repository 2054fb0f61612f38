package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inventory-platform/inventory-api/internal/api/metrics"
	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
)

const (
	defaultWorkers      = 4
	defaultBuffer       = 256
	defaultWriteTimeout = 5 * time.Second
)

// job is a queued event plus the request context it was recorded under,
// detached from the request's cancellation.
type job struct {
	ctx   context.Context
	event domain.AuditEvent
}

// Dispatcher is the asynchronous audit recorder. Events are routed to a fixed
// set of workers by consistent hashing on the actor, so one actor's events
// are written in order. Record never blocks: when a worker's channel is full
// the event is dropped and counted.
type Dispatcher struct {
	workers      []chan job
	sink         ports.AuditSink
	log          zerolog.Logger
	writeTimeout time.Duration
	now          func() time.Time

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers, each
// buffering up to buffer events. Non-positive values use the defaults.
func NewDispatcher(numWorkers, buffer int, sink ports.AuditSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &Dispatcher{
		workers:      make([]chan job, numWorkers),
		sink:         sink,
		log:          log,
		writeTimeout: defaultWriteTimeout,
		now:          time.Now,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Close has been
// called and their channel is drained.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Record stamps the event and hands it to its worker.
func (d *Dispatcher) Record(ctx context.Context, event domain.AuditEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(event, "dispatcher closed")
		return
	}

	idx := d.shardIndex(event.Actor)
	select {
	case d.workers[idx] <- job{ctx: context.WithoutCancel(ctx), event: event}:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(event, "queue full")
	}
}

// Close stops accepting events and waits for the workers to drain, or for
// ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps an actor deterministically to a worker index.
func (d *Dispatcher) shardIndex(actor string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actor))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) drop(event domain.AuditEvent, reason string) {
	metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
	d.log.Warn().
		Str("action", event.Action).
		Str("actor", event.Actor).
		Str("reason", reason).
		Msg("audit event dropped")
}

func (d *Dispatcher) runWorker(id int, ch <-chan job) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for j := range ch {
		metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		d.write(j.ctx, id, &j.event)
	}
}

func (d *Dispatcher) write(parent context.Context, id int, event *domain.AuditEvent) {
	ctx, cancel := context.WithTimeout(parent, d.writeTimeout)
	defer cancel()

	start := time.Now()
	err := d.sink.Append(ctx, event)
	metrics.AuditWriteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("action", event.Action).
			Str("actor", event.Actor).
			Int("worker_id", id).
			Msg("audit write failed")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues("written").Inc()
}
