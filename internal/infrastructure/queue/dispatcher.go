package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stiarchives/portal/internal/api/metrics"
	"github.com/stiarchives/portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = time.Minute
)

// Dispatcher delivers queued emails on a fixed set of workers. Messages for
// the same recipient always land on the same worker and keep their order.
type Dispatcher struct {
	workers  []chan ports.EmailMessage
	notifier ports.Notifier
	log      zerolog.Logger

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	started bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.EmailMessage, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.EmailMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Shutdown closes
// their channel and they have drained it, or when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands msg to its worker without blocking. When the worker channel
// is full or the dispatcher is shut down the message is dropped and logged.
func (d *Dispatcher) Enqueue(msg ports.EmailMessage) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.MailQueueDroppedTotal.Inc()
		d.log.Warn().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail dispatcher closed, email dropped")
		return
	}

	idx := d.shardIndex(msg.To)
	select {
	case d.workers[idx] <- msg:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.MailQueueDroppedTotal.Inc()
		d.log.Error().Str("to", msg.To).Int("worker_id", idx).Msg("mail queue full, email dropped")
	}
}

// Shutdown stops accepting messages and waits for queued ones to be sent or
// for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
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

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(recipient)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.EmailMessage) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.MailQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, msg)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, msg ports.EmailMessage) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	if err := d.notifier.Send(sendCtx, msg); err != nil {
		metrics.EmailsTotal.WithLabelValues("queued", "failed").Inc()
		d.log.Error().Err(err).
			Str("to", msg.To).
			Str("subject", msg.Subject).
			Int("worker_id", id).
			Msg("email delivery failed")
		return
	}
	metrics.EmailsTotal.WithLabelValues("queued", "sent").Inc()
	d.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Int("worker_id", id).Msg("email sent")
}
