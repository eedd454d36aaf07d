package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/agriconnect/platform/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher routes notification deliveries to a fixed set of workers using
// consistent hashing on the recipient, guaranteeing per-recipient ordering.
// Broadcasts (nil recipient) all map to the same shard for the same reason.
type Dispatcher struct {
	workers []chan ports.NotificationInput
	service ports.NotificationService
	log     zerolog.Logger
	stopped <-chan struct{}
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.NotificationService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.NotificationInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.NotificationInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.stopped = ctx.Done()
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a notification to the worker responsible for its recipient.
// The call is non-blocking up to channelBuffer capacity; once the dispatcher
// context is cancelled the input is dropped instead of blocking on a full
// shard whose worker has already exited.
func (d *Dispatcher) Enqueue(input ports.NotificationInput) {
	select {
	case d.workers[d.shardIndex(input.UserID)] <- input:
	case <-d.stopped:
		d.log.Warn().Str("title", input.Title).Msg("dispatcher stopped, notification dropped")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID *int64) int {
	key := "broadcast"
	if userID != nil {
		key = strconv.FormatInt(*userID, 10)
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.NotificationInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case input, ok := <-ch:
			if !ok {
				return
			}
			if _, err := d.service.Publish(ctx, input); err != nil {
				d.log.Error().Err(err).
					Str("title", input.Title).
					Int("worker_id", id).
					Msg("notification delivery failed")
			}
		}
	}
}
