package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"sync"
	"time"

	"example.com/miniter/internal/broker"
	"example.com/miniter/internal/logger"
	"example.com/miniter/internal/metrics"
	"example.com/miniter/internal/models"
	"example.com/miniter/internal/store"
)

var logg = logger.New()

var errUnknownEvent = errors.New("unknown event type")

// Worker consumes activity events from Kafka and records them concurrently.
type Worker struct {
	users        store.UserStore
	reader       broker.KafkaReader
	workerCount  int
	jobQueueSize int
}

// New creates a new concurrent Worker using pre-initialized dependencies.
func New(users store.UserStore, reader broker.KafkaReader, workerCount, jobQueueSize int) *Worker {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if jobQueueSize <= 0 {
		jobQueueSize = workerCount * 10
	}
	return &Worker{
		users:        users,
		reader:       reader,
		workerCount:  workerCount,
		jobQueueSize: jobQueueSize,
	}
}

// Run starts message reading and concurrent processing.
func (w *Worker) Run(ctx context.Context) {
	if w.workerCount <= 0 {
		w.workerCount = 1
	}
	if w.jobQueueSize <= 0 {
		w.jobQueueSize = 10
	}

	logg.Info("worker", "Starting "+fmt.Sprint(w.workerCount)+" workers with queue size "+fmt.Sprint(w.jobQueueSize))

	jobs := make(chan []byte, w.jobQueueSize)
	var wg sync.WaitGroup

	for i := 0; i < w.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.processLoop(ctx, jobs)
		}()
	}

	w.readLoop(ctx, jobs)

	close(jobs)
	wg.Wait()
	logg.Info("worker", "All workers stopped gracefully")
}

// readLoop reads Kafka messages and pushes them into a job queue.
func (w *Worker) readLoop(ctx context.Context, jobs chan<- []byte) {
	var retry int
	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, err := w.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				backoff := time.Duration(math.Min(1000, math.Pow(2, float64(retry)))) * time.Millisecond
				logg.Error("worker", "Kafka read error, backing off", err)
				if !waitWithContext(ctx, backoff) {
					return
				}
				retry++
				continue
			}
			retry = 0

			if len(msg.Value) == 0 {
				if !waitWithContext(ctx, 50*time.Millisecond) {
					return
				}
				continue
			}

			select {
			case jobs <- msg.Value:
			case <-ctx.Done():
				return
			}
		}
	}
}

// processLoop drains the job queue until it is closed. Their offsets are
// already committed, so jobs queued before shutdown are handled with a
// context that outlives ctx.
func (w *Worker) processLoop(ctx context.Context, jobs <-chan []byte) {
	drainCtx := context.WithoutCancel(ctx)
	for data := range jobs {
		if err := w.handle(drainCtx, data); err != nil {
			logg.Error("worker", "Dropping activity event", err)
		}
	}
}

// handle decodes one activity event, checks it refers to a known user and
// records it.
func (w *Worker) handle(ctx context.Context, data []byte) error {
	var event models.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("invalid JSON in Kafka message: %w", err)
	}

	switch event.Type {
	case models.EventTweetPosted, models.EventUserFollowed, models.EventUnfollowed:
	default:
		return fmt.Errorf("%q: %w", event.Type, errUnknownEvent)
	}

	if _, err := w.users.GetUser(ctx, event.UserID); err != nil {
		return fmt.Errorf("event %s: %w", event.ID, err)
	}

	metrics.EventsConsumed.WithLabelValues(event.Type).Inc()

	msg := "Recorded " + event.Type + " by user_id=" + strconv.FormatInt(event.UserID, 10)
	if event.TargetID != 0 {
		msg += " target user_id=" + strconv.FormatInt(event.TargetID, 10)
	}
	logg.Info("worker", msg)
	return nil
}

// waitWithContext waits for duration or context cancellation.
func waitWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close shuts down the Kafka reader.
func (w *Worker) Close() error {
	logg.Info("worker", "Closing Kafka reader")
	if err := w.reader.Close(); err != nil {
		logg.Error("worker", "Error closing Kafka reader", err)
		return err
	}
	return nil
}
