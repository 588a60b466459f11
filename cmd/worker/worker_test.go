package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"example.com/miniter/internal/broker"
	"example.com/miniter/internal/metrics"
	"example.com/miniter/internal/models"
	"example.com/miniter/internal/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
)

func eventMessage(t *testing.T, e models.Event) kafka.Message {
	t.Helper()
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return kafka.Message{Key: []byte(e.Type), Value: data}
}

func newUser(t *testing.T, st *store.MockStore, name string) int64 {
	t.Helper()
	id, err := st.CreateUser(context.Background(), models.NewUser{Name: name, Email: name + "@x.com"}, "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return id
}

// ---------- Positive test ----------

func TestWorker_HandleRecordsEvent(t *testing.T) {
	mockStore := store.NewMock()
	authorID := newUser(t, mockStore, "author")

	w := New(mockStore, &broker.MockKafka{}, 1, 1)
	counter := metrics.EventsConsumed.WithLabelValues(models.EventTweetPosted)
	before := testutil.ToFloat64(counter)

	msg := eventMessage(t, broker.NewEvent(models.EventTweetPosted, authorID, 0, "Hello followers!"))
	if err := w.handle(context.Background(), msg.Value); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("expected events_consumed_total to grow by 1, got %v", got)
	}
}

// ---------- Negative tests ----------

func TestWorker_InvalidJSON(t *testing.T) {
	w := New(store.NewMock(), &broker.MockKafka{}, 1, 1)
	if err := w.handle(context.Background(), []byte("{invalid-json}")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestWorker_UnknownEventType(t *testing.T) {
	mockStore := store.NewMock()
	id := newUser(t, mockStore, "a")
	w := New(mockStore, &broker.MockKafka{}, 1, 1)

	msg := eventMessage(t, broker.NewEvent("post_created", id, 0, ""))
	if err := w.handle(context.Background(), msg.Value); !errors.Is(err, errUnknownEvent) {
		t.Fatalf("expected errUnknownEvent, got %v", err)
	}
}

func TestWorker_UnknownUser(t *testing.T) {
	w := New(store.NewMock(), &broker.MockKafka{}, 1, 1)

	msg := eventMessage(t, broker.NewEvent(models.EventUserFollowed, 42, 7, ""))
	if err := w.handle(context.Background(), msg.Value); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWorker_StoreFailure(t *testing.T) {
	w := New(&store.MockStoreFail{}, &broker.MockKafka{}, 1, 1)

	msg := eventMessage(t, broker.NewEvent(models.EventUnfollowed, 1, 2, ""))
	if err := w.handle(context.Background(), msg.Value); err == nil {
		t.Fatal("expected error from failing store")
	}
}

// cancelAwareStore fails lookups made with a cancelled context, like a SQL store.
type cancelAwareStore struct {
	*store.MockStore
}

func (s cancelAwareStore) GetUser(ctx context.Context, userID int64) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return s.MockStore.GetUser(ctx, userID)
}

func TestWorker_QueuedJobsSurviveShutdown(t *testing.T) {
	mockStore := store.NewMock()
	id := newUser(t, mockStore, "a")
	w := New(cancelAwareStore{mockStore}, &broker.MockKafka{}, 1, 1)

	counter := metrics.EventsConsumed.WithLabelValues(models.EventTweetPosted)
	before := testutil.ToFloat64(counter)

	jobs := make(chan []byte, 1)
	jobs <- eventMessage(t, broker.NewEvent(models.EventTweetPosted, id, 0, "queued")).Value
	close(jobs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.processLoop(ctx, jobs)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("expected queued event to be handled after cancel, got delta %v", got)
	}
}

func TestNew_Defaults(t *testing.T) {
	w := New(store.NewMock(), &broker.MockKafka{}, 0, 0)
	if w.workerCount <= 0 || w.jobQueueSize != w.workerCount*10 {
		t.Fatalf("unexpected defaults: workers=%d queue=%d", w.workerCount, w.jobQueueSize)
	}
}

func TestWaitWithContext(t *testing.T) {
	if !waitWithContext(context.Background(), time.Millisecond) {
		t.Fatal("expected wait to complete")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if waitWithContext(ctx, time.Second) {
		t.Fatal("expected cancelled wait to return false")
	}
}
