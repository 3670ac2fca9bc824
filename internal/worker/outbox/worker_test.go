package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	outboxmodel "github.com/feastly/order-svc/internal/service/models/outbox"
)

type publishCall struct {
	exchange    string
	routingKey  string
	contentType string
	body        []byte
}

type mockPublisher struct {
	mu    sync.Mutex
	err   error
	calls []publishCall
}

func (p *mockPublisher) Publish(exchange, routingKey, contentType string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, publishCall{exchange, routingKey, contentType, body})

	return p.err
}

type mockOutboxRepo struct {
	mu       sync.Mutex
	pending  []outboxmodel.Message
	deleted  []int64
	retried  map[int64]int
	lastErrs map[int64]string
}

func newMockOutboxRepo(pending ...outboxmodel.Message) *mockOutboxRepo {
	return &mockOutboxRepo{
		pending:  pending,
		retried:  map[int64]int{},
		lastErrs: map[int64]string{},
	}
}

func (r *mockOutboxRepo) Insert(_ context.Context, msg outboxmodel.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, msg)

	return nil
}

func (r *mockOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outboxmodel.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]outboxmodel.Message(nil), r.pending...), nil
}

func (r *mockOutboxRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)

	return nil
}

func (r *mockOutboxRepo) UpdateRetry(
	_ context.Context,
	id int64,
	retryCount int,
	lastError string,
	_ time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retried[id] = retryCount
	r.lastErrs[id] = lastError

	return nil
}

func TestProcessMessages_PublishesToConfiguredExchange(t *testing.T) {
	repo := newMockOutboxRepo(outboxmodel.Message{
		ID:           41,
		QueueName:    "orders",
		ExchangeName: "orders.events",
		RoutingKey:   outboxmodel.RoutingKeyOrderPaid,
		Payload:      []byte(`{"order_id":"ORD-1"}`),
		ContentType:  "application/json",
	})
	pub := &mockPublisher{}

	worker := NewWorker(repo, pub)
	worker.processMessages(context.Background())

	if len(pub.calls) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(pub.calls))
	}

	call := pub.calls[0]
	if call.exchange != "orders.events" {
		t.Errorf("expected exchange 'orders.events', got %q", call.exchange)
	}
	if call.routingKey != outboxmodel.RoutingKeyOrderPaid {
		t.Errorf("expected routing key %q, got %q", outboxmodel.RoutingKeyOrderPaid, call.routingKey)
	}
	if call.contentType != "application/json" {
		t.Errorf("expected content type 'application/json', got %q", call.contentType)
	}

	if len(repo.deleted) != 1 || repo.deleted[0] != 41 {
		t.Errorf("expected message 41 deleted after publish, got %v", repo.deleted)
	}
}

func TestProcessMessages_PublishFailureSchedulesRetry(t *testing.T) {
	repo := newMockOutboxRepo(outboxmodel.Message{
		ID:           7,
		ExchangeName: "orders.events",
		RoutingKey:   outboxmodel.RoutingKeyOrderCreated,
		Payload:      []byte(`{}`),
		ContentType:  "application/json",
		RetryCount:   2,
	})
	pub := &mockPublisher{err: errors.New("broker unavailable")}

	worker := NewWorker(repo, pub)
	worker.processMessages(context.Background())

	if len(repo.deleted) != 0 {
		t.Errorf("expected no deletions on publish failure, got %v", repo.deleted)
	}
	if got := repo.retried[7]; got != 3 {
		t.Errorf("expected retry count 3, got %d", got)
	}
	if got := repo.lastErrs[7]; got != "broker unavailable" {
		t.Errorf("expected last error recorded, got %q", got)
	}
}
