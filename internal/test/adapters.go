package test

import (
	"context"
	"sync"

	"github.com/polkiloo/schoolpay/internal/domain/model"
	"github.com/polkiloo/schoolpay/internal/storage/redis"
)

// GatewayStub fakes the payment gateway client.
type GatewayStub struct {
	CreateFn func(context.Context, model.IntentRequest) (*model.PaymentIntent, error)
	FetchFn  func(context.Context, string) (*model.PaymentIntent, error)
	ParseFn  func([]byte, string) (*model.GatewayEvent, error)

	Requests []model.IntentRequest
}

// CreateIntent records the request and returns an intent derived from the order id.
func (s *GatewayStub) CreateIntent(ctx context.Context, req model.IntentRequest) (*model.PaymentIntent, error) {
	s.Requests = append(s.Requests, req)
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return &model.PaymentIntent{
		Ref:          "pi_" + req.OrderID,
		ClientSecret: "pi_" + req.OrderID + "_secret",
		Status:       model.IntentStatusRequiresAction,
		AmountMinor:  req.AmountMinor,
		OrderID:      req.OrderID,
	}, nil
}

// FetchIntent returns a processing intent unless overridden.
func (s *GatewayStub) FetchIntent(ctx context.Context, ref string) (*model.PaymentIntent, error) {
	if s.FetchFn != nil {
		return s.FetchFn(ctx, ref)
	}
	return &model.PaymentIntent{Ref: ref, Status: model.IntentStatusProcessing}, nil
}

// ParseEvent delegates to override or returns an empty event.
func (s *GatewayStub) ParseEvent(payload []byte, signature string) (*model.GatewayEvent, error) {
	if s.ParseFn != nil {
		return s.ParseFn(payload, signature)
	}
	return &model.GatewayEvent{ID: "evt_1", Type: "ping", Payload: payload}, nil
}

// PublisherStub collects published events.
type PublisherStub struct {
	Err    error
	Events []model.PaymentEvent
	Closed bool
	mu     sync.Mutex
}

// Publish stores the event and returns configured error.
func (s *PublisherStub) Publish(ctx context.Context, event model.PaymentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
	return s.Err
}

// Close marks the publisher as closed.
func (s *PublisherStub) Close() error {
	s.Closed = true
	return nil
}

// Published returns a copy of stored events.
func (s *PublisherStub) Published() []model.PaymentEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.PaymentEvent(nil), s.Events...)
}

// IdempotencyStoreStub keeps cached responses in memory.
type IdempotencyStoreStub struct {
	Responses map[string]redis.CachedResponse
	Held      map[string]bool
	Err       error
	mu        sync.Mutex
}

// NewIdempotencyStoreStub constructs stub with initialized maps.
func NewIdempotencyStoreStub() *IdempotencyStoreStub {
	return &IdempotencyStoreStub{
		Responses: make(map[string]redis.CachedResponse),
		Held:      make(map[string]bool),
	}
}

// Get returns cached response or nil.
func (s *IdempotencyStoreStub) Get(ctx context.Context, key string) (*redis.CachedResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if resp, ok := s.Responses[key]; ok {
		return &resp, nil
	}
	return nil, nil
}

// Save stores response under key.
func (s *IdempotencyStoreStub) Save(ctx context.Context, key string, resp redis.CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Responses[key] = resp
	return nil
}

// Reserve marks key as held unless it already is.
func (s *IdempotencyStoreStub) Reserve(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Held[key] {
		return false, nil
	}
	s.Held[key] = true
	return true, nil
}

// Release drops the hold on key.
func (s *IdempotencyStoreStub) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Held, key)
	return nil
}
