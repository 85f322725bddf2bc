package test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/schoolpay/internal/domain/errors"
	"github.com/polkiloo/schoolpay/internal/domain/model"
	"github.com/polkiloo/schoolpay/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, email, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Email: email, PasswordHash: passwordHash, CreatedAt: time.Unix(0, 0).UTC()}
	s.Next++
	s.Users[email] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OrderRepositoryStub keeps created orders in memory and lets tests override calls.
type OrderRepositoryStub struct {
	CreatePendingFn func(context.Context, *model.Order, decimal.Decimal, repository.IntentIssuer) (*model.OrderStatus, error)
	GetByIDFn       func(context.Context, string) (*model.Order, error)
	ClaimPendingFn  func(context.Context, time.Duration, int) ([]model.PendingPayment, error)

	Orders  []model.Order
	Pending []model.PendingPayment
	Claims  []time.Duration
}

// CreatePending calls the issuer and stores the order only when it succeeded,
// mirroring the transactional repository.
func (s *OrderRepositoryStub) CreatePending(ctx context.Context, order *model.Order, amount decimal.Decimal, issue repository.IntentIssuer) (*model.OrderStatus, error) {
	if s.CreatePendingFn != nil {
		return s.CreatePendingFn(ctx, order, amount, issue)
	}
	ref, err := issue(ctx, order)
	if err != nil {
		return nil, err
	}
	order.PaymentIntentRef = &ref
	order.StatusRefs = []int64{int64(len(s.Orders) + 1)}
	s.Orders = append(s.Orders, *order)
	return &model.OrderStatus{
		ID:          int64(len(s.Orders)),
		CollectID:   order.ID,
		OrderAmount: amount,
		Status:      model.PaymentStatusPending,
	}, nil
}

// GetByID matches stored orders by internal or custom id.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	for _, o := range s.Orders {
		if o.ID == id || o.CustomOrderID == id {
			order := o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ClaimPending returns configured pending payments up to limit.
func (s *OrderRepositoryStub) ClaimPending(ctx context.Context, staleAfter time.Duration, limit int) ([]model.PendingPayment, error) {
	s.Claims = append(s.Claims, staleAfter)
	if s.ClaimPendingFn != nil {
		return s.ClaimPendingFn(ctx, staleAfter, limit)
	}
	if limit < len(s.Pending) {
		return s.Pending[:limit], nil
	}
	return s.Pending, nil
}

// OrderStatusRepositoryStub holds the latest status per order.
type OrderStatusRepositoryStub struct {
	LatestForFn func(context.Context, string) (*model.OrderStatus, error)
	SettleFn    func(context.Context, model.Settlement) (*model.Transaction, error)

	Latest      map[string]*model.OrderStatus
	Settlements []model.Settlement
	mu          sync.Mutex
}

// LatestFor returns the stored status of the order.
func (s *OrderStatusRepositoryStub) LatestFor(ctx context.Context, collectID string) (*model.OrderStatus, error) {
	if s.LatestForFn != nil {
		return s.LatestForFn(ctx, collectID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.Latest[collectID]; ok {
		copied := *status
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// Settle records the settlement and applies it to the stored status. Terminal
// statuses only accept the same status again.
func (s *OrderStatusRepositoryStub) Settle(ctx context.Context, settlement model.Settlement) (*model.Transaction, error) {
	s.mu.Lock()
	s.Settlements = append(s.Settlements, settlement)
	s.mu.Unlock()
	if s.SettleFn != nil {
		return s.SettleFn(ctx, settlement)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.Latest[settlement.OrderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	terminal := status.Status == model.PaymentStatusSuccess || status.Status == model.PaymentStatusCancelled
	if terminal && status.Status != settlement.Status {
		return nil, domainErrors.ErrNotFound
	}
	status.Status = settlement.Status
	if settlement.AmountReceivedMinor > 0 {
		status.TransactionAmount = decimal.NewNullDecimal(model.FromMinorUnits(settlement.AmountReceivedMinor))
	}
	if settlement.Status == model.PaymentStatusSuccess && status.PaymentTime == nil {
		paid := time.Unix(1700000000, 0).UTC()
		status.PaymentTime = &paid
	}
	tx := model.FlattenTransaction(model.Order{ID: status.CollectID, GatewayName: model.GatewayStripe}, *status)
	return &tx, nil
}

// TransactionRepositoryStub returns configured report data.
type TransactionRepositoryStub struct {
	ListFn       func(context.Context, model.TransactionQuery) ([]model.Transaction, int64, error)
	SummaryFn    func(context.Context, model.TransactionFilter) (*model.TransactionSummary, error)
	MonthlyFn    func(context.Context, model.TransactionFilter) ([]model.MonthlyStat, error)
	TopSchoolsFn func(context.Context, model.TransactionFilter, int) ([]model.SchoolStat, error)

	Items   []model.Transaction
	Queries []model.TransactionQuery
}

// List records the query and returns the configured items.
func (s *TransactionRepositoryStub) List(ctx context.Context, query model.TransactionQuery) ([]model.Transaction, int64, error) {
	s.Queries = append(s.Queries, query)
	if s.ListFn != nil {
		return s.ListFn(ctx, query)
	}
	return s.Items, int64(len(s.Items)), nil
}

// Summary returns the configured summary or an empty one.
func (s *TransactionRepositoryStub) Summary(ctx context.Context, filter model.TransactionFilter) (*model.TransactionSummary, error) {
	if s.SummaryFn != nil {
		return s.SummaryFn(ctx, filter)
	}
	return &model.TransactionSummary{}, nil
}

// Monthly returns the configured monthly breakdown.
func (s *TransactionRepositoryStub) Monthly(ctx context.Context, filter model.TransactionFilter) ([]model.MonthlyStat, error) {
	if s.MonthlyFn != nil {
		return s.MonthlyFn(ctx, filter)
	}
	return nil, nil
}

// TopSchools returns the configured per-school totals.
func (s *TransactionRepositoryStub) TopSchools(ctx context.Context, filter model.TransactionFilter, limit int) ([]model.SchoolStat, error) {
	if s.TopSchoolsFn != nil {
		return s.TopSchoolsFn(ctx, filter, limit)
	}
	return nil, nil
}

// WebhookEventRepositoryStub keeps outcomes per event id.
type WebhookEventRepositoryStub struct {
	BeginErr  error
	FinishErr error

	Outcomes map[string]model.WebhookOutcome
	Attempts map[string]int
}

// NewWebhookEventRepositoryStub constructs stub with initialized maps.
func NewWebhookEventRepositoryStub() *WebhookEventRepositoryStub {
	return &WebhookEventRepositoryStub{
		Outcomes: make(map[string]model.WebhookOutcome),
		Attempts: make(map[string]int),
	}
}

// Begin reports false for events already applied or ignored.
func (s *WebhookEventRepositoryStub) Begin(ctx context.Context, event model.GatewayEvent) (bool, error) {
	if s.BeginErr != nil {
		return false, s.BeginErr
	}
	s.Attempts[event.ID]++
	switch s.Outcomes[event.ID] {
	case model.WebhookApplied, model.WebhookIgnored:
		return false, nil
	}
	s.Outcomes[event.ID] = model.WebhookReceived
	return true, nil
}

// Finish stores the outcome of the event.
func (s *WebhookEventRepositoryStub) Finish(ctx context.Context, eventID string, outcome model.WebhookOutcome) error {
	if s.FinishErr != nil {
		return s.FinishErr
	}
	s.Outcomes[eventID] = outcome
	return nil
}

var (
	_ repository.UserRepository         = (*UserRepositoryStub)(nil)
	_ repository.OrderRepository        = (*OrderRepositoryStub)(nil)
	_ repository.OrderStatusRepository  = (*OrderStatusRepositoryStub)(nil)
	_ repository.TransactionRepository  = (*TransactionRepositoryStub)(nil)
	_ repository.WebhookEventRepository = (*WebhookEventRepositoryStub)(nil)
)
