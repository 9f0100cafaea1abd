package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecop-onboarding/backend/internal/auth"
	"github.com/ecop-onboarding/backend/internal/events"
	"github.com/ecop-onboarding/backend/internal/models"
	"github.com/ecop-onboarding/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Sentinel errors the HTTP layer maps onto status codes.
var (
	ErrNotAuthorized = errors.New("admin access required")
	ErrNotFound      = errors.New("request not found")
)

// ValidationError marks user-correctable input problems (400-class).
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Store interfaces cover exactly what the service needs; the pgx repositories
// satisfy them.

type UserStore interface {
	UpsertByAddress(ctx context.Context, address string) (*models.User, error)
	GetByAddress(ctx context.Context, address string) (*models.User, error)
}

type VerificationStore interface {
	Create(ctx context.Context, v *models.VerificationRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.VerificationRequest, error)
	List(ctx context.Context, f repositories.VerificationFilter) ([]models.VerificationWithUser, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.VerificationRequest, error)
}

type CashStore interface {
	Create(ctx context.Context, c *models.CashRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CashRequest, error)
	List(ctx context.Context, f repositories.CashFilter) ([]models.CashWithUser, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.CashRequest, error)
}

type AuditStore interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

// RequestService implements the verification and cash request lifecycle:
// submission, listing, and admin status mutation.
type RequestService struct {
	users         UserStore
	verifications VerificationStore
	cash          CashStore
	audit         AuditStore
	notifier      Notifier
	publisher     events.Publisher
	gate          auth.Gate
	policy        models.TransitionPolicy
	defaultToken  string
	log           *zap.Logger
}

func NewRequestService(
	users UserStore,
	verifications VerificationStore,
	cash CashStore,
	audit AuditStore,
	notifier Notifier,
	publisher events.Publisher,
	gate auth.Gate,
	policy models.TransitionPolicy,
	defaultToken string,
	log *zap.Logger,
) *RequestService {
	return &RequestService{
		users:         users,
		verifications: verifications,
		cash:          cash,
		audit:         audit,
		notifier:      notifier,
		publisher:     publisher,
		gate:          gate,
		policy:        policy,
		defaultToken:  defaultToken,
		log:           log,
	}
}

// SubmitVerification creates a PENDING verification request, upserting the
// owning user first. The notification is awaited but never fails the call.
func (s *RequestService) SubmitVerification(ctx context.Context, address, kind string, fields map[string]any) (*models.VerificationRequest, error) {
	if address == "" || kind == "" || fields == nil {
		return nil, validationf("Missing required fields: address, kind, fields")
	}
	if !models.IsValidAddress(address) {
		return nil, validationf("Invalid Ethereum address")
	}
	if !models.IsValidKind(kind) {
		return nil, validationf("Invalid verification kind. Must be PERSON or INSTITUTION")
	}

	addr := models.NormalizeAddress(address)
	if _, err := s.users.UpsertByAddress(ctx, addr); err != nil {
		return nil, err
	}

	req := &models.VerificationRequest{
		ID:      uuid.New(),
		Address: addr,
		Kind:    kind,
		Fields:  fields,
		Status:  models.StatusPending,
	}
	if err := s.verifications.Create(ctx, req); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, formatVerificationSubmitted(req))
	s.recordSubmission(ctx, events.RequestTypeVerification, req.ID, addr, map[string]any{"kind": kind})

	return req, nil
}

// SubmitCash creates a PENDING cash request. Token defaults to the platform
// stablecoin symbol when not supplied.
func (s *RequestService) SubmitCash(ctx context.Context, address, direction, amountWei string, bankRef *string, token string) (*models.CashRequest, error) {
	if address == "" || direction == "" || amountWei == "" {
		return nil, validationf("Missing required fields: address, direction, amountWei")
	}
	if !models.IsValidAddress(address) {
		return nil, validationf("Invalid Ethereum address")
	}
	if !models.IsValidDirection(direction) {
		return nil, validationf("Invalid direction. Must be IN or OUT")
	}
	if token == "" {
		token = s.defaultToken
	}

	addr := models.NormalizeAddress(address)
	owner, err := s.users.UpsertByAddress(ctx, addr)
	if err != nil {
		return nil, err
	}

	req := &models.CashRequest{
		ID:        uuid.New(),
		Address:   addr,
		Direction: direction,
		Token:     token,
		AmountWei: amountWei,
		BankRef:   bankRef,
		Status:    models.StatusPending,
	}
	if err := s.cash.Create(ctx, req); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, formatCashSubmitted(req, owner))
	s.recordSubmission(ctx, events.RequestTypeCash, req.ID, addr, map[string]any{
		"direction": direction, "token": token, "amount_wei": amountWei,
	})

	return req, nil
}

// ListVerifications returns all requests annotated with user summaries for an
// authorized admin, or the caller's own unannotated requests otherwise.
func (s *RequestService) ListVerifications(ctx context.Context, caller auth.Caller) ([]models.VerificationWithUser, error) {
	filter := repositories.VerificationFilter{}
	if s.gate.Authorize(caller) {
		filter.WithUser = true
	} else {
		if caller.Address == "" {
			return nil, validationf("Address parameter required for non-admin requests")
		}
		addr := models.NormalizeAddress(caller.Address)
		filter.Address = &addr
	}
	return s.verifications.List(ctx, filter)
}

// ListCash is ListVerifications for cash requests, with optional direction
// and status filters. Unrecognized filter values are ignored.
func (s *RequestService) ListCash(ctx context.Context, caller auth.Caller, direction, status string) ([]models.CashWithUser, error) {
	filter := repositories.CashFilter{}
	if s.gate.Authorize(caller) {
		filter.WithUser = true
	} else {
		if caller.Address == "" {
			return nil, validationf("Address parameter required for non-admin requests")
		}
		addr := models.NormalizeAddress(caller.Address)
		filter.Address = &addr
	}
	if models.IsValidDirection(direction) {
		filter.Direction = &direction
	}
	if models.IsValidStatus(status) {
		filter.Status = &status
	}
	return s.cash.List(ctx, filter)
}

// UpdateVerificationStatus sets a new status on a verification request.
// Admin only; the configured transition policy decides which transitions are
// legal.
func (s *RequestService) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status string, caller auth.Caller) (*models.VerificationRequest, error) {
	if !s.gate.Authorize(caller) {
		return nil, ErrNotAuthorized
	}
	if !models.IsValidStatus(status) {
		return nil, validationf("Invalid status")
	}

	current, err := s.verifications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !s.policy.Allows(current.Status, status) {
		return nil, validationf("Invalid transition from %s to %s", current.Status, status)
	}

	updated, err := s.verifications.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.recordStatusChange(ctx, events.RequestTypeVerification, id, updated.Address, caller.Address, current.Status, status)
	return updated, nil
}

// UpdateCashStatus is UpdateVerificationStatus for cash requests.
func (s *RequestService) UpdateCashStatus(ctx context.Context, id uuid.UUID, status string, caller auth.Caller) (*models.CashRequest, error) {
	if !s.gate.Authorize(caller) {
		return nil, ErrNotAuthorized
	}
	if !models.IsValidStatus(status) {
		return nil, validationf("Invalid status")
	}

	current, err := s.cash.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !s.policy.Allows(current.Status, status) {
		return nil, validationf("Invalid transition from %s to %s", current.Status, status)
	}

	updated, err := s.cash.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.recordStatusChange(ctx, events.RequestTypeCash, id, updated.Address, caller.Address, current.Status, status)
	return updated, nil
}

func (s *RequestService) recordSubmission(ctx context.Context, requestType string, id uuid.UUID, address string, meta map[string]any) {
	if err := s.audit.Log(ctx, models.AuditLog{
		ActorAddress: &address,
		ActorType:    "user",
		Action:       requestType + "_submitted",
		EntityType:   requestType + "_request",
		EntityID:     &id,
		Meta:         meta,
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	if err := s.publisher.Publish(ctx, events.StreamRequests, events.Event{
		Type: events.EventRequestSubmitted,
		Payload: map[string]any{
			"request_type": requestType,
			"request_id":   id.String(),
			"address":      address,
		},
	}); err != nil {
		s.log.Warn("event publish failed", zap.Error(err))
	}
}

func (s *RequestService) recordStatusChange(ctx context.Context, requestType string, id uuid.UUID, address, actor, oldStatus, newStatus string) {
	if err := s.audit.Log(ctx, models.AuditLog{
		ActorAddress: &actor,
		ActorType:    "admin",
		Action:       fmt.Sprintf("%s_status_%s_to_%s", requestType, oldStatus, newStatus),
		EntityType:   requestType + "_request",
		EntityID:     &id,
		Meta:         map[string]any{"old_status": oldStatus, "new_status": newStatus},
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	if err := s.publisher.Publish(ctx, events.StreamRequests, events.Event{
		Type: events.EventRequestStatusChanged,
		Payload: map[string]any{
			"request_type": requestType,
			"request_id":   id.String(),
			"address":      address,
			"old_status":   oldStatus,
			"new_status":   newStatus,
		},
	}); err != nil {
		s.log.Warn("event publish failed", zap.Error(err))
	}
}
