package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ecop-onboarding/backend/internal/auth"
	"github.com/ecop-onboarding/backend/internal/events"
	"github.com/ecop-onboarding/backend/internal/models"
	"github.com/ecop-onboarding/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const adminAddr = "0x00000000000000000000000000000000000AD314"

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) UpsertByAddress(_ context.Context, address string) (*models.User, error) {
	if u, ok := f.users[address]; ok {
		return u, nil
	}
	u := &models.User{Address: address}
	f.users[address] = u
	return u, nil
}

func (f *fakeUserStore) GetByAddress(_ context.Context, address string) (*models.User, error) {
	if u, ok := f.users[address]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeVerificationStore struct {
	byID map[uuid.UUID]*models.VerificationRequest
}

func newFakeVerificationStore() *fakeVerificationStore {
	return &fakeVerificationStore{byID: map[uuid.UUID]*models.VerificationRequest{}}
}

func (f *fakeVerificationStore) Create(_ context.Context, v *models.VerificationRequest) error {
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVerificationStore) GetByID(_ context.Context, id uuid.UUID) (*models.VerificationRequest, error) {
	if v, ok := f.byID[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeVerificationStore) List(_ context.Context, filter repositories.VerificationFilter) ([]models.VerificationWithUser, error) {
	out := []models.VerificationWithUser{}
	for _, v := range f.byID {
		if filter.Address != nil && v.Address != *filter.Address {
			continue
		}
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		row := models.VerificationWithUser{VerificationRequest: *v}
		if filter.WithUser {
			row.User = &models.UserSummary{}
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeVerificationStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*models.VerificationRequest, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	v.Status = status
	cp := *v
	return &cp, nil
}

type fakeCashStore struct {
	byID map[uuid.UUID]*models.CashRequest
}

func newFakeCashStore() *fakeCashStore {
	return &fakeCashStore{byID: map[uuid.UUID]*models.CashRequest{}}
}

func (f *fakeCashStore) Create(_ context.Context, c *models.CashRequest) error {
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCashStore) GetByID(_ context.Context, id uuid.UUID) (*models.CashRequest, error) {
	if c, ok := f.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCashStore) List(_ context.Context, filter repositories.CashFilter) ([]models.CashWithUser, error) {
	out := []models.CashWithUser{}
	for _, c := range f.byID {
		if filter.Address != nil && c.Address != *filter.Address {
			continue
		}
		if filter.Direction != nil && c.Direction != *filter.Direction {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		row := models.CashWithUser{CashRequest: *c}
		if filter.WithUser {
			row.User = &models.UserSummary{}
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeCashStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*models.CashRequest, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c.Status = status
	cp := *c
	return &cp, nil
}

type fakeAuditStore struct {
	entries []models.AuditLog
}

func (f *fakeAuditStore) Log(_ context.Context, entry models.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeNotifier struct {
	messages []string
	fail     bool
}

func (f *fakeNotifier) Notify(_ context.Context, text string) {
	if f.fail {
		return
	}
	f.messages = append(f.messages, text)
}

type fakePublisher struct {
	published []events.Event
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, _ string, e events.Event) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, e)
	return nil
}

type fixture struct {
	svc           *RequestService
	users         *fakeUserStore
	verifications *fakeVerificationStore
	cash          *fakeCashStore
	audit         *fakeAuditStore
	notifier      *fakeNotifier
	publisher     *fakePublisher
}

func newFixture(policy models.TransitionPolicy) *fixture {
	f := &fixture{
		users:         newFakeUserStore(),
		verifications: newFakeVerificationStore(),
		cash:          newFakeCashStore(),
		audit:         &fakeAuditStore{},
		notifier:      &fakeNotifier{},
		publisher:     &fakePublisher{},
	}
	f.svc = NewRequestService(
		f.users, f.verifications, f.cash, f.audit,
		f.notifier, f.publisher,
		auth.NewStaticAddressGate(adminAddr),
		policy, "ECOP", zap.NewNop(),
	)
	return f
}

func admin() auth.Caller { return auth.Caller{Address: adminAddr} }

func TestSubmitVerification(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	ctx := context.Background()

	req, err := f.svc.SubmitVerification(ctx, "0x7047ABc123dEf4567890aBCDef1234567890C564", models.KindPerson, map[string]any{"full_name": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != models.StatusPending {
		t.Errorf("expected PENDING, got %s", req.Status)
	}
	if req.Address != strings.ToLower("0x7047ABc123dEf4567890aBCDef1234567890C564") {
		t.Errorf("address not normalized: %s", req.Address)
	}
	if req.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if _, ok := f.users.users[req.Address]; !ok {
		t.Error("expected user upsert")
	}
	if len(f.notifier.messages) != 1 {
		t.Errorf("expected 1 notification, got %d", len(f.notifier.messages))
	}
	if len(f.audit.entries) != 1 {
		t.Errorf("expected 1 audit entry, got %d", len(f.audit.entries))
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0].Type != events.EventRequestSubmitted {
		t.Errorf("expected submitted event, got %+v", f.publisher.published)
	}
}

func TestSubmitVerificationValidation(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	ctx := context.Background()

	someFields := map[string]any{"full_name": "Ada"}
	tests := []struct {
		name    string
		address string
		kind    string
		fields  map[string]any
		wantMsg string
	}{
		{"bad address", "not-an-address", models.KindPerson, someFields, "Invalid Ethereum address"},
		{"empty address", "", models.KindPerson, someFields, "Missing required fields: address, kind, fields"},
		{"empty kind", "0x7047ABc123dEf4567890aBCDef1234567890C564", "", someFields, "Missing required fields: address, kind, fields"},
		{"nil fields", "0x7047ABc123dEf4567890aBCDef1234567890C564", models.KindPerson, nil, "Missing required fields: address, kind, fields"},
		{"bad kind", "0x7047ABc123dEf4567890aBCDef1234567890C564", "ROBOT", someFields, "Invalid verification kind. Must be PERSON or INSTITUTION"},
		{"lowercase kind", "0x7047ABc123dEf4567890aBCDef1234567890C564", "person", someFields, "Invalid verification kind. Must be PERSON or INSTITUTION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitVerification(ctx, tt.address, tt.kind, tt.fields)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Error() != tt.wantMsg {
				t.Errorf("expected %q, got %q", tt.wantMsg, ve.Error())
			}
		})
	}
	if len(f.verifications.byID) != 0 {
		t.Error("no request should be stored on validation failure")
	}
	if len(f.notifier.messages) != 0 {
		t.Error("no notification should fire on validation failure")
	}
}

func TestSubmitCashDefaultsToken(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	ctx := context.Background()

	req, err := f.svc.SubmitCash(ctx, "0x7047ABc123dEf4567890aBCDef1234567890C564", models.DirectionIn, "1000000", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Token != "ECOP" {
		t.Errorf("expected default token ECOP, got %s", req.Token)
	}

	req2, err := f.svc.SubmitCash(ctx, "0x7047ABc123dEf4567890aBCDef1234567890C564", models.DirectionOut, "5", nil, "ETH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req2.Token != "ETH" {
		t.Errorf("explicit token overridden: %s", req2.Token)
	}
}

func TestSubmitCashMissingPayload(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	ctx := context.Background()

	tests := []struct {
		name      string
		address   string
		direction string
		amountWei string
	}{
		{"empty amount", "0x7047ABc123dEf4567890aBCDef1234567890C564", models.DirectionIn, ""},
		{"empty direction", "0x7047ABc123dEf4567890aBCDef1234567890C564", "", "1000000"},
		{"empty address", "", models.DirectionIn, "1000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitCash(ctx, tt.address, tt.direction, tt.amountWei, nil, "")
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Error() != "Missing required fields: address, direction, amountWei" {
				t.Errorf("unexpected message: %q", ve.Error())
			}
		})
	}
	if len(f.cash.byID) != 0 {
		t.Error("no request should be stored on validation failure")
	}
	if len(f.notifier.messages) != 0 {
		t.Error("no notification should fire on validation failure")
	}
}

func TestSubmitCashInvalidDirection(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	_, err := f.svc.SubmitCash(context.Background(), "0x7047ABc123dEf4567890aBCDef1234567890C564", "SIDEWAYS", "1", nil, "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Error() != "Invalid direction. Must be IN or OUT" {
		t.Errorf("unexpected message: %q", ve.Error())
	}
}

func TestListVerificationsAdminSeesAll(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	ctx := context.Background()

	addrs := []string{
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
	}
	for _, a := range addrs {
		if _, err := f.svc.SubmitVerification(ctx, a, models.KindPerson, map[string]any{"full_name": "Ada"}); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := f.svc.ListVerifications(ctx, admin())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.User == nil {
			t.Error("admin listing should include user summaries")
		}
	}
}

func TestListVerificationsNonAdminScoped(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	ctx := context.Background()

	mine := "0x1111111111111111111111111111111111111111"
	other := "0x2222222222222222222222222222222222222222"
	for _, a := range []string{mine, other} {
		if _, err := f.svc.SubmitVerification(ctx, a, models.KindPerson, map[string]any{"full_name": "Ada"}); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := f.svc.ListVerifications(ctx, auth.Caller{Address: mine})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Address != mine {
		t.Fatalf("expected only own request, got %+v", rows)
	}
	if rows[0].User != nil {
		t.Error("non-admin listing should not include user summaries")
	}
}

func TestListVerificationsNonAdminRequiresAddress(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	_, err := f.svc.ListVerifications(context.Background(), auth.Caller{})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Error() != "Address parameter required for non-admin requests" {
		t.Errorf("unexpected message: %q", ve.Error())
	}
}

func TestListCashFilters(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	ctx := context.Background()
	addr := "0x1111111111111111111111111111111111111111"

	in, err := f.svc.SubmitCash(ctx, addr, models.DirectionIn, "100", nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.SubmitCash(ctx, addr, models.DirectionOut, "200", nil, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.UpdateCashStatus(ctx, in.ID, models.StatusApproved, admin()); err != nil {
		t.Fatal(err)
	}

	rows, err := f.svc.ListCash(ctx, admin(), models.DirectionIn, models.StatusApproved)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != in.ID {
		t.Fatalf("expected only the approved IN request, got %+v", rows)
	}

	// Garbage filter values are ignored rather than rejected.
	rows, err = f.svc.ListCash(ctx, admin(), "bogus", "bogus")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected unfiltered listing, got %d rows", len(rows))
	}
}

func TestUpdateVerificationStatus(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	ctx := context.Background()

	req, err := f.svc.SubmitVerification(ctx, "0x1111111111111111111111111111111111111111", models.KindPerson, map[string]any{"full_name": "Ada"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := f.svc.UpdateVerificationStatus(ctx, req.ID, models.StatusApproved, admin())
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != models.StatusApproved {
		t.Errorf("expected APPROVED, got %s", updated.Status)
	}

	last := f.publisher.published[len(f.publisher.published)-1]
	if last.Type != events.EventRequestStatusChanged {
		t.Errorf("expected status change event, got %s", last.Type)
	}
	if last.Payload["old_status"] != models.StatusPending || last.Payload["new_status"] != models.StatusApproved {
		t.Errorf("unexpected payload %+v", last.Payload)
	}
}

func TestUpdateStatusRejectsNonAdmin(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	ctx := context.Background()

	req, err := f.svc.SubmitVerification(ctx, "0x1111111111111111111111111111111111111111", models.KindPerson, map[string]any{"full_name": "Ada"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.UpdateVerificationStatus(ctx, req.ID, models.StatusApproved, auth.Caller{Address: req.Address})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	got, _ := f.verifications.GetByID(ctx, req.ID)
	if got.Status != models.StatusPending {
		t.Errorf("status should be untouched, got %s", got.Status)
	}
}

func TestUpdateStatusInvalidStatus(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	ctx := context.Background()

	req, err := f.svc.SubmitVerification(ctx, "0x1111111111111111111111111111111111111111", models.KindPerson, map[string]any{"full_name": "Ada"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.UpdateVerificationStatus(ctx, req.ID, "FROZEN", admin())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Error() != "Invalid status" {
		t.Errorf("unexpected message: %q", ve.Error())
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	_, err := f.svc.UpdateVerificationStatus(context.Background(), uuid.New(), models.StatusApproved, admin())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = f.svc.UpdateCashStatus(context.Background(), uuid.New(), models.StatusApproved, admin())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatusStrictPolicy(t *testing.T) {
	f := newFixture(models.PolicyStrict)
	ctx := context.Background()

	req, err := f.svc.SubmitVerification(ctx, "0x1111111111111111111111111111111111111111", models.KindPerson, map[string]any{"full_name": "Ada"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.UpdateVerificationStatus(ctx, req.ID, models.StatusApproved, admin()); err != nil {
		t.Fatal(err)
	}

	// APPROVED is terminal under the strict policy.
	_, err = f.svc.UpdateVerificationStatus(ctx, req.ID, models.StatusRejected, admin())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got, _ := f.verifications.GetByID(ctx, req.ID)
	if got.Status != models.StatusApproved {
		t.Errorf("terminal status should be untouched, got %s", got.Status)
	}
}

func TestUpdateStatusPermissiveReversal(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	ctx := context.Background()

	req, err := f.svc.SubmitVerification(ctx, "0x1111111111111111111111111111111111111111", models.KindPerson, map[string]any{"full_name": "Ada"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.UpdateVerificationStatus(ctx, req.ID, models.StatusApproved, admin()); err != nil {
		t.Fatal(err)
	}
	updated, err := f.svc.UpdateVerificationStatus(ctx, req.ID, models.StatusRejected, admin())
	if err != nil {
		t.Fatalf("permissive policy should allow reversal: %v", err)
	}
	if updated.Status != models.StatusRejected {
		t.Errorf("expected REJECTED, got %s", updated.Status)
	}
}

func TestSubmitSucceedsWhenNotifierFails(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	f.notifier.fail = true

	req, err := f.svc.SubmitVerification(context.Background(), "0x1111111111111111111111111111111111111111", models.KindPerson, map[string]any{"full_name": "Ada"})
	if err != nil {
		t.Fatalf("notifier failure must not fail submission: %v", err)
	}
	if req.Status != models.StatusPending {
		t.Errorf("expected PENDING, got %s", req.Status)
	}
	if len(f.notifier.messages) != 0 {
		t.Errorf("failing notifier should record nothing, got %d", len(f.notifier.messages))
	}
}

func TestSubmitSucceedsWhenPublishFails(t *testing.T) {
	f := newFixture(models.PolicyPermissive)
	f.publisher.err = errors.New("redis down")

	req, err := f.svc.SubmitVerification(context.Background(), "0x1111111111111111111111111111111111111111", models.KindPerson, map[string]any{"full_name": "Ada"})
	if err != nil {
		t.Fatalf("publish failure must not fail submission: %v", err)
	}
	if req.Status != models.StatusPending {
		t.Errorf("expected PENDING, got %s", req.Status)
	}
}
