package vouchers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/internal/mailer"
	"github.com/reciclaja/reciclaja-backend/internal/points"
	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
	"github.com/reciclaja/reciclaja-backend/pkg/pagination"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepository struct {
	vouchers    map[uuid.UUID]*models.Voucher
	redemptions map[string]*models.VoucherRedemption
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		vouchers:    map[uuid.UUID]*models.Voucher{},
		redemptions: map[string]*models.VoucherRedemption{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	if voucher.ID == uuid.Nil {
		voucher.ID = uuid.New()
	}
	f.vouchers[voucher.ID] = voucher
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	if v, ok := f.vouchers[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context) ([]models.Voucher, error) { return nil, nil }

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.vouchers, id)
	return nil
}

func (f *fakeRepository) DecrementStock(ctx context.Context, id uuid.UUID) (bool, error) {
	v, ok := f.vouchers[id]
	if !ok {
		return false, nil
	}
	if v.RemainingStock == nil {
		return true, nil
	}
	if *v.RemainingStock <= 0 {
		return false, nil
	}
	*v.RemainingStock--
	return true, nil
}

func (f *fakeRepository) CreateRedemption(ctx context.Context, redemption *models.VoucherRedemption) error {
	f.redemptions[redemption.Code] = redemption
	return nil
}

func (f *fakeRepository) FindRedemptionByCode(ctx context.Context, code string) (*models.VoucherRedemption, error) {
	if r, ok := f.redemptions[code]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]models.VoucherRedemption, error) {
	return nil, nil
}

type fakeUsers struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePointsService struct {
	balances map[uuid.UUID]int64
	entries  []points.RecordInput
}

func (f *fakePointsService) Record(ctx context.Context, input points.RecordInput) (*models.PointTransaction, error) {
	return f.RecordTx(ctx, nil, input)
}

func (f *fakePointsService) RecordTx(ctx context.Context, tx *gorm.DB, input points.RecordInput) (*models.PointTransaction, error) {
	f.entries = append(f.entries, input)
	f.balances[input.UserID] += int64(input.Points)
	return &models.PointTransaction{ID: uuid.New(), UserID: input.UserID, Points: input.Points, Kind: input.Kind}, nil
}

func (f *fakePointsService) BalanceOf(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f.balances[userID], nil
}

func (f *fakePointsService) BalanceOfTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	return f.balances[userID], nil
}

func (f *fakePointsService) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, string, error) {
	return nil, "", nil
}

func (f *fakePointsService) LastAwardTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.PointTransactionKind, referenceID uuid.UUID) (*models.PointTransaction, error) {
	return nil, gorm.ErrRecordNotFound
}

type testEnv struct {
	svc     Service
	repo    *fakeRepository
	users   *fakeUsers
	points  *fakePointsService
	userID  uuid.UUID
	voucher *models.Voucher
}

func setupRedeemTest(t *testing.T, balance int64, stock *int, expiresOn *time.Time) *testEnv {
	t.Helper()

	repo := newFakeRepository()
	userID := uuid.New()
	users := &fakeUsers{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Name: "Maria", Email: "maria@example.com", Role: enums.UserRoleIndividual},
	}}
	pts := &fakePointsService{balances: map[uuid.UUID]int64{userID: balance}}

	voucher := &models.Voucher{
		ID:             uuid.New(),
		PartnerName:    "EcoLoja",
		Title:          "Desconto 10%",
		PointCost:      100,
		RemainingStock: stock,
		ExpiresOn:      expiresOn,
	}
	repo.vouchers[voucher.ID] = voucher

	svc, err := NewService(repo, users, pts, fakeTxRunner{}, nil, nil, time.UTC)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	return &testEnv{svc: svc, repo: repo, users: users, points: pts, userID: userID, voucher: voucher}
}

func intPtr(v int) *int { return &v }

func TestService_RedeemSuccess(t *testing.T) {
	env := setupRedeemTest(t, 250, intPtr(5), nil)

	result, err := env.svc.Redeem(context.Background(), env.userID, env.voucher.ID)
	if err != nil {
		t.Fatalf("Redeem error: %v", err)
	}

	if !strings.HasPrefix(result.Code, "ECO-") {
		t.Fatalf("expected ECO- prefixed code, got %q", result.Code)
	}
	if len(result.Code) != len("ECO-")+12 {
		t.Fatalf("unexpected code length: %q", result.Code)
	}
	if result.RemainingBalance != 150 {
		t.Fatalf("expected remaining balance 150, got %d", result.RemainingBalance)
	}
	if *env.voucher.RemainingStock != 4 {
		t.Fatalf("expected stock decrement to 4, got %d", *env.voucher.RemainingStock)
	}
	if len(env.points.entries) != 1 {
		t.Fatalf("expected one ledger entry, got %d", len(env.points.entries))
	}
	entry := env.points.entries[0]
	if entry.Kind != enums.PointTransactionKindSpendVoucher || entry.Points != -100 {
		t.Fatalf("unexpected ledger entry: %+v", entry)
	}
	if entry.ReferenceID == nil || *entry.ReferenceID != result.Redemption.ID {
		t.Fatal("ledger entry should reference the redemption")
	}
}

func TestService_RedeemUnlimitedStock(t *testing.T) {
	env := setupRedeemTest(t, 250, nil, nil)

	if _, err := env.svc.Redeem(context.Background(), env.userID, env.voucher.ID); err != nil {
		t.Fatalf("Redeem error: %v", err)
	}
	if env.voucher.RemainingStock != nil {
		t.Fatal("unlimited stock must stay untracked")
	}
}

func TestService_RedeemInsufficientBalance(t *testing.T) {
	env := setupRedeemTest(t, 99, intPtr(5), nil)

	_, err := env.svc.Redeem(context.Background(), env.userID, env.voucher.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeBusinessRule {
		t.Fatalf("expected business rule error, got %v", err)
	}
	if *env.voucher.RemainingStock != 5 {
		t.Fatal("failed redemption must not touch stock")
	}
	if len(env.points.entries) != 0 {
		t.Fatal("failed redemption must not touch the ledger")
	}
}

func TestService_RedeemOutOfStock(t *testing.T) {
	env := setupRedeemTest(t, 250, intPtr(0), nil)

	_, err := env.svc.Redeem(context.Background(), env.userID, env.voucher.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeBusinessRule {
		t.Fatalf("expected out-of-stock error, got %v", err)
	}
}

func TestService_RedeemExpired(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1)
	env := setupRedeemTest(t, 250, intPtr(5), &yesterday)

	_, err := env.svc.Redeem(context.Background(), env.userID, env.voucher.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeBusinessRule {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestService_RedeemForbiddenForCompanies(t *testing.T) {
	env := setupRedeemTest(t, 250, intPtr(5), nil)
	env.users.users[env.userID].Role = enums.UserRoleCompany

	_, err := env.svc.Redeem(context.Background(), env.userID, env.voucher.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestService_RedeemUnknownUser(t *testing.T) {
	env := setupRedeemTest(t, 250, intPtr(5), nil)

	_, err := env.svc.Redeem(context.Background(), uuid.New(), env.voucher.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

type failingMailer struct{ sent int }

func (f *failingMailer) Send(ctx context.Context, msg mailer.Message) error {
	f.sent++
	return errors.New("smtp unavailable")
}

func TestService_RedeemSurvivesMailFailure(t *testing.T) {
	env := setupRedeemTest(t, 250, intPtr(5), nil)
	mail := &failingMailer{}
	svc, err := NewService(env.repo, env.users, env.points, fakeTxRunner{}, mail, nil, time.UTC)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	result, err := svc.Redeem(context.Background(), env.userID, env.voucher.ID)
	if err != nil {
		t.Fatalf("Redeem should not fail on mail errors: %v", err)
	}
	if result.Code == "" {
		t.Fatal("expected a redemption code")
	}
	if mail.sent != 1 {
		t.Fatalf("expected one send attempt, got %d", mail.sent)
	}
}

func TestService_RedeemIsNotIdempotent(t *testing.T) {
	env := setupRedeemTest(t, 500, intPtr(5), nil)

	first, err := env.svc.Redeem(context.Background(), env.userID, env.voucher.ID)
	if err != nil {
		t.Fatalf("first Redeem error: %v", err)
	}
	second, err := env.svc.Redeem(context.Background(), env.userID, env.voucher.ID)
	if err != nil {
		t.Fatalf("second Redeem error: %v", err)
	}

	if first.Code == second.Code {
		t.Fatal("each redemption must issue a distinct code")
	}
	if second.RemainingBalance != 300 {
		t.Fatalf("expected balance 300 after two redemptions, got %d", second.RemainingBalance)
	}
	if *env.voucher.RemainingStock != 3 {
		t.Fatalf("expected stock 3 after two redemptions, got %d", *env.voucher.RemainingStock)
	}
}
