package campaigns

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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
	campaigns    map[uuid.UUID]*models.Campaign
	memberships  map[string]*models.CampaignMembership
	companyLinks map[string]*models.CampaignCompany
	pointLinks   map[string]*models.CampaignCollectionPoint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		campaigns:    map[uuid.UUID]*models.Campaign{},
		memberships:  map[string]*models.CampaignMembership{},
		companyLinks: map[string]*models.CampaignCompany{},
		pointLinks:   map[string]*models.CampaignCollectionPoint{},
	}
}

func pairKey(a, b uuid.UUID) string {
	return a.String() + "|" + b.String()
}

func membershipKey(userID, campaignID uuid.UUID) string {
	return pairKey(userID, campaignID)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == uuid.Nil {
		campaign.ID = uuid.New()
	}
	f.campaigns[campaign.ID] = campaign
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	if c, ok := f.campaigns[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context) ([]models.Campaign, error) { return nil, nil }

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.campaigns, id)
	return nil
}

func (f *fakeRepository) CreateMembership(ctx context.Context, membership *models.CampaignMembership) error {
	f.memberships[membershipKey(membership.UserID, membership.CampaignID)] = membership
	return nil
}

func (f *fakeRepository) FindMembership(ctx context.Context, userID, campaignID uuid.UUID) (*models.CampaignMembership, error) {
	if m, ok := f.memberships[membershipKey(userID, campaignID)]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) DeleteMembership(ctx context.Context, userID, campaignID uuid.UUID) error {
	delete(f.memberships, membershipKey(userID, campaignID))
	return nil
}

func (f *fakeRepository) ListCampaignsByUser(ctx context.Context, userID uuid.UUID) ([]models.Campaign, error) {
	return nil, nil
}

func (f *fakeRepository) CountMembers(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	var count int64
	for _, m := range f.memberships {
		if m.CampaignID == campaignID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) CreateCompanyLink(ctx context.Context, link *models.CampaignCompany) error {
	f.companyLinks[pairKey(link.CampaignID, link.CompanyID)] = link
	return nil
}

func (f *fakeRepository) FindCompanyLink(ctx context.Context, campaignID, companyID uuid.UUID) (*models.CampaignCompany, error) {
	if l, ok := f.companyLinks[pairKey(campaignID, companyID)]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListPartnerCompanies(ctx context.Context, campaignID uuid.UUID) ([]models.Company, error) {
	return nil, nil
}

func (f *fakeRepository) CountPartnerCompanies(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	var count int64
	for _, l := range f.companyLinks {
		if l.CampaignID == campaignID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) CreateCollectionPointLink(ctx context.Context, link *models.CampaignCollectionPoint) error {
	f.pointLinks[pairKey(link.CampaignID, link.CollectionPointID)] = link
	return nil
}

func (f *fakeRepository) FindCollectionPointLink(ctx context.Context, campaignID, pointID uuid.UUID) (*models.CampaignCollectionPoint, error) {
	if l, ok := f.pointLinks[pairKey(campaignID, pointID)]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListCollectionPoints(ctx context.Context, campaignID uuid.UUID) ([]models.CollectionPoint, error) {
	return nil, nil
}

type fakeUserGetter struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUserGetter) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeCompanyGetter struct {
	companies map[uuid.UUID]*models.Company
}

func (f *fakeCompanyGetter) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	if c, ok := f.companies[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePointGetter struct {
	points map[uuid.UUID]*models.CollectionPoint
}

func (f *fakePointGetter) FindByID(ctx context.Context, id uuid.UUID) (*models.CollectionPoint, error) {
	if p, ok := f.points[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePointsService struct {
	entries []points.RecordInput
}

func (f *fakePointsService) Record(ctx context.Context, input points.RecordInput) (*models.PointTransaction, error) {
	return f.append(input)
}

func (f *fakePointsService) RecordTx(ctx context.Context, tx *gorm.DB, input points.RecordInput) (*models.PointTransaction, error) {
	return f.append(input)
}

func (f *fakePointsService) append(input points.RecordInput) (*models.PointTransaction, error) {
	f.entries = append(f.entries, input)
	return &models.PointTransaction{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Kind:        input.Kind,
		Points:      input.Points,
		ReferenceID: input.ReferenceID,
	}, nil
}

func (f *fakePointsService) BalanceOf(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	for _, e := range f.entries {
		if e.UserID == userID {
			total += int64(e.Points)
		}
	}
	return total, nil
}

func (f *fakePointsService) BalanceOfTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	return f.BalanceOf(ctx, userID)
}

func (f *fakePointsService) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, string, error) {
	return nil, "", nil
}

func (f *fakePointsService) LastAwardTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.PointTransactionKind, referenceID uuid.UUID) (*models.PointTransaction, error) {
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.UserID == userID && e.Kind == kind && e.Points > 0 && e.ReferenceID != nil && *e.ReferenceID == referenceID {
			return &models.PointTransaction{
				UserID:      e.UserID,
				Kind:        e.Kind,
				Points:      e.Points,
				ReferenceID: e.ReferenceID,
			}, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type testEnv struct {
	svc       Service
	repo      *fakeRepository
	users     *fakeUserGetter
	companies *fakeCompanyGetter
	points    *fakePointGetter
	ledger    *fakePointsService
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	repo := newFakeRepository()
	users := &fakeUserGetter{users: map[uuid.UUID]*models.User{}}
	companies := &fakeCompanyGetter{companies: map[uuid.UUID]*models.Company{}}
	collectionPoints := &fakePointGetter{points: map[uuid.UUID]*models.CollectionPoint{}}
	ledger := &fakePointsService{}
	svc, err := NewService(repo, users, companies, collectionPoints, ledger, fakeTxRunner{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return testEnv{svc: svc, repo: repo, users: users, companies: companies, points: collectionPoints, ledger: ledger}
}

func (e testEnv) seedUser() uuid.UUID {
	id := uuid.New()
	e.users.users[id] = &models.User{ID: id, Name: "Joana Silva", IsActive: true}
	return id
}

func (e testEnv) seedCompany() uuid.UUID {
	id := uuid.New()
	e.companies.companies[id] = &models.Company{ID: id, LegalName: "Recicla Verde LTDA"}
	return id
}

func (e testEnv) seedCollectionPoint() uuid.UUID {
	id := uuid.New()
	e.points.points[id] = &models.CollectionPoint{ID: id, Name: "Ecoponto Centro", IsActive: true}
	return id
}

func seedCampaign(repo *fakeRepository, pointsPerAdhesion int, active bool) *models.Campaign {
	campaign := &models.Campaign{
		ID:                uuid.New(),
		Title:             "Recicla Verão",
		StartsOn:          time.Now().AddDate(0, 0, -1),
		EndsOn:            time.Now().AddDate(0, 1, 0),
		IsActive:          active,
		PointsPerAdhesion: pointsPerAdhesion,
	}
	repo.campaigns[campaign.ID] = campaign
	return campaign
}

func TestService_JoinAwardsAdhesionPoints(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 40, true)
	userID := env.seedUser()

	membership, err := env.svc.Join(context.Background(), userID, campaign.ID)
	if err != nil {
		t.Fatalf("Join error: %v", err)
	}
	if membership.UserID != userID || membership.CampaignID != campaign.ID {
		t.Fatalf("unexpected membership: %+v", membership)
	}
	if len(env.ledger.entries) != 1 {
		t.Fatalf("expected one ledger entry, got %d", len(env.ledger.entries))
	}
	entry := env.ledger.entries[0]
	if entry.Kind != enums.PointTransactionKindEarnCampaign || entry.Points != 40 {
		t.Fatalf("unexpected award: %+v", entry)
	}
}

func TestService_JoinZeroPointCampaignSkipsLedger(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 0, true)

	if _, err := env.svc.Join(context.Background(), env.seedUser(), campaign.ID); err != nil {
		t.Fatalf("Join error: %v", err)
	}
	if len(env.ledger.entries) != 0 {
		t.Fatalf("expected no ledger entries, got %d", len(env.ledger.entries))
	}
}

func TestService_JoinInactiveCampaign(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 40, false)

	_, err := env.svc.Join(context.Background(), env.seedUser(), campaign.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeBusinessRule {
		t.Fatalf("expected business rule error, got %v", err)
	}
}

func TestService_JoinUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 40, true)

	_, err := env.svc.Join(context.Background(), uuid.New(), campaign.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
	if len(env.ledger.entries) != 0 {
		t.Fatalf("unknown user must not earn points, got %d entries", len(env.ledger.entries))
	}
	if len(env.repo.memberships) != 0 {
		t.Fatalf("unknown user must not create a membership, got %d", len(env.repo.memberships))
	}
}

func TestService_LeaveUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 40, true)

	err := env.svc.Leave(context.Background(), uuid.New(), campaign.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_JoinTwiceRejected(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 40, true)
	userID := env.seedUser()

	if _, err := env.svc.Join(context.Background(), userID, campaign.ID); err != nil {
		t.Fatalf("first Join error: %v", err)
	}
	_, err := env.svc.Join(context.Background(), userID, campaign.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeBusinessRule {
		t.Fatalf("expected business rule error on duplicate join, got %v", err)
	}
	if len(env.ledger.entries) != 1 {
		t.Fatalf("duplicate join must not award points again, got %d entries", len(env.ledger.entries))
	}
}

func TestService_LeaveReversesActualAward(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 40, true)
	userID := env.seedUser()

	if _, err := env.svc.Join(context.Background(), userID, campaign.ID); err != nil {
		t.Fatalf("Join error: %v", err)
	}

	// campaign points change between join and leave; reversal still uses
	// the originally awarded amount
	campaign.PointsPerAdhesion = 99

	if err := env.svc.Leave(context.Background(), userID, campaign.ID); err != nil {
		t.Fatalf("Leave error: %v", err)
	}
	if len(env.ledger.entries) != 2 {
		t.Fatalf("expected award and reversal, got %d entries", len(env.ledger.entries))
	}
	if env.ledger.entries[1].Points != -40 {
		t.Fatalf("expected reversal of -40, got %d", env.ledger.entries[1].Points)
	}

	balance, _ := env.ledger.BalanceOf(context.Background(), userID)
	if balance != 0 {
		t.Fatalf("join then leave should net to zero, got %d", balance)
	}
}

func TestService_LeaveFallsBackToCurrentPoints(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 25, true)
	userID := env.seedUser()

	// membership exists but no award entry (historic data)
	env.repo.memberships[membershipKey(userID, campaign.ID)] = &models.CampaignMembership{
		UserID:     userID,
		CampaignID: campaign.ID,
	}

	if err := env.svc.Leave(context.Background(), userID, campaign.ID); err != nil {
		t.Fatalf("Leave error: %v", err)
	}
	if len(env.ledger.entries) != 1 || env.ledger.entries[0].Points != -25 {
		t.Fatalf("expected fallback reversal of -25, got %+v", env.ledger.entries)
	}
}

func TestService_LeaveWithoutMembership(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 40, true)

	err := env.svc.Leave(context.Background(), env.seedUser(), campaign.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeBusinessRule {
		t.Fatalf("expected business rule error, got %v", err)
	}
}

func TestService_AttachCompany(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 0, true)
	companyID := env.seedCompany()

	if err := env.svc.AttachCompany(context.Background(), campaign.ID, companyID); err != nil {
		t.Fatalf("AttachCompany error: %v", err)
	}
	if _, ok := env.repo.companyLinks[pairKey(campaign.ID, companyID)]; !ok {
		t.Fatal("expected a partner link to be stored")
	}
}

func TestService_AttachCompanyUnknownCompany(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 0, true)

	err := env.svc.AttachCompany(context.Background(), campaign.ID, uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_AttachCompanyTwiceRejected(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 0, true)
	companyID := env.seedCompany()

	if err := env.svc.AttachCompany(context.Background(), campaign.ID, companyID); err != nil {
		t.Fatalf("first AttachCompany error: %v", err)
	}
	err := env.svc.AttachCompany(context.Background(), campaign.ID, companyID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeBusinessRule {
		t.Fatalf("expected business rule error on duplicate link, got %v", err)
	}
}

func TestService_AttachCollectionPoint(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 0, true)
	pointID := env.seedCollectionPoint()

	if err := env.svc.AttachCollectionPoint(context.Background(), campaign.ID, pointID); err != nil {
		t.Fatalf("AttachCollectionPoint error: %v", err)
	}

	err := env.svc.AttachCollectionPoint(context.Background(), campaign.ID, uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error for unknown point, got %v", err)
	}
}

func TestService_StatsCountsSupportersAndPartners(t *testing.T) {
	env := newTestEnv(t)
	campaign := seedCampaign(env.repo, 10, true)

	for i := 0; i < 3; i++ {
		if _, err := env.svc.Join(context.Background(), env.seedUser(), campaign.ID); err != nil {
			t.Fatalf("Join error: %v", err)
		}
	}
	if err := env.svc.AttachCompany(context.Background(), campaign.ID, env.seedCompany()); err != nil {
		t.Fatalf("AttachCompany error: %v", err)
	}

	stats, err := env.svc.Stats(context.Background(), campaign.ID)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.Supporters != 3 || stats.PartnerCompanies != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
