package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
)

// View types shape the JSON payloads; the gorm models stay internal.

type userView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CPF       *string   `json:"cpf,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		CPF:       u.CPF,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func newUserViews(users []models.User) []userView {
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	return views
}

type profileView struct {
	userView
	Balance int64 `json:"balance"`
}

type companyView struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	LegalName string    `json:"legalName"`
	TradeName string    `json:"tradeName"`
	CNPJ      string    `json:"cnpj"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func newCompanyView(c *models.Company) companyView {
	return companyView{
		ID:        c.ID,
		UserID:    c.UserID,
		LegalName: c.LegalName,
		TradeName: c.TradeName,
		CNPJ:      c.CNPJ,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}

func newCompanyViews(companies []models.Company) []companyView {
	views := make([]companyView, 0, len(companies))
	for i := range companies {
		views = append(views, newCompanyView(&companies[i]))
	}
	return views
}

type addressView struct {
	ID         uuid.UUID `json:"id"`
	Street     string    `json:"street"`
	Number     string    `json:"number"`
	Complement *string   `json:"complement,omitempty"`
	District   string    `json:"district"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	ZipCode    string    `json:"zipCode"`
}

func newAddressView(a *models.Address) addressView {
	return addressView{
		ID:         a.ID,
		Street:     a.Street,
		Number:     a.Number,
		Complement: a.Complement,
		District:   a.District,
		City:       a.City,
		State:      a.State,
		ZipCode:    a.ZipCode,
	}
}

func newAddressViews(addresses []models.Address) []addressView {
	views := make([]addressView, 0, len(addresses))
	for i := range addresses {
		views = append(views, newAddressView(&addresses[i]))
	}
	return views
}

type wasteTypeView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

func newWasteTypeView(w *models.WasteType) wasteTypeView {
	return wasteTypeView{ID: w.ID, Name: w.Name, Description: w.Description}
}

func newWasteTypeViews(types []models.WasteType) []wasteTypeView {
	views := make([]wasteTypeView, 0, len(types))
	for i := range types {
		views = append(views, newWasteTypeView(&types[i]))
	}
	return views
}

type collectionPointView struct {
	ID           uuid.UUID `json:"id"`
	CompanyID    uuid.UUID `json:"companyId"`
	Name         string    `json:"name"`
	OpeningHours *string   `json:"openingHours,omitempty"`
	IsActive     bool      `json:"isActive"`
	AddressID    uuid.UUID `json:"addressId"`
}

func newCollectionPointView(p *models.CollectionPoint) collectionPointView {
	return collectionPointView{
		ID:           p.ID,
		CompanyID:    p.CompanyID,
		Name:         p.Name,
		OpeningHours: p.OpeningHours,
		IsActive:     p.IsActive,
		AddressID:    p.AddressID,
	}
}

func newCollectionPointViews(points []models.CollectionPoint) []collectionPointView {
	views := make([]collectionPointView, 0, len(points))
	for i := range points {
		views = append(views, newCollectionPointView(&points[i]))
	}
	return views
}

type campaignView struct {
	ID                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	Description       *string   `json:"description,omitempty"`
	StartsOn          string    `json:"startsOn"`
	EndsOn            string    `json:"endsOn"`
	IsActive          bool      `json:"isActive"`
	PointsPerAdhesion int       `json:"pointsPerAdhesion"`
}

func newCampaignView(c *models.Campaign) campaignView {
	return campaignView{
		ID:                c.ID,
		Title:             c.Title,
		Description:       c.Description,
		StartsOn:          c.StartsOn.Format("2006-01-02"),
		EndsOn:            c.EndsOn.Format("2006-01-02"),
		IsActive:          c.IsActive,
		PointsPerAdhesion: c.PointsPerAdhesion,
	}
}

func newCampaignViews(campaigns []models.Campaign) []campaignView {
	views := make([]campaignView, 0, len(campaigns))
	for i := range campaigns {
		views = append(views, newCampaignView(&campaigns[i]))
	}
	return views
}

type articleView struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Published   bool       `json:"published"`
	AuthorID    *uuid.UUID `json:"authorId,omitempty"`
	PublishedAt time.Time  `json:"publishedAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func newArticleView(a *models.Article) articleView {
	return articleView{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		Published:   a.Published,
		AuthorID:    a.AuthorID,
		PublishedAt: a.PublishedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func newArticleViews(articles []models.Article) []articleView {
	views := make([]articleView, 0, len(articles))
	for i := range articles {
		views = append(views, newArticleView(&articles[i]))
	}
	return views
}

type campaignDetailView struct {
	campaignView
	TotalSupporters       int64 `json:"totalSupporters"`
	TotalPartnerCompanies int64 `json:"totalPartnerCompanies"`
}

type voucherView struct {
	ID             uuid.UUID `json:"id"`
	PartnerName    string    `json:"partnerName"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	PointCost      int       `json:"pointCost"`
	ExpiresOn      *string   `json:"expiresOn,omitempty"`
	RemainingStock *int      `json:"remainingStock,omitempty"`
	ImageURL       *string   `json:"imageUrl,omitempty"`
}

func newVoucherView(v *models.Voucher) voucherView {
	view := voucherView{
		ID:             v.ID,
		PartnerName:    v.PartnerName,
		Title:          v.Title,
		Description:    v.Description,
		PointCost:      v.PointCost,
		RemainingStock: v.RemainingStock,
		ImageURL:       v.ImageURL,
	}
	if v.ExpiresOn != nil {
		formatted := v.ExpiresOn.Format("2006-01-02")
		view.ExpiresOn = &formatted
	}
	return view
}

func newVoucherViews(vouchers []models.Voucher) []voucherView {
	views := make([]voucherView, 0, len(vouchers))
	for i := range vouchers {
		views = append(views, newVoucherView(&vouchers[i]))
	}
	return views
}

type redemptionView struct {
	ID          uuid.UUID `json:"id"`
	VoucherID   uuid.UUID `json:"voucherId"`
	PointsSpent int       `json:"pointsSpent"`
	Code        string    `json:"code"`
	Used        bool      `json:"used"`
	RedeemedAt  time.Time `json:"redeemedAt"`
}

func newRedemptionView(r *models.VoucherRedemption) redemptionView {
	return redemptionView{
		ID:          r.ID,
		VoucherID:   r.VoucherID,
		PointsSpent: r.PointsSpent,
		Code:        r.Code,
		Used:        r.Used,
		RedeemedAt:  r.RedeemedAt,
	}
}

func newRedemptionViews(redemptions []models.VoucherRedemption) []redemptionView {
	views := make([]redemptionView, 0, len(redemptions))
	for i := range redemptions {
		views = append(views, newRedemptionView(&redemptions[i]))
	}
	return views
}

type dailyCodeView struct {
	ID                uuid.UUID `json:"id"`
	CollectionPointID uuid.UUID `json:"collectionPointId"`
	Code              string    `json:"code"`
	ValidOn           string    `json:"validOn"`
	PointsValue       int       `json:"pointsValue"`
}

func newDailyCodeView(c *models.DailyCode) dailyCodeView {
	return dailyCodeView{
		ID:                c.ID,
		CollectionPointID: c.CollectionPointID,
		Code:              c.Code,
		ValidOn:           c.ValidOn.Format("2006-01-02"),
		PointsValue:       c.PointsValue,
	}
}

type transactionView struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	Points      int        `json:"points"`
	Description *string    `json:"description,omitempty"`
	ReferenceID *uuid.UUID `json:"referenceId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func newTransactionViews(entries []models.PointTransaction) []transactionView {
	views := make([]transactionView, 0, len(entries))
	for _, e := range entries {
		views = append(views, transactionView{
			ID:          e.ID,
			Kind:        string(e.Kind),
			Points:      e.Points,
			Description: e.Description,
			ReferenceID: e.ReferenceID,
			CreatedAt:   e.CreatedAt,
		})
	}
	return views
}

type pickupItemView struct {
	ID          uuid.UUID       `json:"id"`
	WasteTypeID uuid.UUID       `json:"wasteTypeId"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        *string         `json:"unit,omitempty"`
}

type pickupView struct {
	ID                uuid.UUID        `json:"id"`
	UserID            uuid.UUID        `json:"userId"`
	CompanyID         uuid.UUID        `json:"companyId"`
	AddressID         uuid.UUID        `json:"addressId"`
	Status            string           `json:"status"`
	ScheduledFor      *time.Time       `json:"scheduledFor,omitempty"`
	EstimatedVolumeM3 *decimal.Decimal `json:"estimatedVolumeM3,omitempty"`
	EstimatedWeightKg *decimal.Decimal `json:"estimatedWeightKg,omitempty"`
	UserNotes         *string          `json:"userNotes,omitempty"`
	RejectionReason   *string          `json:"rejectionReason,omitempty"`
	Items             []pickupItemView `json:"items"`
	RequestedAt       time.Time        `json:"requestedAt"`
}

func newPickupView(p *models.PickupSchedule) pickupView {
	items := make([]pickupItemView, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, pickupItemView{
			ID:          item.ID,
			WasteTypeID: item.WasteTypeID,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
		})
	}
	return pickupView{
		ID:                p.ID,
		UserID:            p.UserID,
		CompanyID:         p.CompanyID,
		AddressID:         p.AddressID,
		Status:            string(p.Status),
		ScheduledFor:      p.ScheduledFor,
		EstimatedVolumeM3: p.EstimatedVolumeM3,
		EstimatedWeightKg: p.EstimatedWeightKg,
		UserNotes:         p.UserNotes,
		RejectionReason:   p.RejectionReason,
		Items:             items,
		RequestedAt:       p.RequestedAt,
	}
}

func newPickupViews(pickups []models.PickupSchedule) []pickupView {
	views := make([]pickupView, 0, len(pickups))
	for i := range pickups {
		views = append(views, newPickupView(&pickups[i]))
	}
	return views
}

type tokenPairView struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}
