package models

import (
	"time"

	"github.com/google/uuid"
)

// CampaignCompany links a partner company to a campaign.
type CampaignCompany struct {
	CampaignID uuid.UUID `gorm:"column:campaign_id;type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"column:company_id;type:uuid;primaryKey"`
	LinkedAt   time.Time `gorm:"column:linked_at;autoCreateTime"`
}

// TableName pins the join table name.
func (CampaignCompany) TableName() string {
	return "campaign_companies"
}
