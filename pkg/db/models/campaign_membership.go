package models

import (
	"time"

	"github.com/google/uuid"
)

// CampaignMembership records a user's adhesion to a campaign.
// One membership per (user, campaign) pair.
type CampaignMembership struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_campaign_memberships_user_campaign"`
	CampaignID uuid.UUID `gorm:"column:campaign_id;type:uuid;not null;uniqueIndex:ux_campaign_memberships_user_campaign"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	JoinedAt   time.Time `gorm:"column:joined_at;autoCreateTime"`
}
