package models

import (
	"time"

	"github.com/google/uuid"
)

// CampaignCollectionPoint links a drop-off point to a campaign.
type CampaignCollectionPoint struct {
	CampaignID        uuid.UUID `gorm:"column:campaign_id;type:uuid;primaryKey"`
	CollectionPointID uuid.UUID `gorm:"column:collection_point_id;type:uuid;primaryKey"`
	LinkedAt          time.Time `gorm:"column:linked_at;autoCreateTime"`
}

// TableName pins the join table name.
func (CampaignCollectionPoint) TableName() string {
	return "campaign_collection_points"
}
