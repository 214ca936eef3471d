package models

import "github.com/google/uuid"

// CollectionPointWasteType links a collection point to an accepted material.
type CollectionPointWasteType struct {
	CollectionPointID uuid.UUID `gorm:"column:collection_point_id;type:uuid;primaryKey"`
	WasteTypeID       uuid.UUID `gorm:"column:waste_type_id;type:uuid;primaryKey"`
}

// TableName pins the join table name.
func (CollectionPointWasteType) TableName() string {
	return "collection_point_waste_types"
}
