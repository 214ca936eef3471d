package enums

import "fmt"

// PickupStatus maps to the pickup_status_enum enum in Postgres.
type PickupStatus string

const (
	PickupStatusRequested PickupStatus = "REQUESTED"
	PickupStatusConfirmed PickupStatus = "CONFIRMED"
	PickupStatusRejected  PickupStatus = "REJECTED"
	PickupStatusCancelled PickupStatus = "CANCELLED"
	PickupStatusCompleted PickupStatus = "COMPLETED"
)

var validPickupStatuses = []PickupStatus{
	PickupStatusRequested,
	PickupStatusConfirmed,
	PickupStatusRejected,
	PickupStatusCancelled,
	PickupStatusCompleted,
}

// IsValid reports whether the value matches the canonical pickup status enum.
func (s PickupStatus) IsValid() bool {
	for _, candidate := range validPickupStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePickupStatus converts raw input into PickupStatus.
func ParsePickupStatus(value string) (PickupStatus, error) {
	for _, candidate := range validPickupStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pickup status %q", value)
}
