package enums

import "fmt"

// PointTransactionKind maps to the point_transaction_kind_enum enum in Postgres.
type PointTransactionKind string

const (
	PointTransactionKindEarnCode     PointTransactionKind = "EARN_CODE"
	PointTransactionKindSpendVoucher PointTransactionKind = "SPEND_VOUCHER"
	PointTransactionKindEarnCampaign PointTransactionKind = "EARN_CAMPAIGN"
	PointTransactionKindEarnPickup   PointTransactionKind = "EARN_PICKUP"
)

var validPointTransactionKinds = []PointTransactionKind{
	PointTransactionKindEarnCode,
	PointTransactionKindSpendVoucher,
	PointTransactionKindEarnCampaign,
	PointTransactionKindEarnPickup,
}

// IsValid reports whether the value matches the canonical transaction kind enum.
func (k PointTransactionKind) IsValid() bool {
	for _, candidate := range validPointTransactionKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePointTransactionKind converts raw input into PointTransactionKind.
func ParsePointTransactionKind(value string) (PointTransactionKind, error) {
	for _, candidate := range validPointTransactionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid point transaction kind %q", value)
}
