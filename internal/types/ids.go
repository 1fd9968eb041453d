package types

import (
	"time"

	"github.com/google/uuid"
)

// SegmentID represents a UUIDv7 segment identifier.
// String alias enables type safety while maintaining JSON string
// serialization. UUIDv7 time-ordering clusters sequential IDs in B-tree
// indexes.
type SegmentID string

// CampaignID represents a UUIDv7 campaign identifier.
type CampaignID string

// RuleSetID represents a UUIDv7 identifier of a stored rule tree.
type RuleSetID string

// CustomerID represents a UUIDv7 customer identifier.
type CustomerID string

// NewSegmentID generates a UUIDv7 segment identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewSegmentID() SegmentID {
	return SegmentID(uuid.Must(uuid.NewV7()).String())
}

// NewCampaignID generates a UUIDv7 campaign identifier.
func NewCampaignID() CampaignID {
	return CampaignID(uuid.Must(uuid.NewV7()).String())
}

// NewRuleSetID generates a UUIDv7 rule set identifier.
func NewRuleSetID() RuleSetID {
	return RuleSetID(uuid.Must(uuid.NewV7()).String())
}

// NewCustomerID generates a UUIDv7 customer identifier.
func NewCustomerID() CustomerID {
	return CustomerID(uuid.Must(uuid.NewV7()).String())
}

// ParseSegmentID validates and converts a string to SegmentID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseSegmentID(s string) (SegmentID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return SegmentID(s), nil
}

// ParseCampaignID validates and converts a string to CampaignID.
func ParseCampaignID(s string) (CampaignID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return CampaignID(s), nil
}

// CampaignIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func CampaignIDTime(id CampaignID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
