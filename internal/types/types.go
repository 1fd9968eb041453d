// Package types provides domain models shared across Reachwell components.
//
// Zero-dependency design: types.go, rules.go and errors.go avoid third-party
// imports so boundary packages can depend on them without pulling in the
// database or logging stacks. ID utilities in ids.go import uuid but are
// isolated for selective inclusion.
package types

import "time"

// CampaignStatus is the dispatch state machine's persisted state.
type CampaignStatus string

const (
	CampaignQueued     CampaignStatus = "queued"
	CampaignInProgress CampaignStatus = "in_progress"
	CampaignCompleted  CampaignStatus = "completed"
	CampaignFailed     CampaignStatus = "failed"
)

// Terminal reports whether no further transition is defined from s.
// Ticks observing a terminal status must stop scheduling themselves.
func (s CampaignStatus) Terminal() bool {
	return s == CampaignCompleted || s == CampaignFailed
}

// Segment is a named, persisted audience definition.
// The rule tree is immutable once stored; AudienceSize is a point-in-time
// snapshot, not re-validated against live data until recomputed.
type Segment struct {
	ID           SegmentID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	RulesID      RuleSetID `db:"rules_id" json:"rules_id"`
	AudienceSize int       `db:"audience_size" json:"audience_size"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Campaign is one execution of simulated message dispatch against a
// segment's resolved audience. Counters are owned exclusively by the
// dispatcher while the campaign is in progress.
type Campaign struct {
	ID           CampaignID     `db:"id" json:"id"`
	SegmentID    SegmentID      `db:"segment_id" json:"segment_id"`
	Name         string         `db:"name" json:"name"`
	Message      string         `db:"message" json:"message"`
	TotalUsers   int            `db:"total_users" json:"total_users"`
	SentCount    int            `db:"sent_count" json:"sent_count"`
	SuccessCount int            `db:"success_count" json:"success_count"`
	FailureCount int            `db:"failure_count" json:"failure_count"`
	Status       CampaignStatus `db:"status" json:"status"`
	Error        string         `db:"error" json:"error,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// Customer is one row of the per-customer aggregate view the compiler's
// predicates are evaluated against. Rollup columns are computed in SQL via
// GROUP BY joins across orders and interactions.
type Customer struct {
	ID               CustomerID `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Email            string     `db:"email" json:"email"`
	Age              int        `db:"age" json:"age"`
	Location         string     `db:"location" json:"location"`
	RegistrationDate time.Time  `db:"registration_date" json:"registration_date"`
	TotalSpend       float64    `db:"total_spend" json:"total_spend"`
	TotalOrders      int        `db:"total_orders" json:"total_orders"`
	Visits           int        `db:"visits" json:"visits"`
	LastPurchase     *time.Time `db:"last_purchase" json:"last_purchase,omitempty"`
}

// Resource limits enforced at the library boundary.
const (
	// MaxRuleDepth prevents stack overflow during recursive tree walks.
	// 32 levels is far beyond any chained DSL submission the builder emits.
	MaxRuleDepth = 32

	// MaxPreviewCustomers caps the row-fetch half of an audience preview.
	// Counts are unbounded; row lists are for display only.
	MaxPreviewCustomers = 1000
)
