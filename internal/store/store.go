// Package store persists segments, rule trees, campaigns and the customer
// tables behind named queries.
//
// Thin data-access layer: no business rules live here beyond the status
// guards baked into the campaign UPDATE statements. The dispatcher relies
// on those guards for terminal-state immutability, so they are part of this
// package's contract, not an optimization.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reachwell/reachwell/internal/core/db"
	"github.com/reachwell/reachwell/internal/types"
)

// Store wraps the named-query layer with typed accessors.
type Store struct {
	q *db.Queries
}

// New creates a Store over loaded queries.
func New(q *db.Queries) *Store {
	return &Store{q: q}
}

// CreateRules persists a rule tree as JSON and returns its id.
func (s *Store) CreateRules(ctx context.Context, tree *types.RuleNode) (types.RuleSetID, error) {
	raw, err := json.Marshal(tree)
	if err != nil {
		return "", fmt.Errorf("failed to encode rule tree: %w", err)
	}

	id := types.NewRuleSetID()
	if _, err := s.q.Exec(ctx, "create-rules", string(id), string(raw), time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to insert rule tree: %w", err)
	}
	return id, nil
}

// GetRules loads a stored rule tree. Returns ErrRulesNotFound when the id
// resolves to no row.
func (s *Store) GetRules(ctx context.Context, id types.RuleSetID) (*types.RuleNode, error) {
	var raw string
	if err := s.q.Get(ctx, "get-rules", &raw, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrRulesNotFound
		}
		return nil, fmt.Errorf("failed to load rule tree: %w", err)
	}

	var node types.RuleNode
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		return nil, fmt.Errorf("failed to decode rule tree: %w", err)
	}
	return &node, nil
}

// CreateSegment persists a segment referencing an already-stored rule tree.
func (s *Store) CreateSegment(ctx context.Context, name string, rulesID types.RuleSetID, audienceSize int) (types.Segment, error) {
	seg := types.Segment{
		ID:           types.NewSegmentID(),
		Name:         name,
		RulesID:      rulesID,
		AudienceSize: audienceSize,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.q.Exec(ctx, "create-segment",
		string(seg.ID), seg.Name, string(seg.RulesID), seg.AudienceSize, seg.CreatedAt)
	if err != nil {
		return types.Segment{}, fmt.Errorf("failed to insert segment: %w", err)
	}
	return seg, nil
}

// GetSegment loads a segment by id. Returns ErrSegmentNotFound when the id
// resolves to no row.
func (s *Store) GetSegment(ctx context.Context, id types.SegmentID) (types.Segment, error) {
	var seg types.Segment
	if err := s.q.Get(ctx, "get-segment", &seg, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Segment{}, types.ErrSegmentNotFound
		}
		return types.Segment{}, fmt.Errorf("failed to load segment: %w", err)
	}
	return seg, nil
}

// ListSegments returns all segments, newest first.
func (s *Store) ListSegments(ctx context.Context) ([]types.Segment, error) {
	var segs []types.Segment
	if err := s.q.Select(ctx, "list-segments", &segs); err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}
	return segs, nil
}

// UpdateAudienceSize records a recomputed audience snapshot.
func (s *Store) UpdateAudienceSize(ctx context.Context, id types.SegmentID, size int) error {
	if _, err := s.q.Exec(ctx, "update-segment-audience", size, string(id)); err != nil {
		return fmt.Errorf("failed to update audience size: %w", err)
	}
	return nil
}

// CreateCampaign persists a new campaign in the queued state.
func (s *Store) CreateCampaign(ctx context.Context, segmentID types.SegmentID, name, message string) (types.Campaign, error) {
	c := types.Campaign{
		ID:        types.NewCampaignID(),
		SegmentID: segmentID,
		Name:      name,
		Message:   message,
		Status:    types.CampaignQueued,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.q.Exec(ctx, "create-campaign",
		string(c.ID), string(c.SegmentID), c.Name, c.Message, c.CreatedAt)
	if err != nil {
		return types.Campaign{}, fmt.Errorf("failed to insert campaign: %w", err)
	}
	return c, nil
}

// GetCampaign loads a campaign by id. Returns ErrCampaignNotFound when the
// id resolves to no row.
func (s *Store) GetCampaign(ctx context.Context, id types.CampaignID) (types.Campaign, error) {
	var c types.Campaign
	if err := s.q.Get(ctx, "get-campaign", &c, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Campaign{}, types.ErrCampaignNotFound
		}
		return types.Campaign{}, fmt.Errorf("failed to load campaign: %w", err)
	}
	return c, nil
}

// SetStatus transitions a campaign's status, recording an error message for
// failures. The statement's guard skips terminal rows, so calling this on a
// completed or failed campaign is an idempotent no-op.
func (s *Store) SetStatus(ctx context.Context, id types.CampaignID, status types.CampaignStatus, errMsg string) error {
	if _, err := s.q.Exec(ctx, "set-campaign-status", string(status), errMsg, string(id)); err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}
	return nil
}

// BeginDispatch moves a queued campaign to in_progress with its resolved
// audience size. Returns false when the campaign was not in the queued
// state (already launched, or externally finished).
func (s *Store) BeginDispatch(ctx context.Context, id types.CampaignID, totalUsers int) (bool, error) {
	res, err := s.q.Exec(ctx, "begin-campaign", totalUsers, string(id))
	if err != nil {
		return false, fmt.Errorf("failed to begin campaign dispatch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ApplyBatch atomically adds one tick's tallies to the campaign counters.
// The in_progress guard means a cancelled campaign absorbs no late deltas.
func (s *Store) ApplyBatch(ctx context.Context, id types.CampaignID, sent, success, failure int) error {
	if _, err := s.q.Exec(ctx, "apply-campaign-batch", sent, success, failure, string(id)); err != nil {
		return fmt.Errorf("failed to apply campaign batch: %w", err)
	}
	return nil
}

// CreateCustomer inserts one customer row. Used by seeding and tests.
func (s *Store) CreateCustomer(ctx context.Context, c types.Customer) error {
	_, err := s.q.Exec(ctx, "create-customer",
		string(c.ID), c.Name, c.Email, c.Age, c.Location, c.RegistrationDate)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

// CreateOrder inserts one order row.
func (s *Store) CreateOrder(ctx context.Context, customerID types.CustomerID, amount float64, orderedAt time.Time) error {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := s.q.Exec(ctx, "create-order", id, string(customerID), amount, orderedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// CreateInteraction inserts one interaction row.
func (s *Store) CreateInteraction(ctx context.Context, customerID types.CustomerID, kind string, occurredAt time.Time) error {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := s.q.Exec(ctx, "create-interaction", id, string(customerID), kind, occurredAt)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

// CountCustomers returns the total customer population.
func (s *Store) CountCustomers(ctx context.Context) (int, error) {
	var n int
	if err := s.q.Get(ctx, "count-customers", &n); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return n, nil
}
