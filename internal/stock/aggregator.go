// Package stock computes available blood stock from the append-only ledger
// and applies per-organisation minimum thresholds.
package stock

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifelink-api-server/internal/models"
)

// Summer is the slice of the ledger store the aggregator needs.
type Summer interface {
	// SumQuantity returns the total quantity over all entries for the
	// (organisation, blood group, direction) triple. No entries means 0.
	SumQuantity(ctx context.Context, orgID primitive.ObjectID, group models.BloodGroup, direction models.Direction) (int64, error)
	// LastUpdated returns the newest entry time per blood group for the
	// organisation. Groups without entries are absent.
	LastUpdated(ctx context.Context, orgID primitive.ObjectID) (map[models.BloodGroup]time.Time, error)
}

// Aggregator derives stock availability. It never mutates the ledger.
type Aggregator struct {
	ledger Summer
}

func NewAggregator(ledger Summer) *Aggregator {
	return &Aggregator{ledger: ledger}
}

// Available returns IN minus OUT for the (organisation, blood group) pair.
// An empty ledger yields 0, never an error.
func (a *Aggregator) Available(ctx context.Context, orgID primitive.ObjectID, group models.BloodGroup) (int64, error) {
	totalIn, err := a.ledger.SumQuantity(ctx, orgID, group, models.DirectionIn)
	if err != nil {
		return 0, err
	}
	totalOut, err := a.ledger.SumQuantity(ctx, orgID, group, models.DirectionOut)
	if err != nil {
		return 0, err
	}
	return totalIn - totalOut, nil
}

// GroupAvailability maps every blood group to its available quantity.
func (a *Aggregator) GroupAvailability(ctx context.Context, orgID primitive.ObjectID) (map[models.BloodGroup]int64, error) {
	availability := make(map[models.BloodGroup]int64, len(models.AllBloodGroups))
	for _, group := range models.AllBloodGroups {
		available, err := a.Available(ctx, orgID, group)
		if err != nil {
			return nil, err
		}
		availability[group] = available
	}
	return availability, nil
}

// SummaryRow is one line of an organisation's stock dashboard.
type SummaryRow struct {
	BloodGroup  models.BloodGroup `json:"bloodGroup"`
	AvailableML int64             `json:"available"`
	MinimumML   int64             `json:"min"`
	Low         bool              `json:"low"`
	LastUpdated *time.Time        `json:"lastUpdated"`
}

// Summary returns one row per blood group with availability measured against
// the organisation's effective thresholds. When lowOnly is set, rows at or
// above their minimum are dropped.
func (a *Aggregator) Summary(ctx context.Context, orgID primitive.ObjectID, thresholds ThresholdTable, lowOnly bool) ([]SummaryRow, error) {
	availability, err := a.GroupAvailability(ctx, orgID)
	if err != nil {
		return nil, err
	}
	lastUpdated, err := a.ledger.LastUpdated(ctx, orgID)
	if err != nil {
		return nil, err
	}

	rows := make([]SummaryRow, 0, len(models.AllBloodGroups))
	for _, group := range models.AllBloodGroups {
		available := availability[group]
		row := SummaryRow{
			BloodGroup:  group,
			AvailableML: available,
			MinimumML:   thresholds.Min(group),
			Low:         thresholds.IsLow(group, available),
		}
		if ts, ok := lastUpdated[group]; ok {
			t := ts
			row.LastUpdated = &t
		}
		if lowOnly && !row.Low {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
