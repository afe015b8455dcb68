package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifelink-api-server/internal/models"
)

type stubLedger struct {
	in          map[models.BloodGroup]int64
	out         map[models.BloodGroup]int64
	lastUpdated map[models.BloodGroup]time.Time
}

func (s *stubLedger) SumQuantity(_ context.Context, _ primitive.ObjectID, group models.BloodGroup, direction models.Direction) (int64, error) {
	if direction == models.DirectionIn {
		return s.in[group], nil
	}
	return s.out[group], nil
}

func (s *stubLedger) LastUpdated(_ context.Context, _ primitive.ObjectID) (map[models.BloodGroup]time.Time, error) {
	return s.lastUpdated, nil
}

func TestAvailableIsInMinusOut(t *testing.T) {
	ledger := &stubLedger{
		in:  map[models.BloodGroup]int64{models.GroupAPos: 900},
		out: map[models.BloodGroup]int64{models.GroupAPos: 350},
	}
	agg := NewAggregator(ledger)

	available, err := agg.Available(context.Background(), primitive.NewObjectID(), models.GroupAPos)
	require.NoError(t, err)
	assert.Equal(t, int64(550), available)
}

func TestAvailableEmptyLedgerIsZero(t *testing.T) {
	agg := NewAggregator(&stubLedger{})

	available, err := agg.Available(context.Background(), primitive.NewObjectID(), models.GroupABNeg)
	require.NoError(t, err)
	assert.Equal(t, int64(0), available)
}

func TestDefaultThresholds(t *testing.T) {
	table := DefaultThresholds()
	assert.Equal(t, int64(22500), table.Min(models.GroupOPos))
	assert.Equal(t, int64(18000), table.Min(models.GroupAPos))
	assert.Equal(t, int64(15750), table.Min(models.GroupBPos))
	assert.Equal(t, int64(6750), table.Min(models.GroupABPos))
	assert.Equal(t, int64(4500), table.Min(models.GroupONeg))
	assert.Equal(t, int64(4500), table.Min(models.GroupANeg))
	assert.Equal(t, int64(4500), table.Min(models.GroupBNeg))
	assert.Equal(t, int64(2250), table.Min(models.GroupABNeg))
}

func TestResolveThresholdsFallsBackToDefaults(t *testing.T) {
	table := ResolveThresholds(map[string]int64{
		"A+":      10000,
		"bogus++": 99,
	})
	assert.Equal(t, int64(10000), table.Min(models.GroupAPos))
	// untouched groups keep the defaults
	assert.Equal(t, int64(22500), table.Min(models.GroupOPos))
	assert.Equal(t, int64(2250), table.Min(models.GroupABNeg))
}

func TestEmptyLedgerIsLowAgainstDefault(t *testing.T) {
	// no IN/OUT entries for AB- -> available 0, low against default 2250
	agg := NewAggregator(&stubLedger{})
	table := DefaultThresholds()

	available, err := agg.Available(context.Background(), primitive.NewObjectID(), models.GroupABNeg)
	require.NoError(t, err)
	assert.Equal(t, int64(0), available)
	assert.True(t, table.IsLow(models.GroupABNeg, available))
}

func TestSummaryLowOnly(t *testing.T) {
	now := time.Now()
	ledger := &stubLedger{
		in:          map[models.BloodGroup]int64{models.GroupOPos: 30000, models.GroupAPos: 100},
		out:         map[models.BloodGroup]int64{},
		lastUpdated: map[models.BloodGroup]time.Time{models.GroupOPos: now},
	}
	agg := NewAggregator(ledger)

	rows, err := agg.Summary(context.Background(), primitive.NewObjectID(), DefaultThresholds(), false)
	require.NoError(t, err)
	require.Len(t, rows, 8)
	for _, row := range rows {
		if row.BloodGroup == models.GroupOPos {
			assert.False(t, row.Low)
			require.NotNil(t, row.LastUpdated)
			assert.True(t, row.LastUpdated.Equal(now))
		} else {
			assert.True(t, row.Low)
		}
	}

	lowRows, err := agg.Summary(context.Background(), primitive.NewObjectID(), DefaultThresholds(), true)
	require.NoError(t, err)
	assert.Len(t, lowRows, 7)
	for _, row := range lowRows {
		assert.NotEqual(t, models.GroupOPos, row.BloodGroup)
	}
}
