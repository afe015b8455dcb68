package stock

import (
	"lifelink-api-server/internal/models"
)

// ThresholdTable holds a minimum stock level in ml for every blood group,
// indexed by models.BloodGroup.Index.
type ThresholdTable [8]int64

// defaultThresholds are the network-wide minimums applied when an
// organisation has no override for a group.
var defaultThresholds = ThresholdTable{
	22500, // O+
	4500,  // O-
	6750,  // AB+
	2250,  // AB-
	18000, // A+
	4500,  // A-
	15750, // B+
	4500,  // B-
}

// DefaultThresholds returns a copy of the default table.
func DefaultThresholds() ThresholdTable {
	return defaultThresholds
}

// ResolveThresholds builds the effective table for an organisation: its
// sparse per-group overrides where present, the defaults everywhere else.
func ResolveThresholds(overrides map[string]int64) ThresholdTable {
	table := defaultThresholds
	for key, min := range overrides {
		group := models.BloodGroup(key)
		if idx := group.Index(); idx >= 0 {
			table[idx] = min
		}
	}
	return table
}

// Min returns the minimum for the group, or 0 for an invalid group.
func (t ThresholdTable) Min(group models.BloodGroup) int64 {
	idx := group.Index()
	if idx < 0 {
		return 0
	}
	return t[idx]
}

// IsLow reports whether available stock is below the configured minimum.
func (t ThresholdTable) IsLow(group models.BloodGroup, available int64) bool {
	return available < t.Min(group)
}
