// Package eligibility validates donor-side constraints before a donation may
// post to the ledger. Evaluation is pure; posting happens elsewhere.
package eligibility

import (
	"errors"

	"lifelink-api-server/internal/models"
)

const (
	MinAge = 18
	MaxAge = 65

	// Donation volume is derived from donor weight, never client-supplied.
	weightCutoffKg  = 55
	StandardDrawML  = 350
	IncreasedDrawML = 450
)

var (
	ErrNotDonor      = errors.New("only donors can donate")
	ErrAgeOutOfRange = errors.New("age out of range")
	ErrNotConfirmed  = errors.New("eligibility confirmation is required")
)

// DonationQuantity maps donor weight to the permitted draw volume in ml.
func DonationQuantity(weightKg float64) int64 {
	if weightKg >= weightCutoffKg {
		return IncreasedDrawML
	}
	return StandardDrawML
}

// Evaluate applies the donation gate in order: role, age presence and range,
// attestation confirmation. On success it returns the derived quantity, which
// overrides anything the client submitted.
func Evaluate(donor *models.User, confirmed bool) (int64, error) {
	if donor == nil || donor.Role != models.RoleDonor {
		return 0, ErrNotDonor
	}
	if donor.Age < MinAge || donor.Age > MaxAge {
		return 0, ErrAgeOutOfRange
	}
	if !confirmed {
		return 0, ErrNotConfirmed
	}
	return DonationQuantity(donor.Weight), nil
}
