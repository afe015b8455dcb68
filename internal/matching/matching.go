// Package matching selects donors for emergency and camp broadcasts by
// blood-group compatibility and city.
package matching

import (
	"strings"

	"lifelink-api-server/internal/models"
)

// Compatible reports whether a donor with donorGroup can answer a call for
// group. O- donors are universal and match every call.
func Compatible(donorGroup, group models.BloodGroup) bool {
	return donorGroup == group || donorGroup == models.GroupONeg
}

// InCity reports whether the donor's city or address contains the target
// city, case-insensitively.
func InCity(donor models.User, city string) bool {
	target := strings.ToLower(strings.TrimSpace(city))
	if target == "" {
		return false
	}
	return strings.Contains(strings.ToLower(donor.City), target) ||
		strings.Contains(strings.ToLower(donor.Address), target)
}

// eligible applies the checks shared by every broadcast: verified, active
// donor in the target city.
func eligible(donor models.User, city string) bool {
	return donor.Role == models.RoleDonor &&
		donor.EmailVerified &&
		donor.Status == models.UserActive &&
		InCity(donor, city)
}

// MatchesEmergency reports whether the donor should receive an emergency
// broadcast for (group, city).
func MatchesEmergency(donor models.User, group models.BloodGroup, city string) bool {
	return eligible(donor, city) && Compatible(donor.BloodGroup, group)
}

// MatchesCamp reports whether the donor should receive a camp announcement.
// Camps collect specific groups, so membership is exact, not compatibility.
func MatchesCamp(donor models.User, groups []models.BloodGroup, city string) bool {
	if !eligible(donor, city) {
		return false
	}
	for _, group := range groups {
		if donor.BloodGroup == group {
			return true
		}
	}
	return false
}

// FilterEmergency returns the donors matching an emergency broadcast.
func FilterEmergency(donors []models.User, group models.BloodGroup, city string) []models.User {
	matched := make([]models.User, 0)
	for _, donor := range donors {
		if MatchesEmergency(donor, group, city) {
			matched = append(matched, donor)
		}
	}
	return matched
}

// FilterCamp returns the donors matching a camp announcement.
func FilterCamp(donors []models.User, groups []models.BloodGroup, city string) []models.User {
	matched := make([]models.User, 0)
	for _, donor := range donors {
		if MatchesCamp(donor, groups, city) {
			matched = append(matched, donor)
		}
	}
	return matched
}
