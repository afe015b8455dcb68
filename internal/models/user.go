package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin        = "admin"
	RoleDonor        = "donor"
	RoleOrganisation = "organisation"
	RoleHospital     = "hospital"
)

const (
	UserActive  = "active"
	UserBlocked = "blocked"
)

// User is polymorphic over the four roles. Donor profile fields are only set
// for donors; minStockByGroup and connectedHospitals only for organisations.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Role             string             `bson:"role" json:"role"`
	Name             string             `bson:"name,omitempty" json:"name,omitempty"`
	OrganisationName string             `bson:"organisationName,omitempty" json:"organisationName,omitempty"`
	HospitalName     string             `bson:"hospitalName,omitempty" json:"hospitalName,omitempty"`
	Email            string             `bson:"email" json:"email"`
	EmailVerified    bool               `bson:"emailVerified" json:"emailVerified"`
	EmailVerifiedAt  *time.Time         `bson:"emailVerifiedAt,omitempty" json:"emailVerifiedAt,omitempty"`
	Password         string             `bson:"password" json:"-"`
	Website          string             `bson:"website,omitempty" json:"website,omitempty"`
	Address          string             `bson:"address" json:"address"`
	City             string             `bson:"city" json:"city"`
	Phone            string             `bson:"phone" json:"phone"`

	// Donor profile
	Age        int        `bson:"age,omitempty" json:"age,omitempty"`
	Gender     string     `bson:"gender,omitempty" json:"gender,omitempty"`
	Weight     float64    `bson:"weight,omitempty" json:"weight,omitempty"`
	BloodGroup BloodGroup `bson:"bloodGroup,omitempty" json:"bloodGroup,omitempty"`

	// Organisation profile. MinStockByGroup is a sparse override of the
	// default thresholds, keyed by blood group.
	MinStockByGroup    map[string]int64     `bson:"minStockByGroup,omitempty" json:"minStockByGroup,omitempty"`
	ConnectedHospitals []primitive.ObjectID `bson:"connectedHospitals,omitempty" json:"connectedHospitals,omitempty"`

	Status    string              `bson:"status" json:"status"`
	BlockedAt *time.Time          `bson:"blockedAt,omitempty" json:"blockedAt,omitempty"`
	BlockedBy *primitive.ObjectID `bson:"blockedBy,omitempty" json:"blockedBy,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DisplayName returns whichever name field the role uses.
func (u *User) DisplayName() string {
	switch u.Role {
	case RoleOrganisation:
		return u.OrganisationName
	case RoleHospital:
		return u.HospitalName
	}
	return u.Name
}
