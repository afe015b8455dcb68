package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DonorEligibility is the donor's attestation captured with a walk-in donation.
type DonorEligibility struct {
	Over18Under65              bool `bson:"over18Under65" json:"over18Under65"`
	WeightOver50               bool `bson:"weightOver50" json:"weightOver50"`
	NotDonatedIn3Months        bool `bson:"notDonatedIn3Months" json:"notDonatedIn3Months"`
	NoMedicationOrMajorIllness bool `bson:"noMedicationOrMajorIllness" json:"noMedicationOrMajorIllness"`
	NoFeverColdInfection       bool `bson:"noFeverColdInfection" json:"noFeverColdInfection"`
	Confirmation               bool `bson:"confirmation" json:"confirmation"`
}

// DonorDetails is a snapshot of the donor taken at donation time.
type DonorDetails struct {
	FullName    string           `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Age         int              `bson:"age,omitempty" json:"age,omitempty"`
	Gender      string           `bson:"gender,omitempty" json:"gender,omitempty"`
	BloodGroup  BloodGroup       `bson:"bloodGroup,omitempty" json:"bloodGroup,omitempty"`
	Contact     string           `bson:"contact,omitempty" json:"contact,omitempty"`
	Address     string           `bson:"address,omitempty" json:"address,omitempty"`
	City        string           `bson:"city,omitempty" json:"city,omitempty"`
	Eligibility DonorEligibility `bson:"eligibility" json:"eligibility"`
}

// LedgerEntry is one movement in the blood stock ledger. Entries are
// append-only: never updated, never deleted. Available stock per
// (organisation, blood group) is the sum of IN minus the sum of OUT.
type LedgerEntry struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Direction    Direction           `bson:"inventoryType" json:"inventoryType"`
	BloodGroup   BloodGroup          `bson:"bloodGroup" json:"bloodGroup"`
	QuantityML   int64               `bson:"quantity" json:"quantity"`
	Organisation primitive.ObjectID  `bson:"organisation" json:"organisation"`
	Donor        *primitive.ObjectID `bson:"donor,omitempty" json:"donor,omitempty"`
	Hospital     *primitive.ObjectID `bson:"hospital,omitempty" json:"hospital,omitempty"`
	DonorDetails *DonorDetails       `bson:"donorDetails,omitempty" json:"donorDetails,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
}
