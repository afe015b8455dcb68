package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EmergencyActive    = "active"
	EmergencyFulfilled = "fulfilled"
	EmergencyCancelled = "cancelled"
	EmergencyBlocked   = "blocked"
)

const (
	UrgencyHigh      = "high"
	UrgencyCritical  = "critical"
	UrgencyEmergency = "emergency"
)

const (
	DonorResponsePending  = "pending"
	DonorResponseAccepted = "accepted"
	DonorResponseDeclined = "declined"
)

// EligibleDonor is one recipient of an emergency broadcast, captured as a
// snapshot at broadcast time. Later donor profile changes do not alter it.
type EligibleDonor struct {
	Donor      primitive.ObjectID `bson:"donor" json:"donor"`
	BloodGroup BloodGroup         `bson:"bloodGroup" json:"bloodGroup"`
	Universal  bool               `bson:"isUniversal" json:"isUniversal"`
	Notified   bool               `bson:"notified" json:"notified"`
	NotifiedAt *time.Time         `bson:"notifiedAt,omitempty" json:"notifiedAt,omitempty"`
	Response   string             `bson:"response" json:"response"`
	ResponseAt *time.Time         `bson:"responseAt,omitempty" json:"responseAt,omitempty"`
}

// EmergencyRequest is an organisation's urgent call for a blood group,
// broadcast once to the eligible donors matched at creation time.
type EmergencyRequest struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Organisation  primitive.ObjectID `bson:"organisation" json:"organisation"`
	BloodGroup    BloodGroup         `bson:"bloodGroup" json:"bloodGroup"`
	QuantityML    int64              `bson:"quantity" json:"quantity"`
	Urgency       string             `bson:"urgency" json:"urgency"`
	Reason        string             `bson:"reason" json:"reason"`
	Location      string             `bson:"location" json:"location"`
	City          string             `bson:"city" json:"city"`
	ContactPerson string             `bson:"contactPerson" json:"contactPerson"`
	ContactPhone  string             `bson:"contactPhone" json:"contactPhone"`
	Status        string             `bson:"status" json:"status"`
	AdminNotes    string             `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`

	CancelledBy     *primitive.ObjectID `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelledAt     *time.Time          `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	FulfilledAt     *time.Time          `bson:"fulfilledAt,omitempty" json:"fulfilledAt,omitempty"`
	FulfilmentNotes string              `bson:"fulfilmentNotes,omitempty" json:"fulfilmentNotes,omitempty"`
	BroadcastSent   bool                `bson:"broadcastSent" json:"broadcastSent"`
	BroadcastSentAt *time.Time          `bson:"broadcastSentAt,omitempty" json:"broadcastSentAt,omitempty"`
	EligibleDonors  []EligibleDonor     `bson:"eligibleDonors" json:"eligibleDonors"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
