package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifelink-api-server/internal/requestflow"
)

// HospitalRequest is a hospital asking an organisation for blood. Approval by
// the owning organisation posts the OUT ledger entry; the hospital marks the
// request completed once the units arrive.
type HospitalRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code         string             `bson:"code" json:"code"`
	Organisation primitive.ObjectID `bson:"organisation" json:"organisation"`
	Hospital     primitive.ObjectID `bson:"hospital" json:"hospital"`
	BloodGroup   BloodGroup         `bson:"bloodGroup" json:"bloodGroup"`
	QuantityML   int64              `bson:"quantity" json:"quantity"`
	Status       requestflow.Status `bson:"status" json:"status"`
	Reason       string             `bson:"reason,omitempty" json:"reason,omitempty"`

	ApprovedAt      *time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	ApprovedBy      *primitive.ObjectID `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	RejectedAt      *time.Time          `bson:"rejectedAt,omitempty" json:"rejectedAt,omitempty"`
	RejectedBy      *primitive.ObjectID `bson:"rejectedBy,omitempty" json:"rejectedBy,omitempty"`
	RejectionReason string              `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	CompletedAt     *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt     *time.Time          `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelledBy     *primitive.ObjectID `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelledReason string              `bson:"cancelledReason,omitempty" json:"cancelledReason,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DonorRequest is a donor offering to donate to an organisation. Completion
// by the organisation posts the IN ledger entry for the collected quantity.
// A zero QuantityML means the standard 350 ml draw.
type DonorRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code         string             `bson:"code" json:"code"`
	Donor        primitive.ObjectID `bson:"donor" json:"donor"`
	Organisation primitive.ObjectID `bson:"organisation" json:"organisation"`
	BloodGroup   BloodGroup         `bson:"bloodGroup" json:"bloodGroup"`
	QuantityML   int64              `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Status       requestflow.Status `bson:"status" json:"status"`
	Reason       string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`

	// Appointment set at approval time.
	AppointmentDate *time.Time `bson:"appointmentDate,omitempty" json:"appointmentDate,omitempty"`
	AppointmentTime string     `bson:"appointmentTime,omitempty" json:"appointmentTime,omitempty"`
	Location        string     `bson:"location,omitempty" json:"location,omitempty"`

	ResponseDate    *time.Time          `bson:"responseDate,omitempty" json:"responseDate,omitempty"`
	ResponseNotes   string              `bson:"responseNotes,omitempty" json:"responseNotes,omitempty"`
	CompletedDate   *time.Time          `bson:"completedDate,omitempty" json:"completedDate,omitempty"`
	CancelledDate   *time.Time          `bson:"cancelledDate,omitempty" json:"cancelledDate,omitempty"`
	CancelledBy     *primitive.ObjectID `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelledReason string              `bson:"cancelledReason,omitempty" json:"cancelledReason,omitempty"`

	// The IN ledger entry created at completion.
	DonationRecord *primitive.ObjectID `bson:"donationRecord,omitempty" json:"donationRecord,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
