package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CampPending   = "pending"
	CampApproved  = "approved"
	CampRejected  = "rejected"
	CampCompleted = "completed"
	CampCancelled = "cancelled"
)

// Camp is an organisation-run blood donation camp. Camps need admin approval
// before they are published to donors.
type Camp struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name"`
	Organisation   primitive.ObjectID  `bson:"organisation" json:"organisation"`
	Description    string              `bson:"description" json:"description"`
	Date           time.Time           `bson:"date" json:"date"`
	StartTime      string              `bson:"startTime" json:"startTime"`
	EndTime        string              `bson:"endTime" json:"endTime"`
	Location       string              `bson:"location" json:"location"`
	City           string              `bson:"city" json:"city"`
	BloodGroups    []BloodGroup        `bson:"bloodGroups" json:"bloodGroups"`
	ExpectedDonors int                 `bson:"expectedDonors" json:"expectedDonors"`
	Status         string              `bson:"status" json:"status"`
	AdminNotes     string              `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`
	ContactPerson  string              `bson:"contactPerson" json:"contactPerson"`
	ContactPhone   string              `bson:"contactPhone" json:"contactPhone"`
	ContactEmail   string              `bson:"contactEmail" json:"contactEmail"`
	Facilities     []string            `bson:"facilities,omitempty" json:"facilities,omitempty"`
	Requirements   []string            `bson:"requirements,omitempty" json:"requirements,omitempty"`
	IsPublished    bool                `bson:"isPublished" json:"isPublished"`
	PublishedAt    *time.Time          `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	PublishedBy    *primitive.ObjectID `bson:"publishedBy,omitempty" json:"publishedBy,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}
