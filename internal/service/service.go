// Package service holds the business logic between the HTTP handlers and the
// Mongo stores. Each service depends on narrow store interfaces so the rules
// can be tested against in-memory stubs.
package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/requestflow"
	"lifelink-api-server/internal/stock"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// LedgerFilter narrows ledger reads. Nil/zero fields are ignored.
type LedgerFilter struct {
	Organisation *primitive.ObjectID
	Donor        *primitive.ObjectID
	Hospital     *primitive.ObjectID
	BloodGroup   models.BloodGroup
	Direction    models.Direction
	Limit        int64
}

// DonorTotal aggregates one donor's IN entries for an organisation.
type DonorTotal struct {
	Donor        primitive.ObjectID  `json:"donorId"`
	TotalML      int64               `json:"totalQuantity"`
	Count        int64               `json:"totalDonationsCount"`
	LastDonation time.Time           `json:"lastDonationDate"`
	BloodGroups  []models.BloodGroup `json:"bloodGroups"`
}

// HospitalTotal aggregates the OUT entries issued to one hospital.
type HospitalTotal struct {
	Hospital       primitive.ObjectID `json:"hospitalId"`
	TotalML        int64              `json:"totalIssued"`
	LastIssue      time.Time          `json:"lastIssueDate"`
	LastBloodGroup models.BloodGroup  `json:"lastBloodGroup"`
}

// LedgerStore is the persistence contract for the append-only ledger.
type LedgerStore interface {
	stock.Summer
	Insert(ctx context.Context, entry *models.LedgerEntry) error
	List(ctx context.Context, filter LedgerFilter) ([]models.LedgerEntry, error)
	DonorTotals(ctx context.Context, orgID primitive.ObjectID) ([]DonorTotal, error)
	HospitalTotals(ctx context.Context, orgID primitive.ObjectID) ([]HospitalTotal, error)
}

// UserStore is the persistence contract for users of every role.
type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailAndRole(ctx context.Context, email, role string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	VerifiedDonors(ctx context.Context) ([]models.User, error)
	UpdateThresholds(ctx context.Context, orgID primitive.ObjectID, overrides map[string]int64) error
	ConnectHospital(ctx context.Context, orgID, hospitalID primitive.ObjectID) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status string, by *primitive.ObjectID, at *time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// HospitalRequestStore persists the hospital-initiated flow.
type HospitalRequestStore interface {
	Insert(ctx context.Context, req *models.HospitalRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.HospitalRequest, error)
	ListByHospital(ctx context.Context, hospitalID primitive.ObjectID, status requestflow.Status) ([]models.HospitalRequest, error)
	ListByOrganisation(ctx context.Context, orgID primitive.ObjectID, status requestflow.Status) ([]models.HospitalRequest, error)
	// UpdateStatus transitions only when the stored status still equals
	// from; the boolean reports whether the guard matched.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to requestflow.Status, set map[string]interface{}) (bool, error)
}

// DonorRequestStore persists the donor-initiated flow.
type DonorRequestStore interface {
	Insert(ctx context.Context, req *models.DonorRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.DonorRequest, error)
	ListByDonor(ctx context.Context, donorID primitive.ObjectID, status requestflow.Status) ([]models.DonorRequest, error)
	ListByOrganisation(ctx context.Context, orgID primitive.ObjectID, status requestflow.Status) ([]models.DonorRequest, error)
	// HasOpen reports whether the donor already has a pending or approved
	// request with the organisation.
	HasOpen(ctx context.Context, donorID, orgID primitive.ObjectID) (bool, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to requestflow.Status, set map[string]interface{}) (bool, error)
}

// EmergencyStore persists emergency broadcasts and their donor snapshots.
type EmergencyStore interface {
	Insert(ctx context.Context, req *models.EmergencyRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.EmergencyRequest, error)
	ListAll(ctx context.Context) ([]models.EmergencyRequest, error)
	ListByOrganisation(ctx context.Context, orgID primitive.ObjectID) ([]models.EmergencyRequest, error)
	ListActive(ctx context.Context) ([]models.EmergencyRequest, error)
	SetEligibleDonors(ctx context.Context, id primitive.ObjectID, donors []models.EligibleDonor) error
	MarkNotified(ctx context.Context, id, donorID primitive.ObjectID, at time.Time) error
	SetBroadcastSent(ctx context.Context, id primitive.ObjectID, at time.Time) error
	// RecordResponse updates the snapshot entry for the donor; false when
	// the donor is not part of the broadcast.
	RecordResponse(ctx context.Context, id, donorID primitive.ObjectID, response string, at time.Time) (bool, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string, set map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// CampStore persists donation camps.
type CampStore interface {
	Insert(ctx context.Context, camp *models.Camp) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Camp, error)
	ListByOrganisation(ctx context.Context, orgID primitive.ObjectID) ([]models.Camp, error)
	ListByStatus(ctx context.Context, status string) ([]models.Camp, error)
	ListAll(ctx context.Context) ([]models.Camp, error)
	// ListPublished returns approved upcoming camps, optionally narrowed by
	// city substring and blood group membership.
	ListPublished(ctx context.Context, city string, group models.BloodGroup) ([]models.Camp, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to string, set map[string]interface{}) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// TxRunner executes fn atomically against the store. The Mongo
// implementation runs a session transaction; stock-gated OUT writes depend on
// this to close the check-then-post race.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier is the outbound email boundary. Every method is best-effort from
// the caller's point of view: failures are logged and skipped, never fatal.
type Notifier interface {
	EmergencyBroadcast(donor, org models.User, req models.EmergencyRequest) error
	EmergencyFulfilled(donor, org models.User, req models.EmergencyRequest) error
	CampAnnouncement(donor models.User, camp models.Camp) error
	DonorRequestReceived(org, donor models.User, req models.DonorRequest) error
	DonorRequestDecided(donor, org models.User, req models.DonorRequest) error
}

// Alerter pushes realtime messages to a connected user, keyed by user id.
// Implemented by the websocket hub.
type Alerter interface {
	Send(userID string, message []byte) error
}
