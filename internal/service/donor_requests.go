package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"lifelink-api-server/internal/eligibility"
	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/requestflow"
)

// DonorRequestService runs the donor-initiated flow: a donor offers to
// donate, the organisation schedules an appointment, and completion posts the
// collected blood to the ledger.
type DonorRequestService struct {
	requests DonorRequestStore
	ledger   LedgerStore
	users    UserStore
	tx       TxRunner
	notifier Notifier
	log      *zap.SugaredLogger
}

func NewDonorRequestService(requests DonorRequestStore, ledger LedgerStore, users UserStore, tx TxRunner, notifier Notifier, log *zap.SugaredLogger) *DonorRequestService {
	return &DonorRequestService{
		requests: requests,
		ledger:   ledger,
		users:    users,
		tx:       tx,
		notifier: notifier,
		log:      log,
	}
}

// Create files a donation offer. Quantity zero means the standard draw; an
// explicit quantity must sit in (0, 500]. One open request per
// donor/organisation pair at a time.
func (s *DonorRequestService) Create(ctx context.Context, donorID, orgID primitive.ObjectID, group models.BloodGroup, quantity int64, notes string) (*models.DonorRequest, error) {
	donor, err := s.users.FindByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	if donor.Role != models.RoleDonor {
		return nil, ErrForbidden
	}
	org, err := s.users.FindByID(ctx, orgID)
	if err != nil || org.Role != models.RoleOrganisation {
		return nil, fmt.Errorf("invalid organisation: %w", ErrInvalidInput)
	}
	if !group.Valid() {
		return nil, fmt.Errorf("invalid blood group %q: %w", group, ErrInvalidInput)
	}
	if group != donor.BloodGroup {
		return nil, fmt.Errorf("blood group must match the donor profile: %w", ErrInvalidInput)
	}
	if quantity < 0 || quantity > 500 {
		return nil, fmt.Errorf("quantity must be between 1 and 500 ml: %w", ErrInvalidInput)
	}

	open, err := s.requests.HasOpen(ctx, donorID, orgID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, fmt.Errorf("an open request with this organisation already exists: %w", ErrDuplicateRequest)
	}

	now := time.Now()
	req := &models.DonorRequest{
		Code:         newRequestCode("DREQ"),
		Donor:        donor.ID,
		Organisation: org.ID,
		BloodGroup:   group,
		QuantityML:   quantity,
		Status:       requestflow.StatusPending,
		Notes:        notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.requests.Insert(ctx, req); err != nil {
		return nil, err
	}

	if err := s.notifier.DonorRequestReceived(*org, *donor, *req); err != nil {
		s.log.Warnw("donor request mail failed", "code", req.Code, "err", err)
	}
	return req, nil
}

// Approve schedules the donation. The appointment date, time and location are
// all required; the response goes back to the donor by mail.
func (s *DonorRequestService) Approve(ctx context.Context, orgID, requestID primitive.ObjectID, date time.Time, timeSlot, location, notes string) (*models.DonorRequest, error) {
	if date.IsZero() || strings.TrimSpace(timeSlot) == "" || strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("appointment date, time and location are required: %w", ErrInvalidInput)
	}
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Organisation != orgID {
		return nil, ErrForbidden
	}
	if !requestflow.CanTransition(req.Status, requestflow.StatusApproved) {
		return nil, fmt.Errorf("request is %s: %w", req.Status, ErrInvalidTransition)
	}

	now := time.Now()
	ok, err := s.requests.UpdateStatus(ctx, requestID, requestflow.StatusPending, requestflow.StatusApproved, map[string]interface{}{
		"appointmentDate": date,
		"appointmentTime": timeSlot,
		"location":        location,
		"responseDate":    now,
		"responseNotes":   notes,
		"updatedAt":       now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("request no longer pending: %w", ErrInvalidTransition)
	}

	s.decided(ctx, requestID)
	return s.requests.FindByID(ctx, requestID)
}

// Reject declines the offer with a mandatory reason.
func (s *DonorRequestService) Reject(ctx context.Context, orgID, requestID primitive.ObjectID, reason string) (*models.DonorRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("rejection reason is required: %w", ErrInvalidInput)
	}
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Organisation != orgID {
		return nil, ErrForbidden
	}
	if !requestflow.CanTransition(req.Status, requestflow.StatusRejected) {
		return nil, fmt.Errorf("request is %s: %w", req.Status, ErrInvalidTransition)
	}

	now := time.Now()
	ok, err := s.requests.UpdateStatus(ctx, requestID, requestflow.StatusPending, requestflow.StatusRejected, map[string]interface{}{
		"responseDate":  now,
		"responseNotes": reason,
		"updatedAt":     now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("request no longer pending: %w", ErrInvalidTransition)
	}

	s.decided(ctx, requestID)
	return s.requests.FindByID(ctx, requestID)
}

// Complete records that the donor showed up and blood was collected. The IN
// ledger entry uses the measured quantity when given, then the requested
// quantity, then the standard draw.
func (s *DonorRequestService) Complete(ctx context.Context, orgID, requestID primitive.ObjectID, actualQuantity int64) (*models.DonorRequest, error) {
	if actualQuantity < 0 || actualQuantity > 500 {
		return nil, fmt.Errorf("quantity must be between 1 and 500 ml: %w", ErrInvalidInput)
	}
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Organisation != orgID {
		return nil, ErrForbidden
	}
	if !requestflow.CanTransition(req.Status, requestflow.StatusCompleted) {
		return nil, fmt.Errorf("request is %s: %w", req.Status, ErrInvalidTransition)
	}

	quantity := actualQuantity
	if quantity == 0 {
		quantity = req.QuantityML
	}
	if quantity == 0 {
		quantity = eligibility.StandardDrawML
	}

	now := time.Now()
	entry := &models.LedgerEntry{
		ID:           primitive.NewObjectID(),
		Direction:    models.DirectionIn,
		BloodGroup:   req.BloodGroup,
		QuantityML:   quantity,
		Organisation: req.Organisation,
		Donor:        &req.Donor,
		CreatedAt:    now,
	}
	// The flip and the ledger entry commit atomically. The guarded update
	// goes first so a lost race leaves no orphan IN entry behind.
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.requests.UpdateStatus(ctx, requestID, requestflow.StatusApproved, requestflow.StatusCompleted, map[string]interface{}{
			"completedDate":  now,
			"donationRecord": entry.ID,
			"updatedAt":      now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("request is not approved: %w", ErrInvalidTransition)
		}
		return s.ledger.Insert(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	s.log.Infow("donation completed", "code", req.Code, "donor", req.Donor.Hex(), "quantity", quantity)
	return s.requests.FindByID(ctx, requestID)
}

// Cancel withdraws a request. Donors cancel their own pending requests;
// organisations can also cancel approved appointments that fell through.
func (s *DonorRequestService) Cancel(ctx context.Context, actorID, requestID primitive.ObjectID, reason string) (*models.DonorRequest, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleDonor:
		if req.Donor != actorID {
			return nil, ErrForbidden
		}
		if req.Status != requestflow.StatusPending {
			return nil, fmt.Errorf("donors may only cancel pending requests: %w", ErrInvalidTransition)
		}
	case models.RoleOrganisation:
		if req.Organisation != actorID {
			return nil, ErrForbidden
		}
		if !requestflow.CanTransition(req.Status, requestflow.StatusCancelled) {
			return nil, fmt.Errorf("request is %s: %w", req.Status, ErrInvalidTransition)
		}
	default:
		return nil, ErrForbidden
	}

	now := time.Now()
	ok, err := s.requests.UpdateStatus(ctx, requestID, req.Status, requestflow.StatusCancelled, map[string]interface{}{
		"cancelledDate":   now,
		"cancelledBy":     actorID,
		"cancelledReason": reason,
		"updatedAt":       now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("request already moved on: %w", ErrInvalidTransition)
	}
	return s.requests.FindByID(ctx, requestID)
}

// ListForDonor returns the donor's own requests.
func (s *DonorRequestService) ListForDonor(ctx context.Context, donorID primitive.ObjectID, status requestflow.Status) ([]models.DonorRequest, error) {
	if status != "" && !requestflow.Valid(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrInvalidInput)
	}
	return s.requests.ListByDonor(ctx, donorID, status)
}

// ListForOrganisation returns the offers made to the organisation.
func (s *DonorRequestService) ListForOrganisation(ctx context.Context, orgID primitive.ObjectID, status requestflow.Status) ([]models.DonorRequest, error) {
	if status != "" && !requestflow.Valid(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrInvalidInput)
	}
	return s.requests.ListByOrganisation(ctx, orgID, status)
}

// decided mails the donor about an approve/reject decision, best-effort.
func (s *DonorRequestService) decided(ctx context.Context, requestID primitive.ObjectID) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		s.log.Warnw("decision mail: request reload failed", "id", requestID.Hex(), "err", err)
		return
	}
	donor, err := s.users.FindByID(ctx, req.Donor)
	if err != nil {
		s.log.Warnw("decision mail: donor lookup failed", "id", req.Donor.Hex(), "err", err)
		return
	}
	org, err := s.users.FindByID(ctx, req.Organisation)
	if err != nil {
		s.log.Warnw("decision mail: organisation lookup failed", "id", req.Organisation.Hex(), "err", err)
		return
	}
	if err := s.notifier.DonorRequestDecided(*donor, *org, *req); err != nil {
		s.log.Warnw("decision mail failed", "code", req.Code, "err", err)
	}
}
