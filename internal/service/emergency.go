package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"lifelink-api-server/internal/matching"
	"lifelink-api-server/internal/models"
)

// EmergencyService broadcasts urgent blood calls to matching donors and
// tracks their responses.
type EmergencyService struct {
	emergencies EmergencyStore
	users       UserStore
	notifier    Notifier
	log         *zap.SugaredLogger
}

func NewEmergencyService(emergencies EmergencyStore, users UserStore, notifier Notifier, log *zap.SugaredLogger) *EmergencyService {
	return &EmergencyService{
		emergencies: emergencies,
		users:       users,
		notifier:    notifier,
		log:         log,
	}
}

func validUrgency(urgency string) bool {
	switch urgency {
	case models.UrgencyHigh, models.UrgencyCritical, models.UrgencyEmergency:
		return true
	}
	return false
}

// Create files an emergency and broadcasts it. The matched donors are frozen
// into the request as a snapshot; one failed mail never stops the rest of the
// fan-out.
func (s *EmergencyService) Create(ctx context.Context, orgID primitive.ObjectID, req *models.EmergencyRequest) (*models.EmergencyRequest, error) {
	org, err := s.users.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.Role != models.RoleOrganisation {
		return nil, ErrForbidden
	}
	if !req.BloodGroup.Valid() {
		return nil, fmt.Errorf("invalid blood group %q: %w", req.BloodGroup, ErrInvalidInput)
	}
	if req.QuantityML <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}
	if !validUrgency(req.Urgency) {
		return nil, fmt.Errorf("unknown urgency %q: %w", req.Urgency, ErrInvalidInput)
	}
	if strings.TrimSpace(req.City) == "" {
		return nil, fmt.Errorf("city is required: %w", ErrInvalidInput)
	}

	now := time.Now()
	req.Organisation = org.ID
	req.Status = models.EmergencyActive
	req.BroadcastSent = false
	req.EligibleDonors = nil
	req.CreatedAt = now
	req.UpdatedAt = now
	if err := s.emergencies.Insert(ctx, req); err != nil {
		return nil, err
	}

	donors, err := s.users.VerifiedDonors(ctx)
	if err != nil {
		return nil, err
	}
	matched := matching.FilterEmergency(donors, req.BloodGroup, req.City)

	snapshot := make([]models.EligibleDonor, 0, len(matched))
	for _, donor := range matched {
		snapshot = append(snapshot, models.EligibleDonor{
			Donor:      donor.ID,
			BloodGroup: donor.BloodGroup,
			Universal:  donor.BloodGroup == models.GroupONeg && donor.BloodGroup != req.BloodGroup,
			Response:   models.DonorResponsePending,
		})
	}
	if err := s.emergencies.SetEligibleDonors(ctx, req.ID, snapshot); err != nil {
		return nil, err
	}
	req.EligibleDonors = snapshot

	notified := 0
	for _, donor := range matched {
		if err := s.notifier.EmergencyBroadcast(donor, *org, *req); err != nil {
			s.log.Warnw("emergency mail failed", "emergency", req.ID.Hex(), "donor", donor.ID.Hex(), "err", err)
			continue
		}
		at := time.Now()
		if err := s.emergencies.MarkNotified(ctx, req.ID, donor.ID, at); err != nil {
			s.log.Warnw("emergency notify flag failed", "emergency", req.ID.Hex(), "donor", donor.ID.Hex(), "err", err)
		}
		notified++
	}
	if err := s.emergencies.SetBroadcastSent(ctx, req.ID, time.Now()); err != nil {
		s.log.Warnw("broadcast flag failed", "emergency", req.ID.Hex(), "err", err)
	}

	s.log.Infow("emergency broadcast",
		"emergency", req.ID.Hex(), "org", org.ID.Hex(), "group", req.BloodGroup,
		"city", req.City, "matched", len(matched), "notified", notified)
	return s.emergencies.FindByID(ctx, req.ID)
}

// ListAll returns every emergency, admin view.
func (s *EmergencyService) ListAll(ctx context.Context) ([]models.EmergencyRequest, error) {
	return s.emergencies.ListAll(ctx)
}

// ListForOrganisation returns the organisation's own emergencies.
func (s *EmergencyService) ListForOrganisation(ctx context.Context, orgID primitive.ObjectID) ([]models.EmergencyRequest, error) {
	return s.emergencies.ListByOrganisation(ctx, orgID)
}

// ListForDonor returns active emergencies the donor's blood group can answer.
func (s *EmergencyService) ListForDonor(ctx context.Context, donorID primitive.ObjectID) ([]models.EmergencyRequest, error) {
	donor, err := s.users.FindByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	active, err := s.emergencies.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]models.EmergencyRequest, 0)
	for _, req := range active {
		if matching.Compatible(donor.BloodGroup, req.BloodGroup) {
			matched = append(matched, req)
		}
	}
	return matched, nil
}

// Respond records a donor's accept/decline on an active emergency. Only
// donors in the broadcast snapshot may respond.
func (s *EmergencyService) Respond(ctx context.Context, donorID, emergencyID primitive.ObjectID, response string) (*models.EmergencyRequest, error) {
	if response != models.DonorResponseAccepted && response != models.DonorResponseDeclined {
		return nil, fmt.Errorf("response must be accepted or declined: %w", ErrInvalidInput)
	}
	req, err := s.emergencies.FindByID(ctx, emergencyID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.EmergencyActive {
		return nil, fmt.Errorf("emergency is %s: %w", req.Status, ErrInvalidTransition)
	}

	ok, err := s.emergencies.RecordResponse(ctx, emergencyID, donorID, response, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("donor is not part of this broadcast: %w", ErrForbidden)
	}
	return s.emergencies.FindByID(ctx, emergencyID)
}

// Fulfil closes an active emergency and thanks the notified donors.
func (s *EmergencyService) Fulfil(ctx context.Context, orgID, emergencyID primitive.ObjectID, notes string) (*models.EmergencyRequest, error) {
	req, err := s.emergencies.FindByID(ctx, emergencyID)
	if err != nil {
		return nil, err
	}
	if req.Organisation != orgID {
		return nil, ErrForbidden
	}
	if req.Status != models.EmergencyActive {
		return nil, fmt.Errorf("emergency is %s: %w", req.Status, ErrInvalidTransition)
	}
	org, err := s.users.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.emergencies.SetStatus(ctx, emergencyID, models.EmergencyFulfilled, map[string]interface{}{
		"fulfilledAt":     now,
		"fulfilmentNotes": notes,
		"updatedAt":       now,
	}); err != nil {
		return nil, err
	}

	updated, err := s.emergencies.FindByID(ctx, emergencyID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(updated.EligibleDonors))
	for _, d := range updated.EligibleDonors {
		if d.Notified {
			ids = append(ids, d.Donor)
		}
	}
	donors, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		s.log.Warnw("fulfilment mail: donor lookup failed", "emergency", emergencyID.Hex(), "err", err)
		return updated, nil
	}
	for _, donor := range donors {
		if err := s.notifier.EmergencyFulfilled(donor, *org, *updated); err != nil {
			s.log.Warnw("fulfilment mail failed", "emergency", emergencyID.Hex(), "donor", donor.ID.Hex(), "err", err)
		}
	}
	return updated, nil
}

// AdminSetStatus lets an admin cancel or block an emergency with notes.
func (s *EmergencyService) AdminSetStatus(ctx context.Context, adminID, emergencyID primitive.ObjectID, status, notes string) (*models.EmergencyRequest, error) {
	if status != models.EmergencyCancelled && status != models.EmergencyBlocked {
		return nil, fmt.Errorf("admins may set cancelled or blocked only: %w", ErrInvalidInput)
	}
	req, err := s.emergencies.FindByID(ctx, emergencyID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.EmergencyActive {
		return nil, fmt.Errorf("emergency is %s: %w", req.Status, ErrInvalidTransition)
	}

	now := time.Now()
	set := map[string]interface{}{
		"adminNotes": notes,
		"updatedAt":  now,
	}
	if status == models.EmergencyCancelled {
		set["cancelledAt"] = now
		set["cancelledBy"] = adminID
	}
	if err := s.emergencies.SetStatus(ctx, emergencyID, status, set); err != nil {
		return nil, err
	}
	return s.emergencies.FindByID(ctx, emergencyID)
}

// Delete removes the organisation's own emergency.
func (s *EmergencyService) Delete(ctx context.Context, orgID, emergencyID primitive.ObjectID) error {
	req, err := s.emergencies.FindByID(ctx, emergencyID)
	if err != nil {
		return err
	}
	if req.Organisation != orgID {
		return ErrForbidden
	}
	return s.emergencies.Delete(ctx, emergencyID)
}

// Stats returns emergency counts per status for the admin dashboard.
func (s *EmergencyService) Stats(ctx context.Context) (map[string]int64, error) {
	return s.emergencies.CountByStatus(ctx)
}
