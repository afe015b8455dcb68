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

// CampService manages donation camps: organisations propose them, admins
// approve and publish, donors browse the published ones.
type CampService struct {
	camps    CampStore
	users    UserStore
	notifier Notifier
	log      *zap.SugaredLogger
}

func NewCampService(camps CampStore, users UserStore, notifier Notifier, log *zap.SugaredLogger) *CampService {
	return &CampService{camps: camps, users: users, notifier: notifier, log: log}
}

// Create proposes a camp. Camps start pending and stay invisible to donors
// until an admin approves them.
func (s *CampService) Create(ctx context.Context, orgID primitive.ObjectID, camp *models.Camp) (*models.Camp, error) {
	org, err := s.users.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.Role != models.RoleOrganisation {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(camp.Name) == "" || strings.TrimSpace(camp.City) == "" || strings.TrimSpace(camp.Location) == "" {
		return nil, fmt.Errorf("name, city and location are required: %w", ErrInvalidInput)
	}
	if camp.Date.Before(time.Now()) {
		return nil, fmt.Errorf("camp date must be in the future: %w", ErrInvalidInput)
	}
	if len(camp.BloodGroups) == 0 {
		return nil, fmt.Errorf("at least one blood group is required: %w", ErrInvalidInput)
	}
	for _, group := range camp.BloodGroups {
		if !group.Valid() {
			return nil, fmt.Errorf("invalid blood group %q: %w", group, ErrInvalidInput)
		}
	}

	now := time.Now()
	camp.Organisation = org.ID
	camp.Status = models.CampPending
	camp.IsPublished = false
	camp.CreatedAt = now
	camp.UpdatedAt = now
	if err := s.camps.Insert(ctx, camp); err != nil {
		return nil, err
	}
	return camp, nil
}

// Approve publishes a pending camp and announces it to donors whose blood
// group the camp collects, city-matched, one mail failure never stopping the
// rest.
func (s *CampService) Approve(ctx context.Context, adminID, campID primitive.ObjectID, notes string) (*models.Camp, error) {
	camp, err := s.camps.FindByID(ctx, campID)
	if err != nil {
		return nil, err
	}
	if camp.Status != models.CampPending {
		return nil, fmt.Errorf("camp is %s: %w", camp.Status, ErrInvalidTransition)
	}

	now := time.Now()
	ok, err := s.camps.UpdateStatus(ctx, campID, models.CampPending, models.CampApproved, map[string]interface{}{
		"adminNotes":  notes,
		"isPublished": true,
		"publishedAt": now,
		"publishedBy": adminID,
		"updatedAt":   now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("camp no longer pending: %w", ErrInvalidTransition)
	}

	updated, err := s.camps.FindByID(ctx, campID)
	if err != nil {
		return nil, err
	}

	donors, err := s.users.VerifiedDonors(ctx)
	if err != nil {
		s.log.Warnw("camp announcement: donor lookup failed", "camp", campID.Hex(), "err", err)
		return updated, nil
	}
	matched := matching.FilterCamp(donors, updated.BloodGroups, updated.City)
	notified := 0
	for _, donor := range matched {
		if err := s.notifier.CampAnnouncement(donor, *updated); err != nil {
			s.log.Warnw("camp mail failed", "camp", campID.Hex(), "donor", donor.ID.Hex(), "err", err)
			continue
		}
		notified++
	}
	s.log.Infow("camp published", "camp", campID.Hex(), "city", updated.City, "matched", len(matched), "notified", notified)
	return updated, nil
}

// Reject declines a pending camp with a mandatory reason.
func (s *CampService) Reject(ctx context.Context, adminID, campID primitive.ObjectID, reason string) (*models.Camp, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("rejection reason is required: %w", ErrInvalidInput)
	}
	camp, err := s.camps.FindByID(ctx, campID)
	if err != nil {
		return nil, err
	}
	if camp.Status != models.CampPending {
		return nil, fmt.Errorf("camp is %s: %w", camp.Status, ErrInvalidTransition)
	}

	ok, err := s.camps.UpdateStatus(ctx, campID, models.CampPending, models.CampRejected, map[string]interface{}{
		"adminNotes": reason,
		"updatedAt":  time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("camp no longer pending: %w", ErrInvalidTransition)
	}
	return s.camps.FindByID(ctx, campID)
}

// Update edits the organisation's own camp. Only pending and approved camps
// can change; editing an approved camp is allowed for logistics fixes but the
// status stays as is.
func (s *CampService) Update(ctx context.Context, orgID, campID primitive.ObjectID, set map[string]interface{}) (*models.Camp, error) {
	camp, err := s.camps.FindByID(ctx, campID)
	if err != nil {
		return nil, err
	}
	if camp.Organisation != orgID {
		return nil, ErrForbidden
	}
	if camp.Status != models.CampPending && camp.Status != models.CampApproved {
		return nil, fmt.Errorf("camp is %s: %w", camp.Status, ErrInvalidTransition)
	}
	for _, key := range []string{"status", "organisation", "isPublished", "publishedAt", "publishedBy", "adminNotes"} {
		delete(set, key)
	}
	set["updatedAt"] = time.Now()
	if err := s.camps.Update(ctx, campID, set); err != nil {
		return nil, err
	}
	return s.camps.FindByID(ctx, campID)
}

// Delete removes the organisation's own camp while it is still pending.
func (s *CampService) Delete(ctx context.Context, orgID, campID primitive.ObjectID) error {
	camp, err := s.camps.FindByID(ctx, campID)
	if err != nil {
		return err
	}
	if camp.Organisation != orgID {
		return ErrForbidden
	}
	if camp.Status != models.CampPending {
		return fmt.Errorf("only pending camps can be deleted: %w", ErrInvalidTransition)
	}
	return s.camps.Delete(ctx, campID)
}

// ListPublished returns upcoming approved camps for donors, optionally
// narrowed by city and blood group.
func (s *CampService) ListPublished(ctx context.Context, city string, group models.BloodGroup) ([]models.Camp, error) {
	if group != "" && !group.Valid() {
		return nil, fmt.Errorf("invalid blood group %q: %w", group, ErrInvalidInput)
	}
	return s.camps.ListPublished(ctx, city, group)
}

// ListForOrganisation returns the organisation's own camps, every status.
func (s *CampService) ListForOrganisation(ctx context.Context, orgID primitive.ObjectID) ([]models.Camp, error) {
	return s.camps.ListByOrganisation(ctx, orgID)
}

// ListAll returns every camp, admin view, optionally filtered by status.
func (s *CampService) ListAll(ctx context.Context, status string) ([]models.Camp, error) {
	if status == "" {
		return s.camps.ListAll(ctx)
	}
	return s.camps.ListByStatus(ctx, status)
}

// Stats returns camp counts per status for the admin dashboard.
func (s *CampService) Stats(ctx context.Context) (map[string]int64, error) {
	return s.camps.CountByStatus(ctx)
}
