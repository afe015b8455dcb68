package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"lifelink-api-server/internal/eligibility"
	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/stock"
)

// InventoryService owns the blood stock ledger: posting IN/OUT entries,
// availability reads and threshold configuration.
type InventoryService struct {
	ledger   LedgerStore
	users    UserStore
	agg      *stock.Aggregator
	tx       TxRunner
	lowStock *LowStockNotifier
	log      *zap.SugaredLogger
}

func NewInventoryService(ledger LedgerStore, users UserStore, agg *stock.Aggregator, tx TxRunner, lowStock *LowStockNotifier, log *zap.SugaredLogger) *InventoryService {
	return &InventoryService{
		ledger:   ledger,
		users:    users,
		agg:      agg,
		tx:       tx,
		lowStock: lowStock,
		log:      log,
	}
}

// RecordDonorDonation posts an IN entry for a walk-in donation by the donor
// themselves. The organisation is identified by email. The quantity is
// derived from the donor's weight; the eligibility gate runs first.
func (s *InventoryService) RecordDonorDonation(ctx context.Context, donorID primitive.ObjectID, orgEmail string, group models.BloodGroup, details models.DonorDetails) (*models.LedgerEntry, error) {
	donor, err := s.users.FindByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	org, err := s.users.FindByEmailAndRole(ctx, orgEmail, models.RoleOrganisation)
	if err != nil {
		return nil, fmt.Errorf("organisation not found for provided email: %w", ErrInvalidInput)
	}
	if !group.Valid() {
		return nil, fmt.Errorf("invalid blood group %q: %w", group, ErrInvalidInput)
	}

	quantity, err := eligibility.Evaluate(donor, details.Eligibility.Confirmation)
	if err != nil {
		return nil, err
	}

	details.FullName = donor.Name
	details.Age = donor.Age
	details.BloodGroup = donor.BloodGroup
	details.City = donor.City

	entry := &models.LedgerEntry{
		Direction:    models.DirectionIn,
		BloodGroup:   group,
		QuantityML:   quantity,
		Organisation: org.ID,
		Donor:        &donor.ID,
		DonorDetails: &details,
		CreatedAt:    time.Now(),
	}
	if err := s.ledger.Insert(ctx, entry); err != nil {
		return nil, err
	}
	s.log.Infow("donation recorded", "org", org.ID.Hex(), "donor", donor.ID.Hex(), "group", group, "quantity", quantity)
	return entry, nil
}

// RecordOrganisationIn posts an IN entry recorded by the organisation on
// behalf of a donor identified by email. The organisation attests the
// donor's eligibility at the counter.
func (s *InventoryService) RecordOrganisationIn(ctx context.Context, orgID primitive.ObjectID, donorEmail string, group models.BloodGroup) (*models.LedgerEntry, error) {
	org, err := s.users.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.Role != models.RoleOrganisation {
		return nil, ErrForbidden
	}
	donor, err := s.users.FindByEmailAndRole(ctx, donorEmail, models.RoleDonor)
	if err != nil {
		return nil, fmt.Errorf("donor not found for provided email: %w", ErrInvalidInput)
	}
	if !group.Valid() {
		return nil, fmt.Errorf("invalid blood group %q: %w", group, ErrInvalidInput)
	}

	quantity, err := eligibility.Evaluate(donor, true)
	if err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		Direction:    models.DirectionIn,
		BloodGroup:   group,
		QuantityML:   quantity,
		Organisation: org.ID,
		Donor:        &donor.ID,
		CreatedAt:    time.Now(),
	}
	if err := s.ledger.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordIssue posts an OUT entry from an organisation to a hospital,
// identified by id or email. The stock check and the insert run in one
// transaction so two concurrent issues cannot oversell the pool.
func (s *InventoryService) RecordIssue(ctx context.Context, orgID primitive.ObjectID, hospitalID *primitive.ObjectID, hospitalEmail string, group models.BloodGroup, quantity int64) (*models.LedgerEntry, error) {
	org, err := s.users.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.Role != models.RoleOrganisation {
		return nil, ErrForbidden
	}
	if !group.Valid() {
		return nil, fmt.Errorf("invalid blood group %q: %w", group, ErrInvalidInput)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}

	var hospital *models.User
	if hospitalID != nil {
		hospital, err = s.users.FindByID(ctx, *hospitalID)
	} else if hospitalEmail != "" {
		hospital, err = s.users.FindByEmailAndRole(ctx, hospitalEmail, models.RoleHospital)
	} else {
		return nil, fmt.Errorf("hospital identifier is required: %w", ErrInvalidInput)
	}
	if err != nil || hospital.Role != models.RoleHospital {
		return nil, fmt.Errorf("hospital not found for provided identifier: %w", ErrInvalidInput)
	}

	entry := &models.LedgerEntry{
		Direction:    models.DirectionOut,
		BloodGroup:   group,
		QuantityML:   quantity,
		Organisation: org.ID,
		Hospital:     &hospital.ID,
		CreatedAt:    time.Now(),
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		available, err := s.agg.Available(ctx, org.ID, group)
		if err != nil {
			return err
		}
		if available < quantity {
			return fmt.Errorf("available %dml, required %dml: %w", available, quantity, ErrInsufficientStock)
		}
		return s.ledger.Insert(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.lowStock.Notify(ctx, org.ID, group)
	return entry, nil
}

// Ledger lists entries scoped to what the actor may see: organisations,
// donors and hospitals see their own movements, admins see everything.
func (s *InventoryService) Ledger(ctx context.Context, actorID primitive.ObjectID, limit int64) ([]models.LedgerEntry, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	filter := LedgerFilter{Limit: limit}
	switch actor.Role {
	case models.RoleOrganisation:
		filter.Organisation = &actor.ID
	case models.RoleDonor:
		filter.Donor = &actor.ID
	case models.RoleHospital:
		filter.Hospital = &actor.ID
	}
	return s.ledger.List(ctx, filter)
}

// HospitalIssueHistory lists the OUT entries an organisation issued to one
// hospital.
func (s *InventoryService) HospitalIssueHistory(ctx context.Context, orgID, hospitalID primitive.ObjectID) ([]models.LedgerEntry, error) {
	return s.ledger.List(ctx, LedgerFilter{
		Organisation: &orgID,
		Hospital:     &hospitalID,
		Direction:    models.DirectionOut,
	})
}

// StockSummary returns the per-group dashboard rows for an organisation.
func (s *InventoryService) StockSummary(ctx context.Context, orgID primitive.ObjectID, lowOnly bool) ([]stock.SummaryRow, error) {
	org, err := s.users.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.Role != models.RoleOrganisation {
		return nil, ErrForbidden
	}
	thresholds := stock.ResolveThresholds(org.MinStockByGroup)
	return s.agg.Summary(ctx, orgID, thresholds, lowOnly)
}

// Thresholds returns the organisation's effective minimums per group.
func (s *InventoryService) Thresholds(ctx context.Context, orgID primitive.ObjectID) (map[models.BloodGroup]int64, error) {
	org, err := s.users.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.Role != models.RoleOrganisation {
		return nil, ErrForbidden
	}
	table := stock.ResolveThresholds(org.MinStockByGroup)
	out := make(map[models.BloodGroup]int64, len(models.AllBloodGroups))
	for _, group := range models.AllBloodGroups {
		out[group] = table.Min(group)
	}
	return out, nil
}

// UpdateThresholds replaces the organisation's per-group overrides.
func (s *InventoryService) UpdateThresholds(ctx context.Context, orgID primitive.ObjectID, overrides map[string]int64) error {
	org, err := s.users.FindByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org.Role != models.RoleOrganisation {
		return ErrForbidden
	}
	for key, min := range overrides {
		if !models.BloodGroup(key).Valid() {
			return fmt.Errorf("unknown blood group %q: %w", key, ErrInvalidInput)
		}
		if min < 0 {
			return fmt.Errorf("minimum for %s must not be negative: %w", key, ErrInvalidInput)
		}
	}
	return s.users.UpdateThresholds(ctx, orgID, overrides)
}

// DonorStatRow joins a donor's aggregated totals with profile data.
type DonorStatRow struct {
	DonorTotal
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// DonorStats lists every donor who donated to the organisation with totals.
func (s *InventoryService) DonorStats(ctx context.Context, orgID primitive.ObjectID) ([]DonorStatRow, error) {
	totals, err := s.ledger.DonorTotals(ctx, orgID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.Donor)
	}
	donors, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.User, len(donors))
	for _, d := range donors {
		byID[d.ID] = d
	}

	rows := make([]DonorStatRow, 0, len(totals))
	for _, t := range totals {
		row := DonorStatRow{DonorTotal: t, Name: "Donor", Contact: "-"}
		if donor, ok := byID[t.Donor]; ok {
			row.Name = donor.Name
			if donor.Phone != "" {
				row.Contact = donor.Phone
			} else if donor.Email != "" {
				row.Contact = donor.Email
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// HospitalStatRow joins a hospital's issue totals with profile data.
type HospitalStatRow struct {
	HospitalTotal
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

// HospitalStats lists the hospitals the organisation issued blood to.
func (s *InventoryService) HospitalStats(ctx context.Context, orgID primitive.ObjectID) ([]HospitalStatRow, error) {
	totals, err := s.ledger.HospitalTotals(ctx, orgID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.Hospital)
	}
	hospitals, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.User, len(hospitals))
	for _, h := range hospitals {
		byID[h.ID] = h
	}

	rows := make([]HospitalStatRow, 0, len(totals))
	for _, t := range totals {
		row := HospitalStatRow{HospitalTotal: t, Name: "Hospital", Address: "-", Contact: "-"}
		if h, ok := byID[t.Hospital]; ok {
			row.Name = h.HospitalName
			if h.Address != "" {
				row.Address = h.Address
			}
			if h.Phone != "" {
				row.Contact = h.Phone
			}
			row.Email = h.Email
			row.Website = h.Website
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// GroupAnalytics is one blood group's totals for the dashboard.
type GroupAnalytics struct {
	BloodGroup  models.BloodGroup `json:"bloodGroup"`
	TotalInML   int64             `json:"totalIn"`
	TotalOutML  int64             `json:"totalOut"`
	AvailableML int64             `json:"available"`
	MinimumML   int64             `json:"min"`
	Needed      bool              `json:"needed"`
}

// BloodGroupAnalytics returns IN/OUT/available per group. Organisations see
// their own stock measured against their thresholds; admins see network-wide
// totals with no threshold flags.
func (s *InventoryService) BloodGroupAnalytics(ctx context.Context, actorID primitive.ObjectID) ([]GroupAnalytics, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	orgID := primitive.NilObjectID
	var thresholds stock.ThresholdTable
	isOrganisation := actor.Role == models.RoleOrganisation
	if isOrganisation {
		orgID = actor.ID
		thresholds = stock.ResolveThresholds(actor.MinStockByGroup)
	}

	rows := make([]GroupAnalytics, 0, len(models.AllBloodGroups))
	for _, group := range models.AllBloodGroups {
		totalIn, err := s.ledger.SumQuantity(ctx, orgID, group, models.DirectionIn)
		if err != nil {
			return nil, err
		}
		totalOut, err := s.ledger.SumQuantity(ctx, orgID, group, models.DirectionOut)
		if err != nil {
			return nil, err
		}
		row := GroupAnalytics{
			BloodGroup:  group,
			TotalInML:   totalIn,
			TotalOutML:  totalOut,
			AvailableML: totalIn - totalOut,
		}
		if isOrganisation {
			row.MinimumML = thresholds.Min(group)
			row.Needed = thresholds.IsLow(group, row.AvailableML)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// OrganisationOverview is a directory entry with current availability.
type OrganisationOverview struct {
	models.User
	Availability map[models.BloodGroup]int64 `json:"availability"`
	NeededGroups []models.BloodGroup         `json:"neededBloodGroups"`
}

// OrganisationDirectory lists every organisation with availability and the
// groups currently under threshold.
func (s *InventoryService) OrganisationDirectory(ctx context.Context) ([]OrganisationOverview, error) {
	orgs, err := s.users.ListByRole(ctx, models.RoleOrganisation)
	if err != nil {
		return nil, err
	}
	overviews := make([]OrganisationOverview, 0, len(orgs))
	for _, org := range orgs {
		availability, err := s.agg.GroupAvailability(ctx, org.ID)
		if err != nil {
			return nil, err
		}
		thresholds := stock.ResolveThresholds(org.MinStockByGroup)
		needed := make([]models.BloodGroup, 0)
		for _, group := range models.AllBloodGroups {
			if thresholds.IsLow(group, availability[group]) {
				needed = append(needed, group)
			}
		}
		overviews = append(overviews, OrganisationOverview{
			User:         org,
			Availability: availability,
			NeededGroups: needed,
		})
	}
	return overviews, nil
}

// ConnectHospital adds a hospital to the organisation's partner list.
func (s *InventoryService) ConnectHospital(ctx context.Context, orgID, hospitalID primitive.ObjectID) error {
	org, err := s.users.FindByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org.Role != models.RoleOrganisation {
		return ErrForbidden
	}
	hospital, err := s.users.FindByID(ctx, hospitalID)
	if err != nil || hospital.Role != models.RoleHospital {
		return fmt.Errorf("invalid hospital: %w", ErrInvalidInput)
	}
	return s.users.ConnectHospital(ctx, orgID, hospitalID)
}
