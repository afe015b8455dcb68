package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/requestflow"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// memLedger is an in-memory LedgerStore. Guarded by a mutex so the
// concurrency tests exercise it from multiple goroutines.
type memLedger struct {
	mu      sync.Mutex
	entries []models.LedgerEntry
}

func (m *memLedger) Insert(_ context.Context, entry *models.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memLedger) SumQuantity(_ context.Context, orgID primitive.ObjectID, group models.BloodGroup, direction models.Direction) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, e := range m.entries {
		if !orgID.IsZero() && e.Organisation != orgID {
			continue
		}
		if e.BloodGroup == group && e.Direction == direction {
			total += e.QuantityML
		}
	}
	return total, nil
}

func (m *memLedger) LastUpdated(_ context.Context, orgID primitive.ObjectID) (map[models.BloodGroup]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := make(map[models.BloodGroup]time.Time)
	for _, e := range m.entries {
		if e.Organisation != orgID {
			continue
		}
		if ts, ok := latest[e.BloodGroup]; !ok || e.CreatedAt.After(ts) {
			latest[e.BloodGroup] = e.CreatedAt
		}
	}
	return latest, nil
}

func (m *memLedger) List(_ context.Context, filter LedgerFilter) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.LedgerEntry, 0)
	for _, e := range m.entries {
		if filter.Organisation != nil && e.Organisation != *filter.Organisation {
			continue
		}
		if filter.Donor != nil && (e.Donor == nil || *e.Donor != *filter.Donor) {
			continue
		}
		if filter.Hospital != nil && (e.Hospital == nil || *e.Hospital != *filter.Hospital) {
			continue
		}
		if filter.Direction != "" && e.Direction != filter.Direction {
			continue
		}
		if filter.BloodGroup != "" && e.BloodGroup != filter.BloodGroup {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && int64(len(out)) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *memLedger) DonorTotals(_ context.Context, orgID primitive.ObjectID) ([]DonorTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byDonor := make(map[primitive.ObjectID]*DonorTotal)
	for _, e := range m.entries {
		if e.Organisation != orgID || e.Direction != models.DirectionIn || e.Donor == nil {
			continue
		}
		t, ok := byDonor[*e.Donor]
		if !ok {
			t = &DonorTotal{Donor: *e.Donor}
			byDonor[*e.Donor] = t
		}
		t.TotalML += e.QuantityML
		t.Count++
		if e.CreatedAt.After(t.LastDonation) {
			t.LastDonation = e.CreatedAt
		}
		t.BloodGroups = append(t.BloodGroups, e.BloodGroup)
	}
	out := make([]DonorTotal, 0, len(byDonor))
	for _, t := range byDonor {
		out = append(out, *t)
	}
	return out, nil
}

func (m *memLedger) HospitalTotals(_ context.Context, orgID primitive.ObjectID) ([]HospitalTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byHospital := make(map[primitive.ObjectID]*HospitalTotal)
	for _, e := range m.entries {
		if e.Organisation != orgID || e.Direction != models.DirectionOut || e.Hospital == nil {
			continue
		}
		t, ok := byHospital[*e.Hospital]
		if !ok {
			t = &HospitalTotal{Hospital: *e.Hospital}
			byHospital[*e.Hospital] = t
		}
		t.TotalML += e.QuantityML
		if e.CreatedAt.After(t.LastIssue) || t.LastIssue.IsZero() {
			t.LastIssue = e.CreatedAt
			t.LastBloodGroup = e.BloodGroup
		}
	}
	out := make([]HospitalTotal, 0, len(byHospital))
	for _, t := range byHospital {
		out = append(out, *t)
	}
	return out, nil
}

func (m *memLedger) count(direction models.Direction) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Direction == direction {
			n++
		}
	}
	return n
}

// memUsers is an in-memory UserStore.
type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		if u.Status == "" {
			u.Status = models.UserActive
		}
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memUsers) FindByEmailAndRole(_ context.Context, email, role string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email && u.Role == role {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memUsers) Insert(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUsers) ListByRole(_ context.Context, role string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0)
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUsers) VerifiedDonors(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0)
	for _, u := range m.users {
		if u.Role == models.RoleDonor && u.EmailVerified {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUsers) UpdateThresholds(_ context.Context, orgID primitive.ObjectID, overrides map[string]int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[orgID]
	if !ok {
		return ErrNotFound
	}
	u.MinStockByGroup = overrides
	return nil
}

func (m *memUsers) ConnectHospital(_ context.Context, orgID, hospitalID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[orgID]
	if !ok {
		return ErrNotFound
	}
	for _, id := range u.ConnectedHospitals {
		if id == hospitalID {
			return nil
		}
	}
	u.ConnectedHospitals = append(u.ConnectedHospitals, hospitalID)
	return nil
}

func (m *memUsers) SetStatus(_ context.Context, id primitive.ObjectID, status string, by *primitive.ObjectID, at *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Status = status
	u.BlockedBy = by
	u.BlockedAt = at
	return nil
}

func (m *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// memHospitalRequests is an in-memory HospitalRequestStore with the same
// compare-and-set UpdateStatus guard the Mongo store provides.
type memHospitalRequests struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.HospitalRequest
}

func newMemHospitalRequests() *memHospitalRequests {
	return &memHospitalRequests{requests: make(map[primitive.ObjectID]*models.HospitalRequest)}
}

func (m *memHospitalRequests) Insert(_ context.Context, req *models.HospitalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	copied := *req
	m.requests[req.ID] = &copied
	return nil
}

func (m *memHospitalRequests) FindByID(_ context.Context, id primitive.ObjectID) (*models.HospitalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *memHospitalRequests) ListByHospital(_ context.Context, hospitalID primitive.ObjectID, status requestflow.Status) ([]models.HospitalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.HospitalRequest, 0)
	for _, req := range m.requests {
		if req.Hospital == hospitalID && (status == "" || req.Status == status) {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memHospitalRequests) ListByOrganisation(_ context.Context, orgID primitive.ObjectID, status requestflow.Status) ([]models.HospitalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.HospitalRequest, 0)
	for _, req := range m.requests {
		if req.Organisation == orgID && (status == "" || req.Status == status) {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memHospitalRequests) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to requestflow.Status, set map[string]interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	for key, value := range set {
		switch key {
		case "approvedAt":
			t := value.(time.Time)
			req.ApprovedAt = &t
		case "approvedBy":
			v := value.(primitive.ObjectID)
			req.ApprovedBy = &v
		case "rejectedAt":
			t := value.(time.Time)
			req.RejectedAt = &t
		case "rejectedBy":
			v := value.(primitive.ObjectID)
			req.RejectedBy = &v
		case "rejectionReason":
			req.RejectionReason = value.(string)
		case "completedAt":
			t := value.(time.Time)
			req.CompletedAt = &t
		case "cancelledAt":
			t := value.(time.Time)
			req.CancelledAt = &t
		case "cancelledBy":
			v := value.(primitive.ObjectID)
			req.CancelledBy = &v
		case "cancelledReason":
			req.CancelledReason = value.(string)
		case "updatedAt":
			req.UpdatedAt = value.(time.Time)
		}
	}
	return true, nil
}

// memDonorRequests is an in-memory DonorRequestStore.
type memDonorRequests struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.DonorRequest
}

func newMemDonorRequests() *memDonorRequests {
	return &memDonorRequests{requests: make(map[primitive.ObjectID]*models.DonorRequest)}
}

func (m *memDonorRequests) Insert(_ context.Context, req *models.DonorRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	copied := *req
	m.requests[req.ID] = &copied
	return nil
}

func (m *memDonorRequests) FindByID(_ context.Context, id primitive.ObjectID) (*models.DonorRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *memDonorRequests) ListByDonor(_ context.Context, donorID primitive.ObjectID, status requestflow.Status) ([]models.DonorRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DonorRequest, 0)
	for _, req := range m.requests {
		if req.Donor == donorID && (status == "" || req.Status == status) {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memDonorRequests) ListByOrganisation(_ context.Context, orgID primitive.ObjectID, status requestflow.Status) ([]models.DonorRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DonorRequest, 0)
	for _, req := range m.requests {
		if req.Organisation == orgID && (status == "" || req.Status == status) {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memDonorRequests) HasOpen(_ context.Context, donorID, orgID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.requests {
		if req.Donor == donorID && req.Organisation == orgID &&
			(req.Status == requestflow.StatusPending || req.Status == requestflow.StatusApproved) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memDonorRequests) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to requestflow.Status, set map[string]interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	for key, value := range set {
		switch key {
		case "appointmentDate":
			t := value.(time.Time)
			req.AppointmentDate = &t
		case "appointmentTime":
			req.AppointmentTime = value.(string)
		case "location":
			req.Location = value.(string)
		case "responseDate":
			t := value.(time.Time)
			req.ResponseDate = &t
		case "responseNotes":
			req.ResponseNotes = value.(string)
		case "completedDate":
			t := value.(time.Time)
			req.CompletedDate = &t
		case "donationRecord":
			v := value.(primitive.ObjectID)
			req.DonationRecord = &v
		case "cancelledDate":
			t := value.(time.Time)
			req.CancelledDate = &t
		case "cancelledBy":
			v := value.(primitive.ObjectID)
			req.CancelledBy = &v
		case "cancelledReason":
			req.CancelledReason = value.(string)
		case "updatedAt":
			req.UpdatedAt = value.(time.Time)
		}
	}
	return true, nil
}

// memEmergencies is an in-memory EmergencyStore.
type memEmergencies struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.EmergencyRequest
}

func newMemEmergencies() *memEmergencies {
	return &memEmergencies{requests: make(map[primitive.ObjectID]*models.EmergencyRequest)}
}

func (m *memEmergencies) Insert(_ context.Context, req *models.EmergencyRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	copied := *req
	m.requests[req.ID] = &copied
	return nil
}

func (m *memEmergencies) FindByID(_ context.Context, id primitive.ObjectID) (*models.EmergencyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *req
	copied.EligibleDonors = append([]models.EligibleDonor(nil), req.EligibleDonors...)
	return &copied, nil
}

func (m *memEmergencies) ListAll(_ context.Context) ([]models.EmergencyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.EmergencyRequest, 0, len(m.requests))
	for _, req := range m.requests {
		out = append(out, *req)
	}
	return out, nil
}

func (m *memEmergencies) ListByOrganisation(_ context.Context, orgID primitive.ObjectID) ([]models.EmergencyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.EmergencyRequest, 0)
	for _, req := range m.requests {
		if req.Organisation == orgID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memEmergencies) ListActive(_ context.Context) ([]models.EmergencyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.EmergencyRequest, 0)
	for _, req := range m.requests {
		if req.Status == models.EmergencyActive {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memEmergencies) SetEligibleDonors(_ context.Context, id primitive.ObjectID, donors []models.EligibleDonor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return ErrNotFound
	}
	req.EligibleDonors = append([]models.EligibleDonor(nil), donors...)
	return nil
}

func (m *memEmergencies) MarkNotified(_ context.Context, id, donorID primitive.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return ErrNotFound
	}
	for i := range req.EligibleDonors {
		if req.EligibleDonors[i].Donor == donorID {
			req.EligibleDonors[i].Notified = true
			req.EligibleDonors[i].NotifiedAt = &at
			return nil
		}
	}
	return ErrNotFound
}

func (m *memEmergencies) SetBroadcastSent(_ context.Context, id primitive.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return ErrNotFound
	}
	req.BroadcastSent = true
	req.BroadcastSentAt = &at
	return nil
}

func (m *memEmergencies) RecordResponse(_ context.Context, id, donorID primitive.ObjectID, response string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return false, ErrNotFound
	}
	for i := range req.EligibleDonors {
		if req.EligibleDonors[i].Donor == donorID {
			req.EligibleDonors[i].Response = response
			req.EligibleDonors[i].ResponseAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (m *memEmergencies) SetStatus(_ context.Context, id primitive.ObjectID, status string, set map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return ErrNotFound
	}
	req.Status = status
	for key, value := range set {
		switch key {
		case "adminNotes":
			req.AdminNotes = value.(string)
		case "fulfilledAt":
			t := value.(time.Time)
			req.FulfilledAt = &t
		case "fulfilmentNotes":
			req.FulfilmentNotes = value.(string)
		case "cancelledAt":
			t := value.(time.Time)
			req.CancelledAt = &t
		case "cancelledBy":
			v := value.(primitive.ObjectID)
			req.CancelledBy = &v
		case "updatedAt":
			req.UpdatedAt = value.(time.Time)
		}
	}
	return nil
}

func (m *memEmergencies) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return ErrNotFound
	}
	delete(m.requests, id)
	return nil
}

func (m *memEmergencies) CountByStatus(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, req := range m.requests {
		counts[req.Status]++
	}
	return counts, nil
}

// memCamps is an in-memory CampStore.
type memCamps struct {
	mu    sync.Mutex
	camps map[primitive.ObjectID]*models.Camp
}

func newMemCamps() *memCamps {
	return &memCamps{camps: make(map[primitive.ObjectID]*models.Camp)}
}

func (m *memCamps) Insert(_ context.Context, camp *models.Camp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if camp.ID.IsZero() {
		camp.ID = primitive.NewObjectID()
	}
	copied := *camp
	m.camps[camp.ID] = &copied
	return nil
}

func (m *memCamps) FindByID(_ context.Context, id primitive.ObjectID) (*models.Camp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	camp, ok := m.camps[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *camp
	return &copied, nil
}

func (m *memCamps) ListByOrganisation(_ context.Context, orgID primitive.ObjectID) ([]models.Camp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Camp, 0)
	for _, camp := range m.camps {
		if camp.Organisation == orgID {
			out = append(out, *camp)
		}
	}
	return out, nil
}

func (m *memCamps) ListByStatus(_ context.Context, status string) ([]models.Camp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Camp, 0)
	for _, camp := range m.camps {
		if camp.Status == status {
			out = append(out, *camp)
		}
	}
	return out, nil
}

func (m *memCamps) ListAll(_ context.Context) ([]models.Camp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Camp, 0, len(m.camps))
	for _, camp := range m.camps {
		out = append(out, *camp)
	}
	return out, nil
}

func (m *memCamps) ListPublished(_ context.Context, city string, group models.BloodGroup) ([]models.Camp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Camp, 0)
	for _, camp := range m.camps {
		if !camp.IsPublished || camp.Status != models.CampApproved || camp.Date.Before(time.Now()) {
			continue
		}
		if city != "" && camp.City != city {
			continue
		}
		if group != "" {
			found := false
			for _, g := range camp.BloodGroups {
				if g == group {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *camp)
	}
	return out, nil
}

func (m *memCamps) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to string, set map[string]interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	camp, ok := m.camps[id]
	if !ok || camp.Status != from {
		return false, nil
	}
	camp.Status = to
	m.applyLocked(camp, set)
	return true, nil
}

func (m *memCamps) Update(_ context.Context, id primitive.ObjectID, set map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	camp, ok := m.camps[id]
	if !ok {
		return ErrNotFound
	}
	m.applyLocked(camp, set)
	return nil
}

func (m *memCamps) applyLocked(camp *models.Camp, set map[string]interface{}) {
	for key, value := range set {
		switch key {
		case "name":
			camp.Name = value.(string)
		case "description":
			camp.Description = value.(string)
		case "location":
			camp.Location = value.(string)
		case "city":
			camp.City = value.(string)
		case "adminNotes":
			camp.AdminNotes = value.(string)
		case "isPublished":
			camp.IsPublished = value.(bool)
		case "publishedAt":
			t := value.(time.Time)
			camp.PublishedAt = &t
		case "publishedBy":
			v := value.(primitive.ObjectID)
			camp.PublishedBy = &v
		case "updatedAt":
			camp.UpdatedAt = value.(time.Time)
		}
	}
}

func (m *memCamps) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.camps[id]; !ok {
		return ErrNotFound
	}
	delete(m.camps, id)
	return nil
}

func (m *memCamps) CountByStatus(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int64)
	for _, camp := range m.camps {
		counts[camp.Status]++
	}
	return counts, nil
}

// memTx serialises transactional sections the way a Mongo session transaction
// would, so concurrent check-then-post sequences cannot interleave.
type memTx struct {
	mu sync.Mutex
}

func (t *memTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

// stubNotifier records outbound mail and can be told to fail for specific
// donors.
type stubNotifier struct {
	mu         sync.Mutex
	failFor    map[primitive.ObjectID]bool
	broadcasts []primitive.ObjectID
	fulfilled  []primitive.ObjectID
	announced  []primitive.ObjectID
	received   int
	decided    int
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{failFor: make(map[primitive.ObjectID]bool)}
}

func (n *stubNotifier) EmergencyBroadcast(donor, _ models.User, _ models.EmergencyRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[donor.ID] {
		return fmt.Errorf("smtp unreachable")
	}
	n.broadcasts = append(n.broadcasts, donor.ID)
	return nil
}

func (n *stubNotifier) EmergencyFulfilled(donor, _ models.User, _ models.EmergencyRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[donor.ID] {
		return fmt.Errorf("smtp unreachable")
	}
	n.fulfilled = append(n.fulfilled, donor.ID)
	return nil
}

func (n *stubNotifier) CampAnnouncement(donor models.User, _ models.Camp) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[donor.ID] {
		return fmt.Errorf("smtp unreachable")
	}
	n.announced = append(n.announced, donor.ID)
	return nil
}

func (n *stubNotifier) DonorRequestReceived(_, _ models.User, _ models.DonorRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.received++
	return nil
}

func (n *stubNotifier) DonorRequestDecided(_, _ models.User, _ models.DonorRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decided++
	return nil
}
