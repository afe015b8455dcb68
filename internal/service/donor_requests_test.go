package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/requestflow"
)

type donorFlowFixture struct {
	svc      *DonorRequestService
	ledger   *memLedger
	notifier *stubNotifier
	org      *models.User
	donor    *models.User
}

func newDonorFlowFixture(t *testing.T) *donorFlowFixture {
	t.Helper()
	org := &models.User{Role: models.RoleOrganisation, OrganisationName: "City Blood Bank", Email: "bank@example.com"}
	donor := &models.User{
		Role:          models.RoleDonor,
		Name:          "Asha",
		Email:         "asha@example.com",
		EmailVerified: true,
		Age:           30,
		Weight:        60,
		BloodGroup:    models.GroupBPos,
	}
	users := newMemUsers(org, donor)
	ledger := &memLedger{}
	notifier := newStubNotifier()
	svc := NewDonorRequestService(newMemDonorRequests(), ledger, users, &memTx{}, notifier, testLogger())
	return &donorFlowFixture{svc: svc, ledger: ledger, notifier: notifier, org: org, donor: donor}
}

func TestDonorRequestCreate(t *testing.T) {
	f := newDonorFlowFixture(t)

	req, err := f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 0, "first time")
	require.NoError(t, err)
	assert.Equal(t, requestflow.StatusPending, req.Status)
	assert.Equal(t, int64(0), req.QuantityML)
	assert.Equal(t, 1, f.notifier.received)
}

func TestDonorRequestGroupMustMatchProfile(t *testing.T) {
	f := newDonorFlowFixture(t)

	_, err := f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupAPos, 0, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDonorRequestQuantityBounds(t *testing.T) {
	f := newDonorFlowFixture(t)

	_, err := f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 501, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, -1, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 500, "")
	assert.NoError(t, err)
}

func TestDonorRequestDuplicateGuard(t *testing.T) {
	f := newDonorFlowFixture(t)

	first, err := f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 0, "")
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 0, "")
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	// approval keeps the request open, still no second one
	_, err = f.svc.Approve(context.Background(), f.org.ID, first.ID, time.Now().Add(48*time.Hour), "10:00", "Main Centre", "")
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 0, "")
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	// a closed request frees the slot
	_, err = f.svc.Cancel(context.Background(), f.org.ID, first.ID, "no slots")
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 0, "")
	assert.NoError(t, err)
}

func TestDonorRequestApproveNeedsAppointment(t *testing.T) {
	f := newDonorFlowFixture(t)
	req, err := f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 0, "")
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), f.org.ID, req.ID, time.Time{}, "10:00", "Main Centre", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.Approve(context.Background(), f.org.ID, req.ID, time.Now().Add(24*time.Hour), "", "Main Centre", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	approved, err := f.svc.Approve(context.Background(), f.org.ID, req.ID, time.Now().Add(24*time.Hour), "10:00", "Main Centre", "bring id")
	require.NoError(t, err)
	assert.Equal(t, requestflow.StatusApproved, approved.Status)
	assert.Equal(t, "Main Centre", approved.Location)
	assert.Equal(t, 1, f.notifier.decided)
}

func TestDonorRequestCompletePostsInEntry(t *testing.T) {
	f := newDonorFlowFixture(t)
	req, err := f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 0, "")
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.org.ID, req.ID, time.Now().Add(24*time.Hour), "10:00", "Main Centre", "")
	require.NoError(t, err)

	done, err := f.svc.Complete(context.Background(), f.org.ID, req.ID, 420)
	require.NoError(t, err)
	assert.Equal(t, requestflow.StatusCompleted, done.Status)
	require.NotNil(t, done.DonationRecord)

	entries, err := f.ledger.List(context.Background(), LedgerFilter{Donor: &f.donor.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.DirectionIn, entries[0].Direction)
	assert.Equal(t, int64(420), entries[0].QuantityML)
	assert.Equal(t, *done.DonationRecord, entries[0].ID)
}

func TestDonorRequestCompleteFallsBackToStandardDraw(t *testing.T) {
	f := newDonorFlowFixture(t)
	req, err := f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 0, "")
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.org.ID, req.ID, time.Now().Add(24*time.Hour), "10:00", "Main Centre", "")
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), f.org.ID, req.ID, 0)
	require.NoError(t, err)

	entries, err := f.ledger.List(context.Background(), LedgerFilter{Donor: &f.donor.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(350), entries[0].QuantityML)
}

func TestDonorRequestCompleteUsesRequestedQuantity(t *testing.T) {
	f := newDonorFlowFixture(t)
	req, err := f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 450, "")
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.org.ID, req.ID, time.Now().Add(24*time.Hour), "10:00", "Main Centre", "")
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), f.org.ID, req.ID, 0)
	require.NoError(t, err)

	entries, err := f.ledger.List(context.Background(), LedgerFilter{Donor: &f.donor.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(450), entries[0].QuantityML)
}

func TestDonorRequestConcurrentCompletionsPostOnce(t *testing.T) {
	f := newDonorFlowFixture(t)
	req, err := f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 0, "")
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.org.ID, req.ID, time.Now().Add(24*time.Hour), "10:00", "Main Centre", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Complete(context.Background(), f.org.ID, req.ID, 300)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one completion may record the donation")
	assert.Equal(t, 1, f.ledger.count(models.DirectionIn), "one completed donation posts exactly one IN entry")
}

func TestDonorRequestCancelRules(t *testing.T) {
	f := newDonorFlowFixture(t)
	req, err := f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 0, "")
	require.NoError(t, err)

	// donors cancel their own pending requests
	cancelled, err := f.svc.Cancel(context.Background(), f.donor.ID, req.ID, "travelling")
	require.NoError(t, err)
	assert.Equal(t, requestflow.StatusCancelled, cancelled.Status)

	// once approved, only the organisation may cancel
	req, err = f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 0, "")
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.org.ID, req.ID, time.Now().Add(24*time.Hour), "10:00", "Main Centre", "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), f.donor.ID, req.ID, "travelling")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	cancelled, err = f.svc.Cancel(context.Background(), f.org.ID, req.ID, "centre closed")
	require.NoError(t, err)
	assert.Equal(t, requestflow.StatusCancelled, cancelled.Status)
}

func TestDonorRequestRejectRequiresReason(t *testing.T) {
	f := newDonorFlowFixture(t)
	req, err := f.svc.Create(context.Background(), f.donor.ID, f.org.ID, models.GroupBPos, 0, "")
	require.NoError(t, err)

	_, err = f.svc.Reject(context.Background(), f.org.ID, req.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	rejected, err := f.svc.Reject(context.Background(), f.org.ID, req.ID, "recent donation on file")
	require.NoError(t, err)
	assert.Equal(t, requestflow.StatusRejected, rejected.Status)
	assert.Equal(t, "recent donation on file", rejected.ResponseNotes)
}
