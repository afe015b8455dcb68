package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/requestflow"
	"lifelink-api-server/internal/stock"
)

// HospitalRequestService runs the hospital-initiated blood request workflow:
// a hospital files a request against an organisation's stock, the organisation
// approves or rejects it, the hospital confirms receipt.
type HospitalRequestService struct {
	requests HospitalRequestStore
	ledger   LedgerStore
	users    UserStore
	agg      *stock.Aggregator
	tx       TxRunner
	lowStock *LowStockNotifier
	log      *zap.SugaredLogger
}

func NewHospitalRequestService(requests HospitalRequestStore, ledger LedgerStore, users UserStore, agg *stock.Aggregator, tx TxRunner, lowStock *LowStockNotifier, log *zap.SugaredLogger) *HospitalRequestService {
	return &HospitalRequestService{
		requests: requests,
		ledger:   ledger,
		users:    users,
		agg:      agg,
		tx:       tx,
		lowStock: lowStock,
		log:      log,
	}
}

func newRequestCode(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

// Create files a request. When the organisation has no stock at all for the
// group the request is persisted already rejected, so the hospital gets an
// immediate answer instead of a request that can never be approved.
func (s *HospitalRequestService) Create(ctx context.Context, hospitalID, orgID primitive.ObjectID, group models.BloodGroup, quantity int64, reason string) (*models.HospitalRequest, error) {
	hospital, err := s.users.FindByID(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	if hospital.Role != models.RoleHospital {
		return nil, ErrForbidden
	}
	org, err := s.users.FindByID(ctx, orgID)
	if err != nil || org.Role != models.RoleOrganisation {
		return nil, fmt.Errorf("invalid organisation: %w", ErrInvalidInput)
	}
	if !group.Valid() {
		return nil, fmt.Errorf("invalid blood group %q: %w", group, ErrInvalidInput)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}

	now := time.Now()
	req := &models.HospitalRequest{
		Code:         newRequestCode("REQ"),
		Organisation: org.ID,
		Hospital:     hospital.ID,
		BloodGroup:   group,
		QuantityML:   quantity,
		Status:       requestflow.StatusPending,
		Reason:       reason,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	available, err := s.agg.Available(ctx, org.ID, group)
	if err != nil {
		return nil, err
	}
	if available <= 0 {
		req.Status = requestflow.StatusRejected
		req.RejectedAt = &now
		req.RejectionReason = "no stock available"
	}

	if err := s.requests.Insert(ctx, req); err != nil {
		return nil, err
	}
	s.log.Infow("hospital request created",
		"code", req.Code, "hospital", hospital.ID.Hex(), "org", org.ID.Hex(),
		"group", group, "quantity", quantity, "status", req.Status)
	return req, nil
}

// Approve accepts a pending request and issues the blood. The stock check,
// the OUT ledger entry and the status flip commit atomically, so two
// approvals racing for the same pool cannot both succeed.
func (s *HospitalRequestService) Approve(ctx context.Context, orgID, requestID primitive.ObjectID) (*models.HospitalRequest, error) {
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
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		available, err := s.agg.Available(ctx, req.Organisation, req.BloodGroup)
		if err != nil {
			return err
		}
		if available < req.QuantityML {
			return fmt.Errorf("available %dml, requested %dml: %w", available, req.QuantityML, ErrInsufficientStock)
		}
		entry := &models.LedgerEntry{
			Direction:    models.DirectionOut,
			BloodGroup:   req.BloodGroup,
			QuantityML:   req.QuantityML,
			Organisation: req.Organisation,
			Hospital:     &req.Hospital,
			CreatedAt:    now,
		}
		if err := s.ledger.Insert(ctx, entry); err != nil {
			return err
		}
		ok, err := s.requests.UpdateStatus(ctx, requestID, requestflow.StatusPending, requestflow.StatusApproved, map[string]interface{}{
			"approvedAt": now,
			"approvedBy": orgID,
			"updatedAt":  now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("request no longer pending: %w", ErrInvalidTransition)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lowStock.Notify(ctx, req.Organisation, req.BloodGroup)
	return s.requests.FindByID(ctx, requestID)
}

// Reject declines a pending request. A reason is mandatory so the hospital
// knows why.
func (s *HospitalRequestService) Reject(ctx context.Context, orgID, requestID primitive.ObjectID, reason string) (*models.HospitalRequest, error) {
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
		"rejectedAt":      now,
		"rejectedBy":      orgID,
		"rejectionReason": reason,
		"updatedAt":       now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("request no longer pending: %w", ErrInvalidTransition)
	}
	return s.requests.FindByID(ctx, requestID)
}

// Complete marks an approved request as received by the hospital.
func (s *HospitalRequestService) Complete(ctx context.Context, hospitalID, requestID primitive.ObjectID) (*models.HospitalRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Hospital != hospitalID {
		return nil, ErrForbidden
	}
	if !requestflow.CanTransition(req.Status, requestflow.StatusCompleted) {
		return nil, fmt.Errorf("request is %s: %w", req.Status, ErrInvalidTransition)
	}

	now := time.Now()
	ok, err := s.requests.UpdateStatus(ctx, requestID, requestflow.StatusApproved, requestflow.StatusCompleted, map[string]interface{}{
		"completedAt": now,
		"updatedAt":   now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("request is not approved: %w", ErrInvalidTransition)
	}
	return s.requests.FindByID(ctx, requestID)
}

// Cancel withdraws a request. Hospitals cancel their own pending or approved
// requests; cancelling an approved one does not return blood to the ledger,
// the organisation records a corrective entry if stock physically came back.
func (s *HospitalRequestService) Cancel(ctx context.Context, hospitalID, requestID primitive.ObjectID, reason string) (*models.HospitalRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Hospital != hospitalID {
		return nil, ErrForbidden
	}
	if !requestflow.CanTransition(req.Status, requestflow.StatusCancelled) {
		return nil, fmt.Errorf("request is %s: %w", req.Status, ErrInvalidTransition)
	}

	now := time.Now()
	ok, err := s.requests.UpdateStatus(ctx, requestID, req.Status, requestflow.StatusCancelled, map[string]interface{}{
		"cancelledAt":     now,
		"cancelledBy":     hospitalID,
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

// ListForHospital returns the hospital's own requests, optionally narrowed by
// status.
func (s *HospitalRequestService) ListForHospital(ctx context.Context, hospitalID primitive.ObjectID, status requestflow.Status) ([]models.HospitalRequest, error) {
	if status != "" && !requestflow.Valid(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrInvalidInput)
	}
	return s.requests.ListByHospital(ctx, hospitalID, status)
}

// ListForOrganisation returns the requests filed against the organisation.
func (s *HospitalRequestService) ListForOrganisation(ctx context.Context, orgID primitive.ObjectID, status requestflow.Status) ([]models.HospitalRequest, error) {
	if status != "" && !requestflow.Valid(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrInvalidInput)
	}
	return s.requests.ListByOrganisation(ctx, orgID, status)
}
