package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/service"
)

type InventoryHandler struct {
	Svc *service.InventoryService
}

type DonateRequest struct {
	OrganisationEmail string                  `json:"organisationEmail" binding:"required,email"`
	BloodGroup        string                  `json:"bloodGroup" binding:"required"`
	Eligibility       models.DonorEligibility `json:"eligibility"`
	Contact           string                  `json:"contact"`
}

// Donate records a walk-in donation initiated by the donor.
func (h *InventoryHandler) Donate(c *gin.Context) {
	donorID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details := models.DonorDetails{Contact: req.Contact, Eligibility: req.Eligibility}
	entry, err := h.Svc.RecordDonorDonation(c.Request.Context(), donorID, req.OrganisationEmail, models.BloodGroup(req.BloodGroup), details)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "entry": entry})
}

type RecordInRequest struct {
	DonorEmail string `json:"donorEmail" binding:"required,email"`
	BloodGroup string `json:"bloodGroup" binding:"required"`
}

// RecordIn posts an IN entry on behalf of a donor at the counter.
func (h *InventoryHandler) RecordIn(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req RecordInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.Svc.RecordOrganisationIn(c.Request.Context(), orgID, req.DonorEmail, models.BloodGroup(req.BloodGroup))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "entry": entry})
}

type RecordIssueRequest struct {
	HospitalID    string `json:"hospitalId"`
	HospitalEmail string `json:"hospitalEmail"`
	BloodGroup    string `json:"bloodGroup" binding:"required"`
	QuantityML    int64  `json:"quantity" binding:"required"`
}

// RecordIssue posts a stock-gated OUT entry to a hospital.
func (h *InventoryHandler) RecordIssue(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req RecordIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var hospitalID *primitive.ObjectID
	if req.HospitalID != "" {
		id, err := primitive.ObjectIDFromHex(req.HospitalID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hospitalId"})
			return
		}
		hospitalID = &id
	}

	entry, err := h.Svc.RecordIssue(c.Request.Context(), orgID, hospitalID, req.HospitalEmail, models.BloodGroup(req.BloodGroup), req.QuantityML)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "entry": entry})
}

// Ledger lists the caller's visible ledger entries. ?limit=N caps the result;
// dashboards use limit=3 for the recent-activity widget.
func (h *InventoryHandler) Ledger(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.Svc.Ledger(c.Request.Context(), userID, limit)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "entries": entries})
}

// StockSummary returns the per-group dashboard. ?low=true keeps only the
// groups under their minimum.
func (h *InventoryHandler) StockSummary(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	rows, err := h.Svc.StockSummary(c.Request.Context(), orgID, c.Query("low") == "true")
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "stock": rows})
}

// Thresholds returns the organisation's effective minimums.
func (h *InventoryHandler) Thresholds(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	thresholds, err := h.Svc.Thresholds(c.Request.Context(), orgID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "thresholds": thresholds})
}

type UpdateThresholdsRequest struct {
	Thresholds map[string]int64 `json:"thresholds" binding:"required"`
}

// UpdateThresholds replaces the organisation's per-group overrides.
func (h *InventoryHandler) UpdateThresholds(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req UpdateThresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Svc.UpdateThresholds(c.Request.Context(), orgID, req.Thresholds); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// DonorStats lists every donor who donated to the organisation.
func (h *InventoryHandler) DonorStats(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	rows, err := h.Svc.DonorStats(c.Request.Context(), orgID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "donors": rows})
}

// HospitalStats lists the hospitals the organisation issued blood to.
func (h *InventoryHandler) HospitalStats(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	rows, err := h.Svc.HospitalStats(c.Request.Context(), orgID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "hospitals": rows})
}

// HospitalIssueHistory lists OUT entries issued to one hospital.
func (h *InventoryHandler) HospitalIssueHistory(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	hospitalID, ok := pathID(c, "id")
	if !ok {
		return
	}
	entries, err := h.Svc.HospitalIssueHistory(c.Request.Context(), orgID, hospitalID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "entries": entries})
}

// Analytics returns IN/OUT/available per blood group.
func (h *InventoryHandler) Analytics(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rows, err := h.Svc.BloodGroupAnalytics(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "analytics": rows})
}

// Directory lists every organisation with availability and needed groups.
func (h *InventoryHandler) Directory(c *gin.Context) {
	overviews, err := h.Svc.OrganisationDirectory(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "organisations": overviews})
}

// ConnectHospital adds a hospital to the organisation's partner list.
func (h *InventoryHandler) ConnectHospital(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	hospitalID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.ConnectHospital(c.Request.Context(), orgID, hospitalID); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
