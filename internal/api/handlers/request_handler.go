package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/requestflow"
	"lifelink-api-server/internal/service"
)

// RequestHandler serves the hospital-initiated blood request flow.
type RequestHandler struct {
	Svc *service.HospitalRequestService
}

type CreateRequestPayload struct {
	OrganisationID string `json:"organisationId" binding:"required"`
	BloodGroup     string `json:"bloodGroup" binding:"required"`
	QuantityML     int64  `json:"quantity" binding:"required"`
	Reason         string `json:"reason"`
}

// Create files a blood request against an organisation.
func (h *RequestHandler) Create(c *gin.Context) {
	hospitalID, ok := currentUserID(c)
	if !ok {
		return
	}
	var payload CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	orgID, err := primitive.ObjectIDFromHex(payload.OrganisationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organisationId"})
		return
	}

	req, err := h.Svc.Create(c.Request.Context(), hospitalID, orgID, models.BloodGroup(payload.BloodGroup), payload.QuantityML, payload.Reason)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "request": req})
}

// Approve accepts a pending request and issues the stock.
func (h *RequestHandler) Approve(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, err := h.Svc.Approve(c.Request.Context(), orgID, requestID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "request": req})
}

type ReasonPayload struct {
	Reason string `json:"reason"`
}

// Reject declines a pending request.
func (h *RequestHandler) Reject(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload ReasonPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := h.Svc.Reject(c.Request.Context(), orgID, requestID, payload.Reason)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "request": req})
}

// Complete marks an approved request as received.
func (h *RequestHandler) Complete(c *gin.Context) {
	hospitalID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, err := h.Svc.Complete(c.Request.Context(), hospitalID, requestID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "request": req})
}

// Cancel withdraws the hospital's own request.
func (h *RequestHandler) Cancel(c *gin.Context) {
	hospitalID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload ReasonPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := h.Svc.Cancel(c.Request.Context(), hospitalID, requestID, payload.Reason)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "request": req})
}

// ListMine returns the hospital's own requests, ?status= optional.
func (h *RequestHandler) ListMine(c *gin.Context) {
	hospitalID, ok := currentUserID(c)
	if !ok {
		return
	}
	requests, err := h.Svc.ListForHospital(c.Request.Context(), hospitalID, requestflow.Status(c.Query("status")))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "requests": requests})
}

// ListIncoming returns the requests filed against the organisation.
func (h *RequestHandler) ListIncoming(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	requests, err := h.Svc.ListForOrganisation(c.Request.Context(), orgID, requestflow.Status(c.Query("status")))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "requests": requests})
}
