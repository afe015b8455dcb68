package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/requestflow"
	"lifelink-api-server/internal/service"
)

// DonorRequestHandler serves the donor-initiated donation offer flow.
type DonorRequestHandler struct {
	Svc *service.DonorRequestService
}

type CreateDonorRequestPayload struct {
	OrganisationID string `json:"organisationId" binding:"required"`
	BloodGroup     string `json:"bloodGroup" binding:"required"`
	QuantityML     int64  `json:"quantity"`
	Notes          string `json:"notes"`
}

// Create files a donation offer with an organisation.
func (h *DonorRequestHandler) Create(c *gin.Context) {
	donorID, ok := currentUserID(c)
	if !ok {
		return
	}
	var payload CreateDonorRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	orgID, err := primitive.ObjectIDFromHex(payload.OrganisationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organisationId"})
		return
	}

	req, err := h.Svc.Create(c.Request.Context(), donorID, orgID, models.BloodGroup(payload.BloodGroup), payload.QuantityML, payload.Notes)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "request": req})
}

type ApproveDonorRequestPayload struct {
	AppointmentDate time.Time `json:"appointmentDate" binding:"required"`
	AppointmentTime string    `json:"appointmentTime" binding:"required"`
	Location        string    `json:"location" binding:"required"`
	Notes           string    `json:"notes"`
}

// Approve schedules the donation appointment.
func (h *DonorRequestHandler) Approve(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload ApproveDonorRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := h.Svc.Approve(c.Request.Context(), orgID, requestID, payload.AppointmentDate, payload.AppointmentTime, payload.Location, payload.Notes)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "request": req})
}

// Reject declines the offer.
func (h *DonorRequestHandler) Reject(c *gin.Context) {
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

type CompleteDonorRequestPayload struct {
	ActualQuantityML int64 `json:"actualQuantity"`
}

// Complete records the collected donation and posts it to the ledger.
func (h *DonorRequestHandler) Complete(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload CompleteDonorRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := h.Svc.Complete(c.Request.Context(), orgID, requestID, payload.ActualQuantityML)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "request": req})
}

// Cancel withdraws the request; donors and organisations have different
// rights, enforced in the service.
func (h *DonorRequestHandler) Cancel(c *gin.Context) {
	actorID, ok := currentUserID(c)
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
	req, err := h.Svc.Cancel(c.Request.Context(), actorID, requestID, payload.Reason)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "request": req})
}

// ListMine returns the donor's own offers.
func (h *DonorRequestHandler) ListMine(c *gin.Context) {
	donorID, ok := currentUserID(c)
	if !ok {
		return
	}
	requests, err := h.Svc.ListForDonor(c.Request.Context(), donorID, requestflow.Status(c.Query("status")))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "requests": requests})
}

// ListIncoming returns the offers made to the organisation.
func (h *DonorRequestHandler) ListIncoming(c *gin.Context) {
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
