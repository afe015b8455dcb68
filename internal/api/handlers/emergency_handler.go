package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/service"
)

// EmergencyHandler serves urgent blood calls and donor responses.
type EmergencyHandler struct {
	Svc *service.EmergencyService
}

type CreateEmergencyPayload struct {
	BloodGroup    string `json:"bloodGroup" binding:"required"`
	QuantityML    int64  `json:"quantity" binding:"required"`
	Urgency       string `json:"urgency" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
	Location      string `json:"location" binding:"required"`
	City          string `json:"city" binding:"required"`
	ContactPerson string `json:"contactPerson"`
	ContactPhone  string `json:"contactPhone"`
}

// Create files and broadcasts an emergency call.
func (h *EmergencyHandler) Create(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	var payload CreateEmergencyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.Svc.Create(c.Request.Context(), orgID, &models.EmergencyRequest{
		BloodGroup:    models.BloodGroup(payload.BloodGroup),
		QuantityML:    payload.QuantityML,
		Urgency:       payload.Urgency,
		Reason:        payload.Reason,
		Location:      payload.Location,
		City:          payload.City,
		ContactPerson: payload.ContactPerson,
		ContactPhone:  payload.ContactPhone,
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "emergency": req})
}

// ListMine returns the organisation's own emergencies.
func (h *EmergencyHandler) ListMine(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	requests, err := h.Svc.ListForOrganisation(c.Request.Context(), orgID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "emergencies": requests})
}

// ListForDonor returns active calls the donor can answer.
func (h *EmergencyHandler) ListForDonor(c *gin.Context) {
	donorID, ok := currentUserID(c)
	if !ok {
		return
	}
	requests, err := h.Svc.ListForDonor(c.Request.Context(), donorID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "emergencies": requests})
}

// ListAll is the admin view of every emergency.
func (h *EmergencyHandler) ListAll(c *gin.Context) {
	requests, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "emergencies": requests})
}

type RespondPayload struct {
	Response string `json:"response" binding:"required"`
}

// Respond records the donor's accept/decline.
func (h *EmergencyHandler) Respond(c *gin.Context) {
	donorID, ok := currentUserID(c)
	if !ok {
		return
	}
	emergencyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload RespondPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := h.Svc.Respond(c.Request.Context(), donorID, emergencyID, payload.Response)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "emergency": req})
}

type NotesPayload struct {
	Notes string `json:"notes"`
}

// Fulfil closes the organisation's emergency.
func (h *EmergencyHandler) Fulfil(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	emergencyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload NotesPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := h.Svc.Fulfil(c.Request.Context(), orgID, emergencyID, payload.Notes)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "emergency": req})
}

type AdminStatusPayload struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// SetStatus lets an admin cancel or block an emergency.
func (h *EmergencyHandler) SetStatus(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	emergencyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload AdminStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req, err := h.Svc.AdminSetStatus(c.Request.Context(), adminID, emergencyID, payload.Status, payload.Notes)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "emergency": req})
}

// Delete removes the organisation's own emergency.
func (h *EmergencyHandler) Delete(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	emergencyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), orgID, emergencyID); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Stats returns counts per status for the admin dashboard.
func (h *EmergencyHandler) Stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "stats": stats})
}
