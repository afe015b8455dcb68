package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/service"
)

// CampHandler serves donation camp management and the donor-facing listing.
type CampHandler struct {
	Svc *service.CampService
}

type CreateCampPayload struct {
	Name           string    `json:"name" binding:"required"`
	Description    string    `json:"description"`
	Date           time.Time `json:"date" binding:"required"`
	StartTime      string    `json:"startTime" binding:"required"`
	EndTime        string    `json:"endTime" binding:"required"`
	Location       string    `json:"location" binding:"required"`
	City           string    `json:"city" binding:"required"`
	BloodGroups    []string  `json:"bloodGroups" binding:"required"`
	ExpectedDonors int       `json:"expectedDonors"`
	ContactPerson  string    `json:"contactPerson"`
	ContactPhone   string    `json:"contactPhone"`
	ContactEmail   string    `json:"contactEmail"`
	Facilities     []string  `json:"facilities"`
	Requirements   []string  `json:"requirements"`
}

// Create proposes a camp for admin approval.
func (h *CampHandler) Create(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	var payload CreateCampPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	groups := make([]models.BloodGroup, 0, len(payload.BloodGroups))
	for _, g := range payload.BloodGroups {
		groups = append(groups, models.BloodGroup(g))
	}
	camp, err := h.Svc.Create(c.Request.Context(), orgID, &models.Camp{
		Name:           payload.Name,
		Description:    payload.Description,
		Date:           payload.Date,
		StartTime:      payload.StartTime,
		EndTime:        payload.EndTime,
		Location:       payload.Location,
		City:           payload.City,
		BloodGroups:    groups,
		ExpectedDonors: payload.ExpectedDonors,
		ContactPerson:  payload.ContactPerson,
		ContactPhone:   payload.ContactPhone,
		ContactEmail:   payload.ContactEmail,
		Facilities:     payload.Facilities,
		Requirements:   payload.Requirements,
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "camp": camp})
}

// Approve publishes a pending camp and announces it to matching donors.
func (h *CampHandler) Approve(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	campID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload NotesPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	camp, err := h.Svc.Approve(c.Request.Context(), adminID, campID, payload.Notes)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "camp": camp})
}

// Reject declines a pending camp.
func (h *CampHandler) Reject(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	campID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload ReasonPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	camp, err := h.Svc.Reject(c.Request.Context(), adminID, campID, payload.Reason)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "camp": camp})
}

// Update edits the organisation's own camp.
func (h *CampHandler) Update(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	campID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var set map[string]interface{}
	if err := c.ShouldBindJSON(&set); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	camp, err := h.Svc.Update(c.Request.Context(), orgID, campID, set)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "camp": camp})
}

// Delete removes a still-pending camp.
func (h *CampHandler) Delete(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	campID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), orgID, campID); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// ListPublished is the donor-facing listing of upcoming camps. Optional
// ?city= and ?bloodGroup= filters.
func (h *CampHandler) ListPublished(c *gin.Context) {
	camps, err := h.Svc.ListPublished(c.Request.Context(), c.Query("city"), models.BloodGroup(c.Query("bloodGroup")))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "camps": camps})
}

// ListMine returns the organisation's own camps.
func (h *CampHandler) ListMine(c *gin.Context) {
	orgID, ok := currentUserID(c)
	if !ok {
		return
	}
	camps, err := h.Svc.ListForOrganisation(c.Request.Context(), orgID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "camps": camps})
}

// ListAll is the admin view, ?status= optional.
func (h *CampHandler) ListAll(c *gin.Context) {
	camps, err := h.Svc.ListAll(c.Request.Context(), c.Query("status"))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "camps": camps})
}

// Stats returns camp counts per status.
func (h *CampHandler) Stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "stats": stats})
}
