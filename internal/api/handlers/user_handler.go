package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifelink-api-server/internal/auth"
	"lifelink-api-server/internal/models"
	"lifelink-api-server/internal/service"
)

type UserHandler struct {
	Users service.UserStore
	Log   *zap.SugaredLogger
}

type RegisterRequest struct {
	Role             string  `json:"role" binding:"required"`
	Email            string  `json:"email" binding:"required,email"`
	Password         string  `json:"password" binding:"required,min=8"`
	Name             string  `json:"name"`
	OrganisationName string  `json:"organisationName"`
	HospitalName     string  `json:"hospitalName"`
	Website          string  `json:"website"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	Phone            string  `json:"phone"`
	Age              int     `json:"age"`
	Gender           string  `json:"gender"`
	Weight           float64 `json:"weight"`
	BloodGroup       string  `json:"bloodGroup"`
}

// Register creates an account for any of the four roles.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Role {
	case models.RoleDonor:
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required for donors"})
			return
		}
		if !models.BloodGroup(req.BloodGroup).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "a valid blood group is required for donors"})
			return
		}
	case models.RoleOrganisation:
		if req.OrganisationName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "organisationName is required"})
			return
		}
	case models.RoleHospital:
		if req.HospitalName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hospitalName is required"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be donor, organisation or hospital"})
		return
	}

	if _, err := h.Users.FindByEmail(c.Request.Context(), req.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	now := time.Now()
	user := &models.User{
		Role:             req.Role,
		Name:             req.Name,
		OrganisationName: req.OrganisationName,
		HospitalName:     req.HospitalName,
		Email:            req.Email,
		Password:         hashed,
		Website:          req.Website,
		Address:          req.Address,
		City:             req.City,
		Phone:            req.Phone,
		Age:              req.Age,
		Gender:           req.Gender,
		Weight:           req.Weight,
		BloodGroup:       models.BloodGroup(req.BloodGroup),
		Status:           models.UserActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := h.Users.Insert(c.Request.Context(), user); err != nil {
		h.Log.Errorw("user insert failed", "email", req.Email, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"user":   user,
	})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// Login verifies credentials for the given role and issues a JWT.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Users.FindByEmailAndRole(c.Request.Context(), req.Email, req.Role)
	if err != nil || !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if user.Status == models.UserBlocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "This account has been blocked"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		h.Log.Errorw("token generation failed", "user", user.ID.Hex(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
		"user":   user,
	})
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "user": user})
}
