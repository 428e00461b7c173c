package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/adcrafted/adspace-service/internal/application/service"
)

// AdSpaceHandler handles HTTP requests for AdSpace operations
type AdSpaceHandler struct {
	adSpaces  *service.AdSpaceService
	validator *validator.Validate
}

// NewAdSpaceHandler creates a new AdSpaceHandler
func NewAdSpaceHandler(adSpaces *service.AdSpaceService) *AdSpaceHandler {
	return &AdSpaceHandler{
		adSpaces:  adSpaces,
		validator: validator.New(),
	}
}

// adSpaceParams validates the AdSpace path parameter. Identifiers are always
// generated UUIDs, so anything else can be rejected before touching storage.
type adSpaceParams struct {
	AdSpaceID string `validate:"required,uuid4"`
}

func (h *AdSpaceHandler) adSpaceID(c *gin.Context) (string, bool) {
	id := c.Param("adspace_id")
	if err := h.validator.Struct(adSpaceParams{AdSpaceID: id}); err != nil {
		respondBadRequest(c, "AdSpace ID must be a UUID", err.Error())
		return "", false
	}
	return id, true
}

// CreateAdSpace handles POST /api/adspace
func (h *AdSpaceHandler) CreateAdSpace(c *gin.Context) {
	attrs := map[string]interface{}{}
	if err := c.ShouldBindJSON(&attrs); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	id, err := h.adSpaces.Create(c.Request.Context(), attrs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"AdSpaceID": id})
}

// GetAdSpace handles GET /api/adspace/:adspace_id
func (h *AdSpaceHandler) GetAdSpace(c *gin.Context) {
	id, ok := h.adSpaceID(c)
	if !ok {
		return
	}

	adSpace, err := h.adSpaces.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adSpace)
}

// GetAllAdSpaces handles GET /api/adspace
func (h *AdSpaceHandler) GetAllAdSpaces(c *gin.Context) {
	list, err := h.adSpaces.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateAdSpace handles PUT /api/adspace/:adspace_id
func (h *AdSpaceHandler) UpdateAdSpace(c *gin.Context) {
	id, ok := h.adSpaceID(c)
	if !ok {
		return
	}
	attrs := map[string]interface{}{}
	if err := c.ShouldBindJSON(&attrs); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	if err := h.adSpaces.Update(c.Request.Context(), id, attrs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"AdSpaceID": id})
}

// DeleteAdSpace handles DELETE /api/adspace/:adspace_id
func (h *AdSpaceHandler) DeleteAdSpace(c *gin.Context) {
	id, ok := h.adSpaceID(c)
	if !ok {
		return
	}

	if err := h.adSpaces.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *AdSpaceHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "adspace-api",
	})
}

// ReadinessCheck handles GET /ready
func (h *AdSpaceHandler) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": "adspace-api",
	})
}

// RegisterRoutes registers all AdSpace-related routes
func (h *AdSpaceHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)

	api := router.Group("/api")
	{
		api.POST("/adspace", h.CreateAdSpace)
		api.GET("/adspace", h.GetAllAdSpaces)
		api.GET("/adspace/:adspace_id", h.GetAdSpace)
		api.PUT("/adspace/:adspace_id", h.UpdateAdSpace)
		api.DELETE("/adspace/:adspace_id", h.DeleteAdSpace)
	}
}
