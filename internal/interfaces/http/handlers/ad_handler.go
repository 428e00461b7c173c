package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/adcrafted/adspace-service/internal/application/service"
)

// AdHandler handles HTTP requests for Ad operations
type AdHandler struct {
	ads       *service.AdService
	validator *validator.Validate
}

// NewAdHandler creates a new AdHandler
func NewAdHandler(ads *service.AdService) *AdHandler {
	return &AdHandler{
		ads:       ads,
		validator: validator.New(),
	}
}

func (h *AdHandler) adSpaceID(c *gin.Context) (string, bool) {
	id := c.Param("adspace_id")
	if err := h.validator.Struct(adSpaceParams{AdSpaceID: id}); err != nil {
		respondBadRequest(c, "AdSpace ID must be a UUID", err.Error())
		return "", false
	}
	return id, true
}

func (h *AdHandler) adID(c *gin.Context) (int64, bool) {
	raw := c.Param("ad_id")
	adID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || adID < 0 {
		respondBadRequest(c, "Ad ID must be a non-negative integer", raw)
		return 0, false
	}
	return adID, true
}

// CreateAd handles POST /api/adspace/:adspace_id/ad
func (h *AdHandler) CreateAd(c *gin.Context) {
	adSpaceID, ok := h.adSpaceID(c)
	if !ok {
		return
	}
	attrs := map[string]interface{}{}
	if err := c.ShouldBindJSON(&attrs); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	result, err := h.ads.Create(c.Request.Context(), adSpaceID, attrs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetAd handles GET /api/adspace/:adspace_id/ad/:ad_id. The literal segment
// "random" selects a uniformly random ad instead of a specific one.
func (h *AdHandler) GetAd(c *gin.Context) {
	adSpaceID, ok := h.adSpaceID(c)
	if !ok {
		return
	}

	if c.Param("ad_id") == "random" {
		ad, err := h.ads.GetRandom(c.Request.Context(), adSpaceID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ad)
		return
	}

	adID, ok := h.adID(c)
	if !ok {
		return
	}
	ad, err := h.ads.Get(c.Request.Context(), adSpaceID, adID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

// GetAllAds handles GET /api/adspace/:adspace_id/ad
func (h *AdHandler) GetAllAds(c *gin.Context) {
	adSpaceID, ok := h.adSpaceID(c)
	if !ok {
		return
	}

	list, err := h.ads.GetAll(c.Request.Context(), adSpaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateAd handles PUT /api/adspace/:adspace_id/ad/:ad_id
func (h *AdHandler) UpdateAd(c *gin.Context) {
	adSpaceID, ok := h.adSpaceID(c)
	if !ok {
		return
	}
	adID, ok := h.adID(c)
	if !ok {
		return
	}
	attrs := map[string]interface{}{}
	if err := c.ShouldBindJSON(&attrs); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	if err := h.ads.Update(c.Request.Context(), adSpaceID, adID, attrs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"AdSpaceID": adSpaceID, "AdID": adID})
}

// DeleteAd handles DELETE /api/adspace/:adspace_id/ad/:ad_id
func (h *AdHandler) DeleteAd(c *gin.Context) {
	adSpaceID, ok := h.adSpaceID(c)
	if !ok {
		return
	}
	adID, ok := h.adID(c)
	if !ok {
		return
	}

	if err := h.ads.Delete(c.Request.Context(), adSpaceID, adID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers all Ad-related routes
func (h *AdHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/adspace/:adspace_id/ad", h.CreateAd)
		api.GET("/adspace/:adspace_id/ad", h.GetAllAds)
		api.GET("/adspace/:adspace_id/ad/:ad_id", h.GetAd)
		api.PUT("/adspace/:adspace_id/ad/:ad_id", h.UpdateAd)
		api.DELETE("/adspace/:adspace_id/ad/:ad_id", h.DeleteAd)
	}
}
