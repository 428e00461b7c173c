package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adcrafted/adspace-service/internal/domain/inventory"
)

// ErrorResponse is the failure envelope. Kind is a stable machine-checkable
// tag; the HTTP status code is the only transport-level signal.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Details string `json:"details,omitempty"`
}

// Error kinds carried in ErrorResponse.Kind.
const (
	KindBadRequest       = "bad_request"
	KindNotFound         = "not_found"
	KindInvalidParent    = "invalid_parent"
	KindInvalidImage     = "invalid_image_payload"
	KindInvalidAttribute = "invalid_attribute"
	KindPartialDelete    = "partial_delete_failure"
	KindStoreError       = "store_error"
)

// respondError maps a service error onto the HTTP status and error kind.
func respondError(c *gin.Context, err error) {
	var partial *inventory.PartialDeleteError
	var storeErr *inventory.StoreError

	switch {
	case errors.Is(err, inventory.ErrAdSpaceNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "AdSpace does not exist",
			Kind:  KindNotFound,
		})
	case errors.Is(err, inventory.ErrAdNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No such ad",
			Kind:  KindNotFound,
		})
	case errors.Is(err, inventory.ErrInvalidParent):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "AdSpace does not exist",
			Kind:  KindInvalidParent,
		})
	case errors.Is(err, inventory.ErrInvalidImagePayload):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Image payload could not be decoded",
			Kind:    KindInvalidImage,
			Details: err.Error(),
		})
	case errors.Is(err, inventory.ErrInvalidAttributeValue):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Unsupported attribute value",
			Kind:    KindInvalidAttribute,
			Details: err.Error(),
		})
	case errors.As(err, &partial):
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "AdSpace deleted but its ads could not be cleaned up",
			Kind:    KindPartialDelete,
			Details: partial.Error(),
		})
	case errors.As(err, &storeErr):
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Storage operation failed",
			Kind:    KindStoreError,
			Details: storeErr.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal error",
			Kind:    KindStoreError,
			Details: err.Error(),
		})
	}
}

func respondBadRequest(c *gin.Context, msg, details string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   msg,
		Kind:    KindBadRequest,
		Details: details,
	})
}
