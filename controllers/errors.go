package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-booking/services"
	"hotel-booking/utils"
)

const (
	msgVendorUnavailable = "The eZee API is temporarily unavailable. Please try again later."
	msgInsecurePayment   = "Flutterwave payments require HTTPS. Please use a secure connection."
	msgTryAgain          = "Something went wrong. Please try again."
)

// isSecureRequest reports whether the client reached us over TLS, directly
// or through a proxy that says so.
func isSecureRequest(c *gin.Context) bool {
	return c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
}

// respondServiceError maps service errors to status codes and the
// {error, message} body. Unknown errors are logged and answered generically.
func respondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var vendorErr *services.VendorError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": verr.Message,
			"fields":  verr.Fields,
			"step":    int(verr.Step),
		})
	case errors.As(err, &vendorErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "eZee API Error",
			"code":    vendorErr.Code,
			"message": vendorErr.Message,
		})
	case errors.Is(err, services.ErrVendorUnavailable):
		utils.JSONProblem(c, http.StatusBadGateway, "Bad Gateway", msgVendorUnavailable)
	case errors.Is(err, services.ErrSessionNotFound):
		utils.JSONProblem(c, http.StatusNotFound, "session_not_found", "Your booking session has expired. Please start again.")
	case errors.Is(err, services.ErrDraftNotFound):
		utils.JSONProblem(c, http.StatusNotFound, "booking_not_found", "We could not find this booking. Please contact support.")
	case errors.Is(err, services.ErrWrongStep),
		errors.Is(err, services.ErrNoPreviousStep),
		errors.Is(err, services.ErrNoNextStep):
		utils.JSONProblem(c, http.StatusConflict, "invalid_step", err.Error())
	case errors.Is(err, services.ErrRoomUnavailable):
		utils.JSONProblem(c, http.StatusConflict, "room_unavailable", err.Error())
	case errors.Is(err, services.ErrUnknownRoom),
		errors.Is(err, services.ErrUnknownRatePlan),
		errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrMissingConfirmationParams),
		errors.Is(err, services.ErrInvalidTransactionID),
		errors.Is(err, services.ErrInvalidAmount):
		utils.JSONProblem(c, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, services.ErrInsecureTransport):
		utils.JSONProblem(c, http.StatusBadRequest, "insecure_transport", msgInsecurePayment)
	case errors.Is(err, services.ErrPaymentNotConfigured):
		utils.JSONProblem(c, http.StatusServiceUnavailable, "payment_unavailable", "Online payment is not available right now. Please contact us to book.")
	case errors.Is(err, services.ErrCheckoutUnavailable):
		utils.JSONProblem(c, http.StatusBadGateway, "Bad Gateway", "The payment service is temporarily unavailable. Please try again later.")
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.JSONProblem(c, http.StatusInternalServerError, "internal_error", msgTryAgain)
	}
}

// respondBindError answers a request body that failed binding.
func respondBindError(c *gin.Context, err error) {
	body := gin.H{"error": "invalid_payload", "message": "Please check the highlighted fields."}
	if fields := utils.InvalidFields(err); len(fields) > 0 {
		body["fields"] = fields
	}
	c.JSON(http.StatusBadRequest, body)
}
