package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-booking/services"
	"hotel-booking/utils"
)

type confirmPayload struct {
	TxRef         string `json:"txRef" form:"tx_ref"`
	TransactionID string `json:"transactionId" form:"transaction_id"`
	Status        string `json:"status" form:"status"`
}

type PaymentController struct {
	payments      *services.PaymentService
	confirmations *services.ConfirmationService
}

func NewPaymentController(payments *services.PaymentService, confirmations *services.ConfirmationService) *PaymentController {
	return &PaymentController{payments: payments, confirmations: confirmations}
}

// VerifyPayment handles GET /api/verify-payment/:transactionId by passing the
// gateway's answer through.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	status, body, err := pc.payments.LookupTransaction(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		log.Printf("❌ verify payment %s: %v", c.Param("transactionId"), err)
		utils.JSONProblem(c, http.StatusInternalServerError, "Failed to verify payment", "We could not verify this payment. Please contact support.")
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

// ConfirmBooking handles POST /api/bookings/confirm. Parameters come from the
// JSON body or from the redirect query (tx_ref, transaction_id, status).
func (pc *PaymentController) ConfirmBooking(c *gin.Context) {
	var p confirmPayload
	if err := c.ShouldBindQuery(&p); err != nil {
		respondBindError(c, err)
		return
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&p); err != nil {
			respondBindError(c, err)
			return
		}
	}

	result, err := pc.confirmations.Confirm(c.Request.Context(), p.TxRef, p.TransactionID, p.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	code := http.StatusOK
	switch result.Outcome {
	case services.OutcomePendingManual, services.OutcomeInProgress:
		code = http.StatusAccepted
	case services.OutcomePaymentFailed:
		code = http.StatusPaymentRequired
	}
	c.JSON(code, result)
}

// CheckoutScript handles GET /api/payments/checkout.js.
func (pc *PaymentController) CheckoutScript(c *gin.Context) {
	script, err := pc.payments.CheckoutScript(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", script)
}
