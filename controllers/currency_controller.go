package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-booking/services"
	"hotel-booking/utils"
)

type CurrencyController struct {
	currency *services.CurrencyService
}

func NewCurrencyController(currency *services.CurrencyService) *CurrencyController {
	return &CurrencyController{currency: currency}
}

func (cc *CurrencyController) GetRate(c *gin.Context) {
	c.JSON(http.StatusOK, cc.currency.Snapshot())
}

// Convert handles GET /api/currency/convert?amount=24050&locale=en-US.
func (cc *CurrencyController) Convert(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil {
		utils.JSONProblem(c, http.StatusBadRequest, "invalid_amount", "amount must be a number.")
		return
	}
	locale := c.DefaultQuery("locale", "en-US")
	usd := cc.currency.Convert(amount)

	c.JSON(http.StatusOK, gin.H{
		"amount":    amount,
		"currency":  "KES",
		"converted": usd,
		"rate":      cc.currency.Rate(),
		"formatted": gin.H{
			"KES": utils.FormatMoney(amount, "KES", "en-KE"),
			"USD": utils.FormatMoney(usd, "USD", locale),
		},
	})
}
