package controllers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-booking/services"
	"hotel-booking/utils"
)

const maxEzeeBody = 1 << 20

// VendorPoster forwards raw XML to the PMS.
type VendorPoster interface {
	Post(ctx context.Context, creds services.EzeeCredentials, body []byte) ([]byte, error)
}

// EzeeController relays booking engine XML to the PMS. It holds no
// per-request state.
type EzeeController struct {
	vendor       VendorPoster
	allowedHosts map[string]bool
}

func NewEzeeController(vendor VendorPoster, allowedHosts []string) *EzeeController {
	hosts := make(map[string]bool, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts[h] = true
		}
	}
	return &EzeeController{vendor: vendor, allowedHosts: hosts}
}

func (ec *EzeeController) hostAllowed(u *url.URL) bool {
	if u.Scheme != "https" && u.Scheme != "http" {
		return false
	}
	if len(ec.allowedHosts) == 0 {
		return true
	}
	return ec.allowedHosts[strings.ToLower(u.Hostname())]
}

// ProxyRequest handles POST /api/ezee.
func (ec *EzeeController) ProxyRequest(c *gin.Context) {
	creds := services.EzeeCredentials{
		URL:       strings.TrimSpace(c.GetHeader("X-Ezee-Url")),
		HotelCode: strings.TrimSpace(c.GetHeader("X-Ezee-Hotel")),
		AuthCode:  strings.TrimSpace(c.GetHeader("X-Ezee-Auth")),
	}
	if creds.URL == "" || creds.HotelCode == "" || creds.AuthCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required headers",
			"details": gin.H{
				"ezeeUrl":   creds.URL != "",
				"hotelCode": creds.HotelCode != "",
				"authCode":  creds.AuthCode != "",
			},
		})
		return
	}

	target, err := url.Parse(creds.URL)
	if err != nil || !ec.hostAllowed(target) {
		utils.JSONProblem(c, http.StatusBadRequest, "Invalid eZee URL", "The eZee endpoint is not allowed.")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxEzeeBody))
	if err != nil {
		utils.JSONProblem(c, http.StatusBadRequest, "Invalid request body", "The request body could not be read.")
		return
	}

	resp, err := ec.vendor.Post(c.Request.Context(), creds, body)
	if err != nil {
		if errors.Is(err, services.ErrVendorUnavailable) {
			log.Printf("⚠️  eZee unavailable: %v", err)
			utils.JSONProblem(c, http.StatusBadGateway, "Bad Gateway", msgVendorUnavailable)
			return
		}
		log.Printf("❌ eZee proxy error: %v", err)
		utils.JSONProblem(c, http.StatusInternalServerError, "Failed to fetch from eZee API", "The booking engine request failed. Please try again.")
		return
	}

	if verr := services.DetectVendorError(resp); verr != nil {
		log.Printf("⚠️  eZee returned error %s: %s", verr.Code, verr.Message)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "eZee API Error",
			"code":    verr.Code,
			"message": verr.Message,
		})
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", resp)
}
