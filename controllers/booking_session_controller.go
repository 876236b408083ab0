package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-booking/models"
	"hotel-booking/services"
	"hotel-booking/utils"
)

type datesPayload struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

type guestsPayload struct {
	Adults   int `json:"adults" binding:"min=1"`
	Children int `json:"children" binding:"min=0"`
}

type roomPayload struct {
	RoomID     string `json:"roomId" binding:"required"`
	RatePlanID string `json:"ratePlanId"`
}

type servicesPayload struct {
	Services []models.SelectedService `json:"services" binding:"dive"`
}

// BookingSessionController exposes the booking wizard. Each session has one
// owner; the session id travels in the path.
type BookingSessionController struct {
	sessions *services.BookingSessionService
	auth     *services.AuthService
}

func NewBookingSessionController(sessions *services.BookingSessionService, auth *services.AuthService) *BookingSessionController {
	return &BookingSessionController{sessions: sessions, auth: auth}
}

func (bc *BookingSessionController) respond(c *gin.Context, view services.SessionView, err error) {
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (bc *BookingSessionController) CreateSession(c *gin.Context) {
	c.JSON(http.StatusCreated, bc.sessions.Create())
}

func (bc *BookingSessionController) GetSession(c *gin.Context) {
	view, err := bc.sessions.Get(c.Param("id"))
	bc.respond(c, view, err)
}

func (bc *BookingSessionController) DeleteSession(c *gin.Context) {
	if err := bc.sessions.Delete(c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &services.ValidationError{
			Step:    services.StepDates,
			Fields:  []string{field},
			Message: "dates must use the YYYY-MM-DD format",
		}
	}
	return d, nil
}

// UpdateDates handles PUT /:id/dates. With only checkIn, check-out follows
// when needed; with both, the pair must be a valid range.
func (bc *BookingSessionController) UpdateDates(c *gin.Context) {
	var p datesPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	id := c.Param("id")

	var checkIn, checkOut time.Time
	var err error
	if p.CheckIn != "" {
		if checkIn, err = parseDate("checkIn", p.CheckIn); err != nil {
			respondServiceError(c, err)
			return
		}
	}
	if p.CheckOut != "" {
		if checkOut, err = parseDate("checkOut", p.CheckOut); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	var view services.SessionView
	switch {
	case p.CheckIn != "" && p.CheckOut != "":
		view, err = bc.sessions.SetDates(id, checkIn, checkOut)
	case p.CheckIn != "":
		view, err = bc.sessions.SetCheckIn(id, checkIn)
	case p.CheckOut != "":
		view, err = bc.sessions.SetCheckOut(id, checkOut)
	default:
		utils.JSONProblem(c, http.StatusBadRequest, "invalid_payload", "checkIn or checkOut is required.")
		return
	}
	bc.respond(c, view, err)
}

func (bc *BookingSessionController) UpdateGuests(c *gin.Context) {
	var p guestsPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := bc.sessions.SetGuests(c.Param("id"), p.Adults, p.Children)
	bc.respond(c, view, err)
}

func (bc *BookingSessionController) SelectRoom(c *gin.Context) {
	var p roomPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := bc.sessions.SelectRoom(c.Param("id"), p.RoomID, p.RatePlanID)
	bc.respond(c, view, err)
}

func (bc *BookingSessionController) UpdateServices(c *gin.Context) {
	var p servicesPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := bc.sessions.SetServices(c.Param("id"), p.Services)
	bc.respond(c, view, err)
}

// UpdateGuestInfo stores the contact form as typed; completeness is checked
// on submit.
func (bc *BookingSessionController) UpdateGuestInfo(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respondBindError(c, err)
		return
	}
	var g models.GuestInfo
	if err := json.Unmarshal(raw, &g); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := bc.sessions.SetGuestInfo(c.Param("id"), g)
	bc.respond(c, view, err)
}

// ApplyMember handles POST /:id/member with a member bearer token and
// applies the member's discount to the session.
func (bc *BookingSessionController) ApplyMember(c *gin.Context) {
	member, err := bc.auth.Profile(bearerToken(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	view, err := bc.sessions.SetMemberDiscount(c.Param("id"), member.DiscountPercent())
	bc.respond(c, view, err)
}

func (bc *BookingSessionController) Next(c *gin.Context) {
	view, err := bc.sessions.Next(c.Param("id"))
	bc.respond(c, view, err)
}

func (bc *BookingSessionController) Back(c *gin.Context) {
	view, err := bc.sessions.Back(c.Param("id"))
	bc.respond(c, view, err)
}

// Submit handles POST /:id/submit and returns the checkout configuration.
func (bc *BookingSessionController) Submit(c *gin.Context) {
	result, err := bc.sessions.Submit(c.Request.Context(), c.Param("id"), isSecureRequest(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
