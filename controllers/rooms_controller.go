package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-booking/config"
	"hotel-booking/models"
	"hotel-booking/utils"
)

const dateLayout = "2006-01-02"

type RoomLister interface {
	FetchRooms(ctx context.Context, checkIn, checkOut time.Time) ([]models.MappedRoom, error)
	Table() *config.RoomMappingTable
}

type RoomsController struct {
	rooms RoomLister
}

func NewRoomsController(rooms RoomLister) *RoomsController {
	return &RoomsController{rooms: rooms}
}

// GetAvailableRooms handles GET /api/rooms?checkIn=YYYY-MM-DD&checkOut=YYYY-MM-DD.
func (rc *RoomsController) GetAvailableRooms(c *gin.Context) {
	checkIn, err1 := time.Parse(dateLayout, c.Query("checkIn"))
	checkOut, err2 := time.Parse(dateLayout, c.Query("checkOut"))
	if err1 != nil || err2 != nil {
		utils.JSONProblem(c, http.StatusBadRequest, "invalid_dates", "checkIn and checkOut must be dates in YYYY-MM-DD format.")
		return
	}

	rooms, err := rc.rooms.FetchRooms(c.Request.Context(), checkIn, checkOut)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"checkIn":  checkIn.Format(dateLayout),
		"checkOut": checkOut.Format(dateLayout),
		"rooms":    rooms,
	})
}

// GetRoomCategories handles GET /api/room-types.
func (rc *RoomsController) GetRoomCategories(c *gin.Context) {
	c.JSON(http.StatusOK, rc.rooms.Table().Mappings())
}
