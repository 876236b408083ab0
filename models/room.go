package models

// Occupancy is the head count a room category accepts.
type Occupancy struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// RoomTypeMapping ties one or more PMS room types (layout variants) to a
// sellable website category. The first vendor id is the primary one and is
// the only one that contributes rates.
type RoomTypeMapping struct {
	VendorRoomTypeIDs []string  `json:"vendorRoomTypeIds"`
	WebsiteRoomID     string    `json:"websiteRoomId"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Image             string    `json:"image"`
	MaxOccupancy      Occupancy `json:"maxOccupancy"`
}

func (m RoomTypeMapping) PrimaryVendorID() string {
	if len(m.VendorRoomTypeIDs) == 0 {
		return ""
	}
	return m.VendorRoomTypeIDs[0]
}

type RawInventoryEntry struct {
	RoomTypeID   string
	FromDate     string
	ToDate       string
	Availability int
}

// RawRateEntry is one vendor rate row. Extra occupant rates are nil when the
// vendor left them out of the payload.
type RawRateEntry struct {
	RoomTypeID     string
	RateTypeID     string
	FromDate       string
	ToDate         string
	BaseRate       float64
	ExtraAdultRate *float64
	ExtraChildRate *float64
}

// Rate amounts are whole KES.
type Rate struct {
	RatePlanID     string `json:"ratePlanId"`
	BaseRate       int64  `json:"baseRate"`
	ExtraAdultRate int64  `json:"extraAdultRate"`
	ExtraChildRate int64  `json:"extraChildRate"`
}

type MappedRoom struct {
	ID               string    `json:"id"`
	VendorRoomTypeID string    `json:"vendorRoomTypeId"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Image            string    `json:"image"`
	MaxOccupancy     Occupancy `json:"maxOccupancy"`
	Availability     int       `json:"availability"`
	Rates            []Rate    `json:"rates"`
}

// Selectable reports whether the room can be picked in the wizard.
func (r MappedRoom) Selectable() bool {
	return r.Availability > 0 && len(r.Rates) > 0
}

// FindRate returns the rate for ratePlanID, or the first (cheapest listed)
// rate when ratePlanID is empty.
func (r MappedRoom) FindRate(ratePlanID string) (Rate, bool) {
	if len(r.Rates) == 0 {
		return Rate{}, false
	}
	if ratePlanID == "" {
		return r.Rates[0], true
	}
	for _, rate := range r.Rates {
		if rate.RatePlanID == ratePlanID {
			return rate, true
		}
	}
	return Rate{}, false
}
