package services

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"hotel-booking/models"
)

const (
	EzeeRequestInventory   = "Inventory"
	EzeeRequestRate        = "Rate"
	EzeeRequestReservation = "Reservation"
)

const ezeeDateLayout = "2006-01-02"

// ErrMalformedResponse is returned when the PMS answers with something that
// is not the expected XML document.
var ErrMalformedResponse = errors.New("malformed PMS response")

// VendorError is a business error the PMS reported inside its XML payload,
// usually with HTTP 200.
type VendorError struct {
	Code    string
	Message string
}

func (e *VendorError) Error() string {
	if e.Code == "" {
		return "ezee error: " + e.Message
	}
	return fmt.Sprintf("ezee error %s: %s", e.Code, e.Message)
}

type ezeeAuthentication struct {
	HotelCode string `xml:"HotelCode"`
	AuthCode  string `xml:"AuthCode"`
}

type ezeeRequest struct {
	XMLName        xml.Name           `xml:"RES_Request"`
	RequestType    string             `xml:"Request_Type"`
	Authentication ezeeAuthentication `xml:"Authentication"`
	FromDate       string             `xml:"FromDate,omitempty"`
	ToDate         string             `xml:"ToDate,omitempty"`
	Reservations   *ezeeReservations  `xml:"Reservations,omitempty"`
}

type ezeeRentalInfo struct {
	EffectiveDate string `xml:"EffectiveDate"`
	Adult         int    `xml:"Adult"`
	Child         int    `xml:"Child"`
	Rent          int64  `xml:"Rent"`
	ExtraCharge   int64  `xml:"ExtraCharge"`
	Tax           int64  `xml:"Tax"`
	Discount      int64  `xml:"Discount"`
}

type ezeeBookingTran struct {
	SubBookingID     string         `xml:"SubBookingId"`
	RateTypeID       string         `xml:"RateTypeID"`
	RoomTypeCode     string         `xml:"RoomTypeCode"`
	RoomTypeName     string         `xml:"RoomTypeName"`
	Start            string         `xml:"Start"`
	End              string         `xml:"End"`
	TotalRate        int64          `xml:"TotalRate"`
	TotalDiscount    int64          `xml:"TotalDiscount"`
	TotalExtraCharge int64          `xml:"TotalExtraCharge"`
	TotalTax         int64          `xml:"TotalTax"`
	TotalPayment     int64          `xml:"TotalPayment"`
	FirstName        string         `xml:"FirstName"`
	LastName         string         `xml:"LastName"`
	Address          string         `xml:"Address"`
	City             string         `xml:"City"`
	Country          string         `xml:"Country"`
	Zipcode          string         `xml:"Zipcode"`
	Phone            string         `xml:"Phone"`
	Mobile           string         `xml:"Mobile"`
	Email            string         `xml:"Email"`
	Comment          string         `xml:"Comment"`
	RentalInfo       ezeeRentalInfo `xml:"RentalInfo"`
}

type ezeeReservation struct {
	HotelCode   string          `xml:"HotelCode"`
	BookingID   string          `xml:"BookingID"`
	Status      string          `xml:"Status"`
	Source      string          `xml:"Source"`
	BookingTran ezeeBookingTran `xml:"BookingTran"`
}

type ezeeReservations struct {
	Reservation ezeeReservation `xml:"Reservation"`
}

type ezeeRoomRate struct {
	Base       float64  `xml:"Base"`
	ExtraAdult *float64 `xml:"ExtraAdult"`
	ExtraChild *float64 `xml:"ExtraChild"`
}

type ezeeRoomType struct {
	RoomTypeID   string `xml:"RoomTypeID"`
	FromDate     string `xml:"FromDate"`
	ToDate       string `xml:"ToDate"`
	Availability int    `xml:"Availability"`
}

type ezeeRateType struct {
	RoomTypeID string       `xml:"RoomTypeID"`
	RateTypeID string       `xml:"RateTypeID"`
	FromDate   string       `xml:"FromDate"`
	ToDate     string       `xml:"ToDate"`
	RoomRate   ezeeRoomRate `xml:"RoomRate"`
}

type ezeeSource struct {
	RoomTypes struct {
		RoomType []ezeeRoomType `xml:"RoomType"`
		RateType []ezeeRateType `xml:"RateType"`
	} `xml:"RoomTypes"`
}

type ezeeErrors struct {
	ErrorCode    string `xml:"ErrorCode"`
	ErrorMessage string `xml:"ErrorMessage"`
}

// ezeeResponse accepts both a RES_Response document and a bare <Errors> root.
type ezeeResponse struct {
	XMLName  xml.Name
	RoomInfo *struct {
		Source []ezeeSource `xml:"Source"`
	} `xml:"RoomInfo"`
	Errors  *ezeeErrors `xml:"Errors"`
	Success *struct {
		SuccessMsg string `xml:"SuccessMsg"`
	} `xml:"Success"`

	// populated when the root element itself is <Errors>
	ErrorCode    string `xml:"ErrorCode"`
	ErrorMessage string `xml:"ErrorMessage"`
}

func (r *ezeeResponse) vendorError() *VendorError {
	if r.XMLName.Local == "Errors" {
		return &VendorError{Code: strings.TrimSpace(r.ErrorCode), Message: strings.TrimSpace(r.ErrorMessage)}
	}
	if r.Errors != nil {
		return &VendorError{Code: strings.TrimSpace(r.Errors.ErrorCode), Message: strings.TrimSpace(r.Errors.ErrorMessage)}
	}
	return nil
}

func decodeEzeeResponse(body []byte) (*ezeeResponse, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	var resp ezeeResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}

// DetectVendorError returns the embedded error envelope of a PMS payload, or
// nil when there is none. Bodies that are not XML have no envelope.
func DetectVendorError(body []byte) *VendorError {
	resp, err := decodeEzeeResponse(body)
	if err != nil {
		return nil
	}
	return resp.vendorError()
}

// parseRoomInfo decodes an inventory or rate answer. An error envelope wins
// over any room data in the same document.
func parseRoomInfo(body []byte) ([]models.RawInventoryEntry, []models.RawRateEntry, error) {
	resp, err := decodeEzeeResponse(body)
	if err != nil {
		return nil, nil, err
	}
	if verr := resp.vendorError(); verr != nil {
		return nil, nil, verr
	}
	if resp.RoomInfo == nil {
		return nil, nil, fmt.Errorf("%w: missing RoomInfo", ErrMalformedResponse)
	}

	var inventory []models.RawInventoryEntry
	var rates []models.RawRateEntry
	for _, src := range resp.RoomInfo.Source {
		for _, rt := range src.RoomTypes.RoomType {
			availability := rt.Availability
			if availability < 0 {
				availability = 0
			}
			inventory = append(inventory, models.RawInventoryEntry{
				RoomTypeID:   strings.TrimSpace(rt.RoomTypeID),
				FromDate:     strings.TrimSpace(rt.FromDate),
				ToDate:       strings.TrimSpace(rt.ToDate),
				Availability: availability,
			})
		}
		for _, rt := range src.RoomTypes.RateType {
			rates = append(rates, models.RawRateEntry{
				RoomTypeID:     strings.TrimSpace(rt.RoomTypeID),
				RateTypeID:     strings.TrimSpace(rt.RateTypeID),
				FromDate:       strings.TrimSpace(rt.FromDate),
				ToDate:         strings.TrimSpace(rt.ToDate),
				BaseRate:       rt.RoomRate.Base,
				ExtraAdultRate: rt.RoomRate.ExtraAdult,
				ExtraChildRate: rt.RoomRate.ExtraChild,
			})
		}
	}
	return inventory, rates, nil
}
