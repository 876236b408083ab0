package services

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"hotel-booking/models"
)

// ErrVendorUnavailable covers PMS 5xx answers, timeouts and connection
// failures. Callers show a "try again" message for it.
var ErrVendorUnavailable = errors.New("PMS temporarily unavailable")

// VendorHTTPError is a non-2xx, non-5xx answer from the PMS.
type VendorHTTPError struct {
	StatusCode int
	Body       string
}

func (e *VendorHTTPError) Error() string {
	return fmt.Sprintf("PMS HTTP error %d: %s", e.StatusCode, e.Body)
}

type EzeeCredentials struct {
	URL       string
	HotelCode string
	AuthCode  string
}

// Reservation is what the PMS needs to book a paid stay.
type Reservation struct {
	BookingID        string
	VendorRoomTypeID string
	RatePlanID       string
	RoomName         string
	CheckIn          time.Time
	CheckOut         time.Time
	Adults           int
	Children         int
	Guest            models.GuestInfo
	Amount           int64
	Comment          string
}

// EzeeClient talks XML to the eZee PMS.
type EzeeClient struct {
	httpClient *http.Client
	creds      EzeeCredentials
}

func newVendorHTTPClient(timeout time.Duration, maxRedirects int) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

func NewEzeeClient(creds EzeeCredentials, timeout time.Duration, maxRedirects int) *EzeeClient {
	return &EzeeClient{
		httpClient: newVendorHTTPClient(timeout, maxRedirects),
		creds:      creds,
	}
}

// Post sends a raw XML document with Basic auth built from the hotel and auth
// codes, and returns the body of a 2xx answer.
func (c *EzeeClient) Post(ctx context.Context, creds EzeeCredentials, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}
	req.SetBasicAuth(creds.HotelCode, creds.AuthCode)
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVendorUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrVendorUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrVendorUnavailable, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &VendorHTTPError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 512)}
	}
	return respBody, nil
}

func (c *EzeeClient) request(ctx context.Context, doc ezeeRequest) ([]byte, error) {
	doc.Authentication = ezeeAuthentication{HotelCode: c.creds.HotelCode, AuthCode: c.creds.AuthCode}
	payload, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", doc.RequestType, err)
	}
	return c.Post(ctx, c.creds, payload)
}

func (c *EzeeClient) roomInfo(ctx context.Context, requestType string, from, to time.Time) ([]models.RawInventoryEntry, []models.RawRateEntry, error) {
	body, err := c.request(ctx, ezeeRequest{
		RequestType: requestType,
		FromDate:    from.Format(ezeeDateLayout),
		ToDate:      to.Format(ezeeDateLayout),
	})
	if err != nil {
		return nil, nil, err
	}
	return parseRoomInfo(body)
}

func (c *EzeeClient) FetchInventory(ctx context.Context, from, to time.Time) ([]models.RawInventoryEntry, error) {
	inventory, _, err := c.roomInfo(ctx, EzeeRequestInventory, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}
	return inventory, nil
}

func (c *EzeeClient) FetchRates(ctx context.Context, from, to time.Time) ([]models.RawRateEntry, error) {
	_, rates, err := c.roomInfo(ctx, EzeeRequestRate, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	return rates, nil
}

// CreateReservation books the stay in the PMS and returns its success message.
func (c *EzeeClient) CreateReservation(ctx context.Context, r Reservation) (string, error) {
	first, last := splitFullName(r.Guest.FullName)
	start := r.CheckIn.Format(ezeeDateLayout)

	body, err := c.request(ctx, ezeeRequest{
		RequestType: EzeeRequestReservation,
		Reservations: &ezeeReservations{Reservation: ezeeReservation{
			HotelCode: c.creds.HotelCode,
			BookingID: r.BookingID,
			Status:    "New",
			Source:    "Website",
			BookingTran: ezeeBookingTran{
				SubBookingID: "1",
				RateTypeID:   r.RatePlanID,
				RoomTypeCode: r.VendorRoomTypeID,
				RoomTypeName: r.RoomName,
				Start:        start,
				End:          r.CheckOut.Format(ezeeDateLayout),
				TotalRate:    r.Amount,
				TotalPayment: r.Amount,
				FirstName:    first,
				LastName:     last,
				Address:      r.Guest.Address,
				City:         r.Guest.City,
				Country:      r.Guest.Country,
				Zipcode:      r.Guest.ZipCode,
				Phone:        r.Guest.Phone,
				Mobile:       r.Guest.Phone,
				Email:        r.Guest.Email,
				Comment:      r.Comment,
				RentalInfo: ezeeRentalInfo{
					EffectiveDate: start,
					Adult:         r.Adults,
					Child:         r.Children,
					Rent:          r.Amount,
				},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("create reservation: %w", err)
	}

	resp, err := decodeEzeeResponse(body)
	if err != nil {
		return "", fmt.Errorf("create reservation: %w", err)
	}
	if verr := resp.vendorError(); verr != nil {
		return "", fmt.Errorf("create reservation: %w", verr)
	}
	if resp.Success == nil {
		return "", fmt.Errorf("create reservation: %w: no Success element", ErrMalformedResponse)
	}
	msg := strings.TrimSpace(resp.Success.SuccessMsg)
	if msg == "" {
		msg = "Booking created successfully"
	}
	log.Printf("✅ PMS reservation created for %s: %s", r.BookingID, msg)
	return msg, nil
}

// splitFullName puts the first word in first name and the rest in last name.
// A single word fills both.
func splitFullName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
