package services

import (
	"math"
	"time"

	"hotel-booking/models"
)

// Nights counts started days between check-in and check-out. A stay shorter
// than a day still costs one night.
func Nights(checkIn, checkOut time.Time) int {
	n := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if n < 1 {
		return 1
	}
	return n
}

// StayInput holds everything that goes into a stay price. Amounts are whole KES.
type StayInput struct {
	Rate                models.Rate
	Nights              int
	Adults              int
	Children            int
	ExtraAdultThreshold int
	Services            []models.SelectedService
	FlatServiceFee      int64
	DiscountPercent     float64
}

// PriceStay returns the full breakdown:
// base*nights + extraAdults*extraAdultRate*nights + children*extraChildRate*nights
// + services*fee, less the discount.
func PriceStay(in StayInput) models.BookingSummary {
	nights := in.Nights
	if nights < 1 {
		nights = 1
	}
	adults := max(in.Adults, 0)
	children := max(in.Children, 0)
	extraAdults := max(adults-in.ExtraAdultThreshold, 0)

	s := models.BookingSummary{
		Nights:             nights,
		RoomTotal:          in.Rate.BaseRate * int64(nights),
		ExtraAdults:        extraAdults,
		ExtraAdultsTotal:   int64(extraAdults) * in.Rate.ExtraAdultRate * int64(nights),
		ExtraChildrenTotal: int64(children) * in.Rate.ExtraChildRate * int64(nights),
		ServicesTotal:      int64(len(in.Services)) * in.FlatServiceFee,
	}
	s.Subtotal = s.RoomTotal + s.ExtraAdultsTotal + s.ExtraChildrenTotal + s.ServicesTotal
	if in.DiscountPercent > 0 {
		s.DiscountPercent = in.DiscountPercent
		s.Total = ApplyDiscount(s.Subtotal, in.DiscountPercent)
		s.Discount = s.Subtotal - s.Total
	} else {
		s.Total = s.Subtotal
	}
	return s
}

func ComputeStayTotal(rate models.Rate, nights, adults, children, extraAdultThreshold int, services []models.SelectedService, flatServiceFee int64) int64 {
	return PriceStay(StayInput{
		Rate:                rate,
		Nights:              nights,
		Adults:              adults,
		Children:            children,
		ExtraAdultThreshold: extraAdultThreshold,
		Services:            services,
		FlatServiceFee:      flatServiceFee,
	}).Total
}

// LongStayDiscounts are percentages.
type LongStayDiscounts struct {
	Weekly    float64
	Monthly   float64
	Quarterly float64
}

// For returns the discount for a stay of the given number of nights.
func (d LongStayDiscounts) For(nights int) float64 {
	switch {
	case nights >= 90:
		return d.Quarterly
	case nights >= 30:
		return d.Monthly
	case nights >= 7:
		return d.Weekly
	}
	return 0
}

// ApplyDiscount takes percent off amount and rounds the discounted amount to
// whole units. Percent is clamped to 0..100.
func ApplyDiscount(amount int64, percent float64) int64 {
	percent = math.Min(math.Max(percent, 0), 100)
	return int64(math.Round(float64(amount) * (100 - percent) / 100))
}
