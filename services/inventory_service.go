package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"hotel-booking/config"
	"hotel-booking/models"
)

var ErrInvalidDateRange = errors.New("check-out must be after check-in")

// RoomSource is the PMS side of availability and rate lookups.
type RoomSource interface {
	FetchInventory(ctx context.Context, from, to time.Time) ([]models.RawInventoryEntry, error)
	FetchRates(ctx context.Context, from, to time.Time) ([]models.RawRateEntry, error)
}

// ExtraRatePolicy decides where extra adult and child rates come from. The
// vendor value is used only when enabled and positive; otherwise the
// configured fallback applies.
type ExtraRatePolicy struct {
	UseVendorRates bool
	FallbackAdult  int64
	FallbackChild  int64
}

func (p ExtraRatePolicy) resolve(vendor *float64, fallback int64) int64 {
	if p.UseVendorRates && vendor != nil && *vendor > 0 {
		return int64(math.Round(*vendor))
	}
	return fallback
}

type rateCandidate struct {
	base  float64
	entry models.RawRateEntry
}

// Reconcile folds raw PMS rows into website categories, in table order.
// Availability is summed over every vendor id of a category; rates come from
// the primary vendor id only, one per rate plan, cheapest wins. Categories
// with no inventory rows are left out. Unmapped vendor ids are logged and
// dropped.
func Reconcile(table *config.RoomMappingTable, inventory []models.RawInventoryEntry, rates []models.RawRateEntry, policy ExtraRatePolicy) []models.MappedRoom {
	availability := make(map[string]int)
	seen := make(map[string]int)
	unmapped := make(map[string]bool)
	for _, entry := range inventory {
		id := config.NormalizeVendorID(entry.RoomTypeID)
		if _, ok := table.FindCategory(id); !ok {
			if !unmapped[id] {
				unmapped[id] = true
				log.Printf("⚠️  dropping unmapped PMS room type %q", entry.RoomTypeID)
			}
			continue
		}
		seen[id]++
		availability[id] += max(entry.Availability, 0)
	}

	rooms := make([]models.MappedRoom, 0, len(table.Mappings()))
	for _, m := range table.Mappings() {
		matched := 0
		total := 0
		for _, id := range m.VendorRoomTypeIDs {
			matched += seen[id]
			total += availability[id]
		}
		if matched == 0 {
			continue
		}

		rooms = append(rooms, models.MappedRoom{
			ID:               m.WebsiteRoomID,
			VendorRoomTypeID: m.PrimaryVendorID(),
			Name:             m.Name,
			Description:      m.Description,
			Image:            m.Image,
			MaxOccupancy:     m.MaxOccupancy,
			Availability:     total,
			Rates:            primaryRates(m.PrimaryVendorID(), rates, policy),
		})
	}
	return rooms
}

func primaryRates(primary string, rates []models.RawRateEntry, policy ExtraRatePolicy) []models.Rate {
	order := make([]string, 0)
	best := make(map[string]rateCandidate)
	for _, entry := range rates {
		if config.NormalizeVendorID(entry.RoomTypeID) != primary {
			continue
		}
		if entry.BaseRate < 0 || math.IsNaN(entry.BaseRate) {
			log.Printf("⚠️  skipping rate plan %q for room type %s: bad base rate %v", entry.RateTypeID, primary, entry.BaseRate)
			continue
		}
		plan := config.NormalizeVendorID(entry.RateTypeID)
		current, ok := best[plan]
		if !ok {
			order = append(order, plan)
		}
		if !ok || entry.BaseRate < current.base {
			best[plan] = rateCandidate{base: entry.BaseRate, entry: entry}
		}
	}

	out := make([]models.Rate, 0, len(order))
	for _, plan := range order {
		c := best[plan]
		out = append(out, models.Rate{
			RatePlanID:     plan,
			BaseRate:       int64(math.Round(c.base)),
			ExtraAdultRate: policy.resolve(c.entry.ExtraAdultRate, policy.FallbackAdult),
			ExtraChildRate: policy.resolve(c.entry.ExtraChildRate, policy.FallbackChild),
		})
	}
	return out
}

// InventoryService answers "which rooms can be booked for these dates".
type InventoryService struct {
	source RoomSource
	table  *config.RoomMappingTable
	policy ExtraRatePolicy
}

func NewInventoryService(source RoomSource, table *config.RoomMappingTable, policy ExtraRatePolicy) *InventoryService {
	if !policy.UseVendorRates || (policy.FallbackAdult == 0 && policy.FallbackChild == 0) {
		log.Printf("⚠️  extra occupant rates: vendor=%v fallback adult=%d child=%d",
			policy.UseVendorRates, policy.FallbackAdult, policy.FallbackChild)
	}
	return &InventoryService{source: source, table: table, policy: policy}
}

func (s *InventoryService) Table() *config.RoomMappingTable {
	return s.table
}

// FetchRooms loads inventory and rates in parallel and reconciles them. A
// vendor error is returned as is, never alongside a room list.
func (s *InventoryService) FetchRooms(ctx context.Context, checkIn, checkOut time.Time) ([]models.MappedRoom, error) {
	if !checkOut.After(checkIn) {
		return nil, ErrInvalidDateRange
	}

	var inventory []models.RawInventoryEntry
	var rates []models.RawRateEntry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inventory, err = s.source.FetchInventory(gctx, checkIn, checkOut)
		return err
	})
	g.Go(func() error {
		var err error
		rates, err = s.source.FetchRates(gctx, checkIn, checkOut)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load rooms %s..%s: %w", checkIn.Format(ezeeDateLayout), checkOut.Format(ezeeDateLayout), err)
	}

	return Reconcile(s.table, inventory, rates, s.policy), nil
}
