package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"hotel-booking/config"
	"hotel-booking/models"
)

func testTable(t *testing.T) *config.RoomMappingTable {
	t.Helper()
	table, err := config.NewRoomMappingTable([]models.RoomTypeMapping{
		{VendorRoomTypeIDs: []string{"A", "B"}, WebsiteRoomID: "studio", Name: "Studio", MaxOccupancy: models.Occupancy{Adults: 2, Children: 1}},
		{VendorRoomTypeIDs: []string{"C"}, WebsiteRoomID: "suite", Name: "Suite", MaxOccupancy: models.Occupancy{Adults: 4, Children: 2}},
	})
	if err != nil {
		t.Fatalf("NewRoomMappingTable: %v", err)
	}
	return table
}

func fptr(v float64) *float64 { return &v }

func TestReconcileSumsAvailabilityAcrossVendorIDs(t *testing.T) {
	rooms := Reconcile(testTable(t), []models.RawInventoryEntry{
		{RoomTypeID: "A", Availability: 2},
		{RoomTypeID: "@B", Availability: 3},
		{RoomTypeID: "ZZZ", Availability: 9},
	}, []models.RawRateEntry{
		{RoomTypeID: "A", RateTypeID: "BAR", BaseRate: 1000},
	}, ExtraRatePolicy{})

	if len(rooms) != 1 {
		t.Fatalf("expected only the studio (suite has no inventory rows), got %+v", rooms)
	}
	if rooms[0].ID != "studio" || rooms[0].Availability != 5 || rooms[0].VendorRoomTypeID != "A" {
		t.Fatalf("unexpected room %+v", rooms[0])
	}
}

func TestReconcileKeepsCheapestRatePerPlan(t *testing.T) {
	rooms := Reconcile(testTable(t), []models.RawInventoryEntry{{RoomTypeID: "A", Availability: 1}}, []models.RawRateEntry{
		{RoomTypeID: "A", RateTypeID: "BAR", BaseRate: 1000},
		{RoomTypeID: "A", RateTypeID: "@BAR", BaseRate: 900},
		{RoomTypeID: "A", RateTypeID: "NRF", BaseRate: 850.6},
		{RoomTypeID: "B", RateTypeID: "BAR", BaseRate: 10},
		{RoomTypeID: "A", RateTypeID: "BAD", BaseRate: -1},
	}, ExtraRatePolicy{})

	rates := rooms[0].Rates
	if len(rates) != 2 {
		t.Fatalf("expected 2 rate plans, got %+v", rates)
	}
	if rates[0].RatePlanID != "BAR" || rates[0].BaseRate != 900 {
		t.Fatalf("BAR should resolve to 900, got %+v", rates[0])
	}
	if rates[1].RatePlanID != "NRF" || rates[1].BaseRate != 851 {
		t.Fatalf("NRF should round to 851, got %+v", rates[1])
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	table := testTable(t)
	inv := []models.RawInventoryEntry{{RoomTypeID: "A", Availability: 2}, {RoomTypeID: "C", Availability: 0}}
	rates := []models.RawRateEntry{{RoomTypeID: "C", RateTypeID: "BAR", BaseRate: 5000}}

	first := Reconcile(table, inv, rates, ExtraRatePolicy{})
	second := Reconcile(table, inv, rates, ExtraRatePolicy{})
	if len(first) != len(second) || len(first) != 2 {
		t.Fatalf("unexpected lengths %d/%d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Availability != second[i].Availability || len(first[i].Rates) != len(second[i].Rates) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
	if first[1].ID != "suite" || first[1].Availability != 0 || first[1].Selectable() {
		t.Fatalf("sold out suite should be listed but not selectable: %+v", first[1])
	}
}

func TestExtraRatePolicy(t *testing.T) {
	inv := []models.RawInventoryEntry{{RoomTypeID: "A", Availability: 1}}
	rates := []models.RawRateEntry{{RoomTypeID: "A", RateTypeID: "BAR", BaseRate: 1000, ExtraAdultRate: fptr(1500), ExtraChildRate: fptr(0)}}

	vendor := Reconcile(testTable(t), inv, rates, ExtraRatePolicy{UseVendorRates: true, FallbackAdult: 700, FallbackChild: 300})
	if r := vendor[0].Rates[0]; r.ExtraAdultRate != 1500 || r.ExtraChildRate != 300 {
		t.Fatalf("vendor policy: unexpected rate %+v", r)
	}

	fallback := Reconcile(testTable(t), inv, rates, ExtraRatePolicy{FallbackAdult: 700, FallbackChild: 300})
	if r := fallback[0].Rates[0]; r.ExtraAdultRate != 700 || r.ExtraChildRate != 300 {
		t.Fatalf("fallback policy: unexpected rate %+v", r)
	}
}

type fakeRoomSource struct {
	inventory []models.RawInventoryEntry
	rates     []models.RawRateEntry
	invErr    error
	calls     atomic.Int32
}

func (f *fakeRoomSource) FetchInventory(ctx context.Context, from, to time.Time) ([]models.RawInventoryEntry, error) {
	f.calls.Add(1)
	return f.inventory, f.invErr
}

func (f *fakeRoomSource) FetchRates(ctx context.Context, from, to time.Time) ([]models.RawRateEntry, error) {
	f.calls.Add(1)
	return f.rates, nil
}

func TestInventoryServiceFetchRooms(t *testing.T) {
	src := &fakeRoomSource{
		inventory: []models.RawInventoryEntry{{RoomTypeID: "C", Availability: 4}},
		rates:     []models.RawRateEntry{{RoomTypeID: "C", RateTypeID: "BAR", BaseRate: 7000}},
	}
	svc := NewInventoryService(src, testTable(t), ExtraRatePolicy{UseVendorRates: true})

	rooms, err := svc.FetchRooms(context.Background(), day("2024-06-01"), day("2024-06-03"))
	if err != nil {
		t.Fatalf("FetchRooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != "suite" || rooms[0].Availability != 4 {
		t.Fatalf("unexpected rooms %+v", rooms)
	}
	if src.calls.Load() != 2 {
		t.Fatalf("expected inventory and rates to be fetched, got %d calls", src.calls.Load())
	}

	if _, err := svc.FetchRooms(context.Background(), day("2024-06-03"), day("2024-06-03")); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestInventoryServiceVendorErrorReturnsNoRooms(t *testing.T) {
	src := &fakeRoomSource{
		inventory: []models.RawInventoryEntry{{RoomTypeID: "C", Availability: 4}},
		invErr:    &VendorError{Code: "102", Message: "Invalid auth"},
	}
	svc := NewInventoryService(src, testTable(t), ExtraRatePolicy{})

	rooms, err := svc.FetchRooms(context.Background(), day("2024-06-01"), day("2024-06-03"))
	var verr *VendorError
	if !errors.As(err, &verr) || verr.Code != "102" {
		t.Fatalf("expected vendor error, got %v", err)
	}
	if rooms != nil {
		t.Fatalf("no rooms may accompany a vendor error, got %+v", rooms)
	}
}
