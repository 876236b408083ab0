package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"hotel-booking/models"
)

// NormalizeVendorID strips whitespace and the "@" sigil the PMS puts in
// front of ids in some payloads. "@1826200000000000001" and
// "1826200000000000001" name the same room type.
func NormalizeVendorID(raw string) string {
	id := strings.TrimSpace(raw)
	id = strings.TrimPrefix(id, "@")
	return strings.TrimSpace(id)
}

// DefaultRoomMappings is the built-in table used when ROOM_MAPPING_FILE is unset.
func DefaultRoomMappings() []models.RoomTypeMapping {
	return []models.RoomTypeMapping{
		{
			VendorRoomTypeIDs: []string{
				"1826200000000000001",
				"1826200000000000002",
				"1826200000000000003",
				"1826200000000000004",
			},
			WebsiteRoomID: "studio",
			Name:          "Studio Apartment",
			Description:   "Modern studio apartment with kitchenette. Various layouts available including balcony options.",
			Image:         "/images/rooms/studio.jpg",
			MaxOccupancy:  models.Occupancy{Adults: 2, Children: 1},
		},
		{
			VendorRoomTypeIDs: []string{"1826200000000000005"},
			WebsiteRoomID:     "one-bedroom",
			Name:              "One Bedroom Apartment",
			Description:       "Spacious one bedroom apartment with separate living area and full kitchen",
			Image:             "/images/rooms/one-bedroom.jpg",
			MaxOccupancy:      models.Occupancy{Adults: 2, Children: 2},
		},
		{
			VendorRoomTypeIDs: []string{"1826200000000000006"},
			WebsiteRoomID:     "two-bedroom",
			Name:              "Two Bedroom Apartment",
			Description:       "Luxurious two bedroom apartment ideal for families or sharing",
			Image:             "/images/rooms/two-bedroom.jpg",
			MaxOccupancy:      models.Occupancy{Adults: 4, Children: 2},
		},
	}
}

// RoomMappingTable is read-only after construction.
type RoomMappingTable struct {
	mappings []models.RoomTypeMapping
	byVendor map[string]int
	byRoomID map[string]int
}

// NewRoomMappingTable normalizes and validates mappings. Every vendor id may
// belong to one category only.
func NewRoomMappingTable(mappings []models.RoomTypeMapping) (*RoomMappingTable, error) {
	if len(mappings) == 0 {
		return nil, errors.New("room mapping table is empty")
	}
	t := &RoomMappingTable{
		mappings: make([]models.RoomTypeMapping, 0, len(mappings)),
		byVendor: make(map[string]int),
		byRoomID: make(map[string]int),
	}
	for i, m := range mappings {
		roomID := strings.TrimSpace(m.WebsiteRoomID)
		if roomID == "" {
			return nil, fmt.Errorf("mapping #%d: missing websiteRoomId", i)
		}
		if _, dup := t.byRoomID[roomID]; dup {
			return nil, fmt.Errorf("mapping #%d: duplicate websiteRoomId %q", i, roomID)
		}
		if len(m.VendorRoomTypeIDs) == 0 {
			return nil, fmt.Errorf("mapping %q: no vendor room type ids", roomID)
		}

		ids := make([]string, 0, len(m.VendorRoomTypeIDs))
		for _, raw := range m.VendorRoomTypeIDs {
			id := NormalizeVendorID(raw)
			if id == "" {
				return nil, fmt.Errorf("mapping %q: blank vendor room type id", roomID)
			}
			if owner, dup := t.byVendor[id]; dup {
				return nil, fmt.Errorf("vendor room type %s mapped to both %q and %q",
					id, t.mappings[owner].WebsiteRoomID, roomID)
			}
			t.byVendor[id] = len(t.mappings)
			ids = append(ids, id)
		}

		m.WebsiteRoomID = roomID
		m.VendorRoomTypeIDs = ids
		t.byRoomID[roomID] = len(t.mappings)
		t.mappings = append(t.mappings, m)
	}
	return t, nil
}

// LoadRoomMappingTable builds the table from a JSON file (an array of
// mappings) or from DefaultRoomMappings when path is empty.
func LoadRoomMappingTable(path string) (*RoomMappingTable, error) {
	if strings.TrimSpace(path) == "" {
		return NewRoomMappingTable(DefaultRoomMappings())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read room mapping file: %w", err)
	}
	var mappings []models.RoomTypeMapping
	if err := json.Unmarshal(raw, &mappings); err != nil {
		return nil, fmt.Errorf("parse room mapping file: %w", err)
	}
	return NewRoomMappingTable(mappings)
}

// Mappings returns the table in its configured order.
func (t *RoomMappingTable) Mappings() []models.RoomTypeMapping {
	out := make([]models.RoomTypeMapping, len(t.mappings))
	copy(out, t.mappings)
	return out
}

func (t *RoomMappingTable) FindCategory(vendorRoomTypeID string) (models.RoomTypeMapping, bool) {
	idx, ok := t.byVendor[NormalizeVendorID(vendorRoomTypeID)]
	if !ok {
		return models.RoomTypeMapping{}, false
	}
	return t.mappings[idx], true
}

func (t *RoomMappingTable) FindByRoomID(websiteRoomID string) (models.RoomTypeMapping, bool) {
	idx, ok := t.byRoomID[strings.TrimSpace(websiteRoomID)]
	if !ok {
		return models.RoomTypeMapping{}, false
	}
	return t.mappings[idx], true
}
