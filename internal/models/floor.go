package models

import (
	"time"

	"github.com/google/uuid"
)

// TableState is the operational state of a table
type TableState string

const (
	TableStateFree     TableState = "free"
	TableStateOccupied TableState = "occupied"
	TableStateReserved TableState = "reserved"
	TableStateDirty    TableState = "dirty"

	// TableStateUnknown is rendered for values outside the known set
	TableStateUnknown TableState = "unknown"
)

// Known reports whether s is one of the four stored states
func (s TableState) Known() bool {
	switch s {
	case TableStateFree, TableStateOccupied, TableStateReserved, TableStateDirty:
		return true
	}
	return false
}

// ParseTableState maps a stored value onto a TableState, falling back to unknown
func ParseTableState(raw string) TableState {
	if s := TableState(raw); s.Known() {
		return s
	}
	return TableStateUnknown
}

// Sector groups tables within an establishment
type Sector struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"establishment_id"`
}

// TableName overrides the table name
func (Sector) TableName() string {
	return "sectors"
}

// Table is a physical table on the floor
type Table struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DisplayLabel string     `gorm:"type:varchar(100);not null" json:"display_label"`
	State        TableState `gorm:"type:varchar(20);not null;default:'free'" json:"state"`
	SectorID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"sector_id"`
}

// TableName overrides the table name
func (Table) TableName() string {
	return "tables"
}

// FloorSnapshot is the point-in-time view of sectors and tables taken at login
type FloorSnapshot struct {
	Sectors  []Sector  `json:"sectors"`
	Tables   []Table   `json:"tables"`
	LoadedAt time.Time `json:"loaded_at"`
}

// SectorGroup is a sector with the tables that belong to it
type SectorGroup struct {
	Sector Sector  `json:"sector"`
	Tables []Table `json:"tables"`
}

// Groups returns one group per sector, in sector order.
// A table belongs to a group iff its SectorID equals the sector's ID.
func (f FloorSnapshot) Groups() []SectorGroup {
	groups := make([]SectorGroup, 0, len(f.Sectors))
	for _, sector := range f.Sectors {
		group := SectorGroup{Sector: sector, Tables: []Table{}}
		for _, table := range f.Tables {
			if table.SectorID == sector.ID {
				group.Tables = append(group.Tables, table)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// Orphans returns tables whose sector is not part of the snapshot
func (f FloorSnapshot) Orphans() []Table {
	known := make(map[uuid.UUID]struct{}, len(f.Sectors))
	for _, sector := range f.Sectors {
		known[sector.ID] = struct{}{}
	}

	orphans := []Table{}
	for _, table := range f.Tables {
		if _, ok := known[table.SectorID]; !ok {
			orphans = append(orphans, table)
		}
	}
	return orphans
}
