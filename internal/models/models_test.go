package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEstablishmentExpiry(t *testing.T) {
	est := Establishment{IsActive: true, ExpirationDate: date(2026, time.March, 10)}

	tests := []struct {
		name    string
		now     time.Time
		expired bool
	}{
		{"day before", time.Date(2026, time.March, 9, 23, 59, 0, 0, time.UTC), false},
		{"same day morning", time.Date(2026, time.March, 10, 0, 1, 0, 0, time.UTC), false},
		{"same day late", time.Date(2026, time.March, 10, 23, 59, 59, 0, time.UTC), false},
		{"day after", time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC), true},
		{"same day in another zone", time.Date(2026, time.March, 10, 22, 0, 0, 0, time.FixedZone("ART", -3*3600)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, est.ExpiredOn(tt.now))
			assert.Equal(t, !tt.expired, est.UsableOn(tt.now))
		})
	}

	inactive := Establishment{IsActive: false, ExpirationDate: date(2099, time.January, 1)}
	assert.False(t, inactive.UsableOn(date(2026, time.March, 10)))
}

func TestStaffProfileValidate(t *testing.T) {
	valid := func() StaffProfile {
		return StaffProfile{
			ID:       uuid.New(),
			Name:     "Lucía",
			IsActive: true,
			Establishment: &Establishment{
				ID:             uuid.New(),
				Name:           "La Birra",
				ExpirationDate: date(2099, time.January, 1),
			},
		}
	}

	p := valid()
	assert.NoError(t, p.Validate())

	p = valid()
	p.Establishment = nil
	assert.True(t, errors.Is(p.Validate(), ErrMalformedProfile))

	p = valid()
	p.Establishment.ExpirationDate = time.Time{}
	assert.ErrorIs(t, p.Validate(), ErrMalformedProfile)

	p = valid()
	p.Establishment.ID = uuid.Nil
	assert.ErrorIs(t, p.Validate(), ErrMalformedProfile)
}

func TestParseTableState(t *testing.T) {
	assert.Equal(t, TableStateFree, ParseTableState("free"))
	assert.Equal(t, TableStateDirty, ParseTableState("dirty"))
	assert.Equal(t, TableStateUnknown, ParseTableState("broken"))
	assert.Equal(t, TableStateUnknown, ParseTableState(""))
	assert.False(t, TableStateUnknown.Known())
}

func TestFloorSnapshotGroups(t *testing.T) {
	sectorA := Sector{ID: uuid.New(), Name: "Terraza"}
	sectorB := Sector{ID: uuid.New(), Name: "Salón"}
	t1 := Table{ID: uuid.New(), DisplayLabel: "T1", State: TableStateFree, SectorID: sectorA.ID}
	t2 := Table{ID: uuid.New(), DisplayLabel: "T2", State: TableStateOccupied, SectorID: sectorB.ID}
	t3 := Table{ID: uuid.New(), DisplayLabel: "T3", State: TableStateDirty, SectorID: sectorA.ID}
	orphan := Table{ID: uuid.New(), DisplayLabel: "X", SectorID: uuid.New()}

	snap := FloorSnapshot{
		Sectors: []Sector{sectorA, sectorB},
		Tables:  []Table{t1, t2, t3, orphan},
	}

	groups := snap.Groups()
	if assert.Len(t, groups, 2) {
		assert.Equal(t, sectorA, groups[0].Sector)
		assert.Equal(t, []Table{t1, t3}, groups[0].Tables)
		assert.Equal(t, []Table{t2}, groups[1].Tables)
	}
	assert.Equal(t, []Table{orphan}, snap.Orphans())
}

func TestFloorSnapshotOrphanInNoGroup(t *testing.T) {
	a := Sector{ID: uuid.New()}
	snap := FloorSnapshot{
		Sectors: []Sector{a},
		Tables:  []Table{{ID: uuid.New(), SectorID: uuid.New()}},
	}

	groups := snap.Groups()
	assert.Len(t, groups, 1)
	assert.Empty(t, groups[0].Tables)
	assert.Len(t, snap.Orphans(), 1)
}

func TestAdmissionErrorIs(t *testing.T) {
	err := error(NewSubscriptionInactive("La Birra"))

	assert.ErrorIs(t, err, ErrSubscriptionInactive)
	assert.NotErrorIs(t, err, ErrStaffDisabled)
	assert.Contains(t, err.Error(), "La Birra")

	cause := errors.New("network down")
	wrapped := NewProfileNotFound(cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, ErrProfileNotFound)
}
