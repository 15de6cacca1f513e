package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGridOrdersByDayThenSlot(t *testing.T) {
	grid, err := BuildGrid(
		[]Day{{ID: "tue", Order: 2}, {ID: "mon", Order: 1}},
		[]Slot{{ID: "p2", Order: 2}, {ID: "p1", Order: 1}},
		nil,
	)
	require.NoError(t, err)

	expected := []Cell{
		{DayID: "mon", SlotID: "p1"},
		{DayID: "mon", SlotID: "p2"},
		{DayID: "tue", SlotID: "p1"},
		{DayID: "tue", SlotID: "p2"},
	}
	assert.Equal(t, expected, grid.Cells())
	assert.Equal(t, 4, grid.Size())
}

func TestBuildGridAppliesBreakExclusions(t *testing.T) {
	grid, err := BuildGrid(
		[]Day{{ID: "mon", Order: 1}, {ID: "tue", Order: 2}},
		[]Slot{{ID: "p1", Order: 1}, {ID: "p2", Order: 2}, {ID: "lunch", Order: 3}},
		[]Exclusion{
			{SlotID: "lunch"},            // every day
			{SlotID: "p2", DayID: "tue"}, // Tuesday only
		},
	)
	require.NoError(t, err)

	expected := []Cell{
		{DayID: "mon", SlotID: "p1"},
		{DayID: "mon", SlotID: "p2"},
		{DayID: "tue", SlotID: "p1"},
	}
	assert.Equal(t, expected, grid.Cells())
}

func TestBuildGridFailsWhenEverySlotIsABreak(t *testing.T) {
	_, err := BuildGrid(
		[]Day{{ID: "mon", Order: 1}},
		[]Slot{{ID: "p1", Order: 1}},
		[]Exclusion{{SlotID: "p1"}},
	)
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestBuildGridFailsWithoutDaysOrSlots(t *testing.T) {
	_, err := BuildGrid(nil, []Slot{{ID: "p1", Order: 1}}, nil)
	assert.ErrorIs(t, err, ErrEmptyGrid)

	_, err = BuildGrid([]Day{{ID: "mon", Order: 1}}, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyGrid)
}
