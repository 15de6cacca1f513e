package scheduler

import (
	"errors"
	"sort"
)

// Cell is one schedulable (day, time-slot) position on the grid.
type Cell struct {
	DayID  string
	SlotID string
}

// Day is a school day reference, ordered within the week.
type Day struct {
	ID    string
	Order int
}

// Slot is a time-slot reference, ordered within the day.
type Slot struct {
	ID    string
	Order int
}

// Exclusion removes a slot from the grid. An empty DayID excludes the slot
// on every day.
type Exclusion struct {
	SlotID string
	DayID  string
}

// ErrEmptyGrid is returned when no schedulable cell survives the exclusions.
var ErrEmptyGrid = errors.New("no schedulable cells after break exclusions")

// Grid holds the ordered schedulable cells of one scope. Cells are ordered
// by day order, then slot order.
type Grid struct {
	cells []Cell
}

// BuildGrid assembles the schedulable grid from days, slots and break
// exclusions. It fails fast when the resulting grid is empty.
func BuildGrid(days []Day, slots []Slot, exclusions []Exclusion) (*Grid, error) {
	orderedDays := make([]Day, len(days))
	copy(orderedDays, days)
	sort.SliceStable(orderedDays, func(i, j int) bool { return orderedDays[i].Order < orderedDays[j].Order })

	orderedSlots := make([]Slot, len(slots))
	copy(orderedSlots, slots)
	sort.SliceStable(orderedSlots, func(i, j int) bool { return orderedSlots[i].Order < orderedSlots[j].Order })

	global := make(map[string]bool)
	perDay := make(map[string]map[string]bool)
	for _, ex := range exclusions {
		if ex.DayID == "" {
			global[ex.SlotID] = true
			continue
		}
		if perDay[ex.DayID] == nil {
			perDay[ex.DayID] = make(map[string]bool)
		}
		perDay[ex.DayID][ex.SlotID] = true
	}

	var cells []Cell
	for _, day := range orderedDays {
		for _, slot := range orderedSlots {
			if global[slot.ID] || perDay[day.ID][slot.ID] {
				continue
			}
			cells = append(cells, Cell{DayID: day.ID, SlotID: slot.ID})
		}
	}

	if len(cells) == 0 {
		return nil, ErrEmptyGrid
	}
	return &Grid{cells: cells}, nil
}

// Cells returns the schedulable cells in grid order. Callers must not
// mutate the returned slice.
func (g *Grid) Cells() []Cell {
	return g.cells
}

// Size returns the number of schedulable cells.
func (g *Grid) Size() int {
	return len(g.cells)
}
