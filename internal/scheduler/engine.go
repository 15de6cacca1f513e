package scheduler

import "errors"

// Placement assigns one unit of a demand to a cell. Demand indexes the
// demand slice handed to Solve. RoomID is empty when no room was free.
type Placement struct {
	Demand int
	Cell   Cell
	RoomID string
}

// ErrInfeasible is returned when the search exhausts every candidate
// without satisfying all demands. No placements are committed in that case.
var ErrInfeasible = errors.New("search exhausted without a full assignment")

// RecurringEngine places weekly recurring demands onto the grid with
// backtracking search. All search state lives on an in-memory board owned
// by the Solve call, so one engine value can serve concurrent solves for
// distinct scopes.
type RecurringEngine struct {
	Grid         *Grid
	Rooms        RoomPicker
	Availability *Availability
	Shuffler     Shuffler
}

// Solve satisfies every demand or fails with ErrInfeasible. Demands are
// processed in input order; each demand's remaining periods are fully
// resolved before the search advances to the next demand.
func (e *RecurringEngine) Solve(demands []RecurringDemand) ([]Placement, error) {
	if e.Grid == nil || e.Grid.Size() == 0 {
		return nil, ErrEmptyGrid
	}

	s := &recurringSearch{
		grid:    e.Grid,
		rooms:   e.Rooms,
		avail:   e.Availability,
		shuffle: e.Shuffler,
		demands: demands,
		left:    make([]int, len(demands)),
		occ:     NewOccupancy(),
	}
	if s.shuffle == nil {
		s.shuffle = NewShuffler(0)
	}
	for i, d := range demands {
		s.left[i] = d.Periods
	}

	if !s.run(0) {
		return nil, ErrInfeasible
	}
	return s.placed, nil
}

type recurringSearch struct {
	grid    *Grid
	rooms   RoomPicker
	avail   *Availability
	shuffle Shuffler
	demands []RecurringDemand
	left    []int
	occ     *Occupancy
	placed  []Placement
}

func (s *recurringSearch) run(idx int) bool {
	if idx >= len(s.demands) {
		return true
	}
	if s.left[idx] <= 0 {
		return s.run(idx + 1)
	}
	d := s.demands[idx]

	candidates := make([]Cell, 0, s.grid.Size())
	for _, cell := range s.grid.Cells() {
		if s.canPlace(d, cell, "") {
			candidates = append(candidates, cell)
		}
	}
	s.shuffle.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, cell := range candidates {
		roomID := ""
		if s.rooms != nil {
			roomID = s.rooms.Pick(cell, s.occ)
		}
		if !s.canPlace(d, cell, roomID) {
			continue
		}

		s.occ.Take(d.ClassID, d.TeacherID, roomID, cell)
		s.placed = append(s.placed, Placement{Demand: idx, Cell: cell, RoomID: roomID})
		s.left[idx]--

		if s.run(idx) {
			return true
		}

		s.left[idx]++
		s.placed = s.placed[:len(s.placed)-1]
		s.occ.Release(d.ClassID, d.TeacherID, roomID, cell)
	}
	return false
}

func (s *recurringSearch) canPlace(d RecurringDemand, cell Cell, roomID string) bool {
	if !s.occ.ClassFree(d.ClassID, cell) {
		return false
	}
	if !s.occ.TeacherFree(d.TeacherID, cell) {
		return false
	}
	if !s.occ.RoomFree(roomID, cell) {
		return false
	}
	return s.avail.Available(d.TeacherID, cell)
}
