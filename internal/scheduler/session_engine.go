package scheduler

// SessionEngine places assessment sittings onto the grid: exactly one cell
// per demand, searched hardest-first (longest duration). ClassDailyCap
// bounds sittings per class per day; zero means uncapped, which is how the
// exam variant runs.
type SessionEngine struct {
	Grid          *Grid
	Rooms         RoomPicker
	Availability  *Availability
	Shuffler      Shuffler
	ClassDailyCap int
}

// Solve assigns every demand a cell or fails with ErrInfeasible. Returned
// placements reference demands by their index in the caller's slice.
func (e *SessionEngine) Solve(demands []SessionDemand) ([]Placement, error) {
	if e.Grid == nil || e.Grid.Size() == 0 {
		return nil, ErrEmptyGrid
	}

	s := &sessionSearch{
		grid:    e.Grid,
		rooms:   e.Rooms,
		avail:   e.Availability,
		shuffle: e.Shuffler,
		cap:     e.ClassDailyCap,
		demands: demands,
		order:   sessionSearchOrder(demands),
		occ:     NewOccupancy(),
		perDay:  make(map[classDay]int),
	}
	if s.shuffle == nil {
		s.shuffle = NewShuffler(0)
	}

	if !s.run(0) {
		return nil, ErrInfeasible
	}
	return s.placed, nil
}

type classDay struct {
	classID string
	dayID   string
}

type sessionSearch struct {
	grid    *Grid
	rooms   RoomPicker
	avail   *Availability
	shuffle Shuffler
	cap     int
	demands []SessionDemand
	order   []int
	occ     *Occupancy
	perDay  map[classDay]int
	placed  []Placement
}

func (s *sessionSearch) run(pos int) bool {
	if pos >= len(s.order) {
		return true
	}
	idx := s.order[pos]
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

		s.occ.Take(d.ClassID, d.SupervisorID, roomID, cell)
		s.perDay[classDay{d.ClassID, cell.DayID}]++
		s.placed = append(s.placed, Placement{Demand: idx, Cell: cell, RoomID: roomID})

		if s.run(pos + 1) {
			return true
		}

		s.placed = s.placed[:len(s.placed)-1]
		s.perDay[classDay{d.ClassID, cell.DayID}]--
		s.occ.Release(d.ClassID, d.SupervisorID, roomID, cell)
	}
	return false
}

func (s *sessionSearch) canPlace(d SessionDemand, cell Cell, roomID string) bool {
	if s.cap > 0 && s.perDay[classDay{d.ClassID, cell.DayID}] >= s.cap {
		return false
	}
	if !s.occ.ClassFree(d.ClassID, cell) {
		return false
	}
	if !s.occ.RoomFree(roomID, cell) {
		return false
	}
	if d.SupervisorID != "" {
		if !s.occ.TeacherFree(d.SupervisorID, cell) {
			return false
		}
		if !s.avail.Available(d.SupervisorID, cell) {
			return false
		}
	}
	return true
}
