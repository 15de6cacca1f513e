package scheduler

type occKey struct {
	id   string
	cell Cell
}

// Occupancy tracks which (entity, cell) combinations are taken during a
// single search or audit. It is scope-local and never persisted.
type Occupancy struct {
	teacher map[occKey]bool
	room    map[occKey]bool
	class   map[occKey]bool
}

// NewOccupancy returns an empty occupancy index.
func NewOccupancy() *Occupancy {
	return &Occupancy{
		teacher: make(map[occKey]bool),
		room:    make(map[occKey]bool),
		class:   make(map[occKey]bool),
	}
}

// TeacherFree reports whether the teacher has no placement in the cell.
func (o *Occupancy) TeacherFree(teacherID string, cell Cell) bool {
	return teacherID == "" || !o.teacher[occKey{teacherID, cell}]
}

// RoomFree reports whether the room has no placement in the cell.
func (o *Occupancy) RoomFree(roomID string, cell Cell) bool {
	return roomID == "" || !o.room[occKey{roomID, cell}]
}

// ClassFree reports whether the class has no placement in the cell.
func (o *Occupancy) ClassFree(classID string, cell Cell) bool {
	return classID == "" || !o.class[occKey{classID, cell}]
}

// Take marks the class, teacher and room as occupied in the cell. Empty ids
// are skipped, so unroomed or unsupervised placements cost nothing.
func (o *Occupancy) Take(classID, teacherID, roomID string, cell Cell) {
	if classID != "" {
		o.class[occKey{classID, cell}] = true
	}
	if teacherID != "" {
		o.teacher[occKey{teacherID, cell}] = true
	}
	if roomID != "" {
		o.room[occKey{roomID, cell}] = true
	}
}

// Release reverses a Take during backtracking.
func (o *Occupancy) Release(classID, teacherID, roomID string, cell Cell) {
	if classID != "" {
		delete(o.class, occKey{classID, cell})
	}
	if teacherID != "" {
		delete(o.teacher, occKey{teacherID, cell})
	}
	if roomID != "" {
		delete(o.room, occKey{roomID, cell})
	}
}

// Availability records explicit teacher unavailability per cell. Cells
// without an entry default to available; a nil Availability allows all.
type Availability struct {
	blocked map[occKey]bool
}

// NewAvailability returns an empty availability table.
func NewAvailability() *Availability {
	return &Availability{blocked: make(map[occKey]bool)}
}

// Block marks the teacher unavailable for the cell.
func (a *Availability) Block(teacherID string, cell Cell) {
	a.blocked[occKey{teacherID, cell}] = true
}

// Available reports whether the teacher may be scheduled in the cell.
func (a *Availability) Available(teacherID string, cell Cell) bool {
	if a == nil || teacherID == "" {
		return true
	}
	return !a.blocked[occKey{teacherID, cell}]
}
