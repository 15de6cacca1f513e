package scheduler

// RoomPicker chooses a room for a candidate cell given current occupancy.
// An empty return means no room; an unroomed placement is still valid.
//
// The default picker is greedy: the choice is not revisited when it causes
// downstream infeasibility, the engine simply moves to the next candidate
// cell. Implementations that search over rooms can be swapped in here.
type RoomPicker interface {
	Pick(cell Cell, occ *Occupancy) string
}

// FirstFit returns the first unoccupied room, trying RoomIDs in order.
type FirstFit struct {
	RoomIDs []string
}

// Pick implements RoomPicker.
func (f FirstFit) Pick(cell Cell, occ *Occupancy) string {
	for _, id := range f.RoomIDs {
		if occ.RoomFree(id, cell) {
			return id
		}
	}
	return ""
}
