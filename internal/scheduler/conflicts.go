package scheduler

// AuditEntry is the view of a committed entry used for conflict grouping.
// TeacherID carries the supervisor for assessment entries and may be empty;
// RoomID is empty for unroomed entries. Empty ids never clash.
type AuditEntry struct {
	EntryID   string
	ClassID   string
	TeacherID string
	RoomID    string
	DayID     string
	SlotID    string
}

// ConflictReport lists clashing groups per dimension. Each inner slice is
// one group of entries sharing the same (entity, day, slot), reported
// verbatim.
type ConflictReport struct {
	Teacher [][]AuditEntry
	Room    [][]AuditEntry
	Class   [][]AuditEntry
}

// Empty reports whether no dimension has a clashing group.
func (r ConflictReport) Empty() bool {
	return len(r.Teacher) == 0 && len(r.Room) == 0 && len(r.Class) == 0
}

// DetectConflicts groups entries by (teacher, day, slot), (room, day, slot)
// and (class, day, slot) and reports every group larger than one. It is a
// pure read-side audit and preserves input order within groups.
func DetectConflicts(entries []AuditEntry) ConflictReport {
	return ConflictReport{
		Teacher: groupClashes(entries, func(e AuditEntry) string { return e.TeacherID }),
		Room:    groupClashes(entries, func(e AuditEntry) string { return e.RoomID }),
		Class:   groupClashes(entries, func(e AuditEntry) string { return e.ClassID }),
	}
}

func groupClashes(entries []AuditEntry, key func(AuditEntry) string) [][]AuditEntry {
	type cellKey struct {
		id   string
		cell Cell
	}
	groups := make(map[cellKey][]AuditEntry)
	var order []cellKey
	for _, e := range entries {
		id := key(e)
		if id == "" {
			continue
		}
		k := cellKey{id, Cell{DayID: e.DayID, SlotID: e.SlotID}}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	var clashes [][]AuditEntry
	for _, k := range order {
		if len(groups[k]) > 1 {
			clashes = append(clashes, groups[k])
		}
	}
	return clashes
}
