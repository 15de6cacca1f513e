package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectConflictsCleanSchedule(t *testing.T) {
	report := DetectConflicts([]AuditEntry{
		{EntryID: "e1", ClassID: "classA", TeacherID: "t1", RoomID: "r1", DayID: "mon", SlotID: "p1"},
		{EntryID: "e2", ClassID: "classB", TeacherID: "t2", RoomID: "r2", DayID: "mon", SlotID: "p1"},
		{EntryID: "e3", ClassID: "classA", TeacherID: "t1", RoomID: "r1", DayID: "mon", SlotID: "p2"},
	})
	assert.True(t, report.Empty())
}

func TestDetectConflictsReportsEachDimension(t *testing.T) {
	entries := []AuditEntry{
		{EntryID: "e1", ClassID: "classA", TeacherID: "t1", RoomID: "r1", DayID: "mon", SlotID: "p1"},
		{EntryID: "e2", ClassID: "classB", TeacherID: "t1", RoomID: "r2", DayID: "mon", SlotID: "p1"},
		{EntryID: "e3", ClassID: "classB", TeacherID: "t2", RoomID: "r2", DayID: "mon", SlotID: "p1"},
		{EntryID: "e4", ClassID: "classA", TeacherID: "t3", RoomID: "r3", DayID: "mon", SlotID: "p1"},
	}

	report := DetectConflicts(entries)

	require.Len(t, report.Teacher, 1)
	assert.Equal(t, []string{"e1", "e2"}, entryIDs(report.Teacher[0]))

	require.Len(t, report.Room, 1)
	assert.Equal(t, []string{"e2", "e3"}, entryIDs(report.Room[0]))

	require.Len(t, report.Class, 1)
	assert.Equal(t, []string{"e1", "e4"}, entryIDs(report.Class[0]))
}

func TestDetectConflictsIgnoresEmptyIdentities(t *testing.T) {
	// Unroomed and unsupervised entries never clash on those dimensions.
	report := DetectConflicts([]AuditEntry{
		{EntryID: "e1", ClassID: "classA", DayID: "mon", SlotID: "p1"},
		{EntryID: "e2", ClassID: "classB", DayID: "mon", SlotID: "p1"},
	})
	assert.Empty(t, report.Teacher)
	assert.Empty(t, report.Room)
	assert.Empty(t, report.Class)
}

func entryIDs(entries []AuditEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.EntryID)
	}
	return ids
}
