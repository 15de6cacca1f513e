package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneDayGrid(t *testing.T, slots int) *Grid {
	t.Helper()
	slotDefs := make([]Slot, 0, slots)
	names := []string{"p1", "p2", "p3", "p4"}
	for i := 0; i < slots; i++ {
		slotDefs = append(slotDefs, Slot{ID: names[i], Order: i + 1})
	}
	grid, err := BuildGrid([]Day{{ID: "mon", Order: 1}}, slotDefs, nil)
	require.NoError(t, err)
	return grid
}

func TestSessionEnginePlacesOneSittingPerDemand(t *testing.T) {
	engine := &SessionEngine{
		Grid:          oneDayGrid(t, 2),
		Shuffler:      NoShuffle{},
		ClassDailyCap: 2,
	}

	placed, err := engine.Solve([]SessionDemand{
		{AssessmentSubjectID: "as1", ClassID: "classA", SubjectID: "math"},
		{AssessmentSubjectID: "as2", ClassID: "classA", SubjectID: "eng"},
	})
	require.NoError(t, err)
	require.Len(t, placed, 2)
	assert.NotEqual(t, placed[0].Cell, placed[1].Cell)
}

func TestSessionEngineEnforcesClassDailyCap(t *testing.T) {
	engine := &SessionEngine{
		Grid:          oneDayGrid(t, 3),
		Shuffler:      NoShuffle{},
		ClassDailyCap: 2,
	}

	// Three sittings for one class on a single day exceed the cap of 2
	// before every demand can be placed.
	_, err := engine.Solve([]SessionDemand{
		{AssessmentSubjectID: "as1", ClassID: "classA", SubjectID: "math"},
		{AssessmentSubjectID: "as2", ClassID: "classA", SubjectID: "eng"},
		{AssessmentSubjectID: "as3", ClassID: "classA", SubjectID: "sci"},
	})
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestSessionEngineUncappedExamVariant(t *testing.T) {
	engine := &SessionEngine{
		Grid:     oneDayGrid(t, 3),
		Shuffler: NoShuffle{},
	}

	placed, err := engine.Solve([]SessionDemand{
		{AssessmentSubjectID: "as1", ClassID: "classA", SubjectID: "math"},
		{AssessmentSubjectID: "as2", ClassID: "classA", SubjectID: "eng"},
		{AssessmentSubjectID: "as3", ClassID: "classA", SubjectID: "sci"},
	})
	require.NoError(t, err)
	assert.Len(t, placed, 3)
}

func TestSessionEngineSchedulesLongestDurationFirst(t *testing.T) {
	demands := []SessionDemand{
		{AssessmentSubjectID: "short", ClassID: "classB", SubjectID: "eng", DurationMinutes: 40},
		{AssessmentSubjectID: "long", ClassID: "classA", SubjectID: "math", DurationMinutes: 120},
		{AssessmentSubjectID: "default", ClassID: "classC", SubjectID: "sci"},
	}

	order := sessionSearchOrder(demands)
	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestSessionEngineRespectsSupervisorConstraints(t *testing.T) {
	avail := NewAvailability()
	avail.Block("teacherS", Cell{DayID: "mon", SlotID: "p1"})

	engine := &SessionEngine{
		Grid:          oneDayGrid(t, 2),
		Availability:  avail,
		Shuffler:      NoShuffle{},
		ClassDailyCap: 2,
	}

	placed, err := engine.Solve([]SessionDemand{
		{AssessmentSubjectID: "as1", ClassID: "classA", SubjectID: "math", SupervisorID: "teacherS"},
	})
	require.NoError(t, err)
	require.Len(t, placed, 1)
	assert.Equal(t, Cell{DayID: "mon", SlotID: "p2"}, placed[0].Cell)
}

func TestSessionEngineSupervisorCannotSitTwice(t *testing.T) {
	engine := &SessionEngine{
		Grid:          oneDayGrid(t, 1),
		Shuffler:      NoShuffle{},
		ClassDailyCap: 2,
	}

	// Two classes share one supervisor and there is only one cell.
	_, err := engine.Solve([]SessionDemand{
		{AssessmentSubjectID: "as1", ClassID: "classA", SubjectID: "math", SupervisorID: "teacherS"},
		{AssessmentSubjectID: "as2", ClassID: "classB", SubjectID: "math", SupervisorID: "teacherS"},
	})
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestSessionEngineSharesRoomsFirstFit(t *testing.T) {
	engine := &SessionEngine{
		Grid:          oneDayGrid(t, 2),
		Rooms:         FirstFit{RoomIDs: []string{"hall"}},
		Shuffler:      NoShuffle{},
		ClassDailyCap: 2,
	}

	placed, err := engine.Solve([]SessionDemand{
		{AssessmentSubjectID: "as1", ClassID: "classA", SubjectID: "math"},
		{AssessmentSubjectID: "as2", ClassID: "classB", SubjectID: "math"},
	})
	require.NoError(t, err)
	require.Len(t, placed, 2)

	occ := NewOccupancy()
	for _, p := range placed {
		if p.RoomID != "" {
			assert.True(t, occ.RoomFree(p.RoomID, p.Cell), "room double-booked")
			occ.Take("", "", p.RoomID, p.Cell)
		}
	}
}
