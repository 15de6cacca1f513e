package scheduler

import "sort"

// RecurringDemand asks for a number of weekly periods of one
// class-subject-teacher combination.
type RecurringDemand struct {
	ClassID   string
	SubjectID string
	TeacherID string
	Periods   int
}

// SessionDemand asks for exactly one sitting of a class-subject pair within
// an assessment session. SupervisorID is empty for unsupervised sittings.
type SessionDemand struct {
	AssessmentSubjectID string
	ClassID             string
	SubjectID           string
	SupervisorID        string
	DurationMinutes     int
}

const defaultSittingMinutes = 60

func (d SessionDemand) duration() int {
	if d.DurationMinutes <= 0 {
		return defaultSittingMinutes
	}
	return d.DurationMinutes
}

// sessionSearchOrder returns demand indices sorted hardest-first: longest
// duration, then class, then subject for a deterministic base order.
func sessionSearchOrder(demands []SessionDemand) []int {
	order := make([]int, len(demands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := demands[order[i]], demands[order[j]]
		if a.duration() != b.duration() {
			return a.duration() > b.duration()
		}
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		return a.SubjectID < b.SubjectID
	})
	return order
}
