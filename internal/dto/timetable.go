package dto

// GenerateTimetableRequest starts a generation run for one term.
type GenerateTimetableRequest struct {
	TermID string `json:"term_id" validate:"required"`
}

// SwapEntriesRequest exchanges the grid positions of two entries.
type SwapEntriesRequest struct {
	EntryAID string `json:"entry_a_id" validate:"required"`
	EntryBID string `json:"entry_b_id" validate:"required"`
}

// MoveEntryRequest relocates one entry to a new cell. RoomID, when set,
// reassigns the room as part of the move.
type MoveEntryRequest struct {
	SchoolDayID string  `json:"school_day_id" validate:"required"`
	TimeSlotID  string  `json:"time_slot_id" validate:"required"`
	RoomID      *string `json:"room_id,omitempty"`
}
