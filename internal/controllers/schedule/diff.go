package scheduleController

// PrinterAssignment is one row of the assignment table: printer identity,
// the maintenance record it surfaced from, and whether the row is currently
// toggled into the schedule.
type PrinterAssignment struct {
	PrinterID int  `json:"printerId"`
	MTID      *int `json:"mtId,omitempty"`
	IsToggled bool `json:"isToggled"`
}

// ToggleEdit records one explicit user toggle for a printer row. A nil
// IsToggled means the row was touched but its inclusion never changed.
type ToggleEdit struct {
	IsToggled *bool `json:"isToggled,omitempty"`
}

// Delta identifies one printer to add to or remove from a schedule, carrying
// the maintenance record the assignment originated from.
type Delta struct {
	PrinterID int  `json:"printerId"`
	MTID      *int `json:"mtId,omitempty"`
}

// DiffAssignments compares the persisted assignment set against the edited
// one and returns what to insert and what to delete.
//
// Added is every printer in current that is absent from original, keyed by
// printer id. Removed is consulted from the edit map, not set subtraction: a
// printer is removed only when its original row was toggled on and the edit
// map records an explicit flip to off. An empty edit map therefore never
// removes anything. Inputs are not mutated.
func DiffAssignments(
	original, current []PrinterAssignment,
	edits map[int]ToggleEdit,
) (added, removed []Delta) {
	originalByID := make(map[int]PrinterAssignment, len(original))
	for _, assignment := range original {
		originalByID[assignment.PrinterID] = assignment
	}

	for _, assignment := range current {
		if _, exists := originalByID[assignment.PrinterID]; !exists {
			added = append(added, Delta{
				PrinterID: assignment.PrinterID,
				MTID:      assignment.MTID,
			})
		}
	}

	for _, assignment := range original {
		if !assignment.IsToggled {
			continue
		}

		edit, exists := edits[assignment.PrinterID]
		if !exists || edit.IsToggled == nil || *edit.IsToggled {
			continue
		}

		removed = append(removed, Delta{
			PrinterID: assignment.PrinterID,
			MTID:      assignment.MTID,
		})
	}

	return added, removed
}
