package scheduleController

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int          { return &v }
func boolPtr(v bool) *bool       { return &v }
func stringPtr(v string) *string { return &v }

func TestDiffAssignments_AddedIsCurrentMinusOriginal(t *testing.T) {
	original := []PrinterAssignment{
		{PrinterID: 1, MTID: intPtr(100), IsToggled: true},
		{PrinterID: 2, MTID: intPtr(101), IsToggled: true},
	}
	current := []PrinterAssignment{
		{PrinterID: 2, MTID: intPtr(101), IsToggled: true},
		{PrinterID: 3, MTID: intPtr(102), IsToggled: true},
		{PrinterID: 4, IsToggled: true},
	}

	added, removed := DiffAssignments(original, current, nil)

	assert.Equal(t, []Delta{
		{PrinterID: 3, MTID: intPtr(102)},
		{PrinterID: 4},
	}, added)
	assert.Empty(t, removed)
}

func TestDiffAssignments_EmptyOriginal(t *testing.T) {
	current := []PrinterAssignment{
		{PrinterID: 7, IsToggled: true},
		{PrinterID: 8, IsToggled: true},
	}

	added, removed := DiffAssignments(nil, current, nil)

	assert.Len(t, added, 2)
	assert.Empty(t, removed)
}

func TestDiffAssignments_RemovedConsultsEditMap(t *testing.T) {
	original := []PrinterAssignment{
		{PrinterID: 1, MTID: intPtr(100), IsToggled: true},
		{PrinterID: 2, MTID: intPtr(101), IsToggled: true},
		{PrinterID: 3, IsToggled: false},
	}

	tests := []struct {
		name        string
		edits       map[int]ToggleEdit
		wantRemoved []Delta
	}{
		{
			name:        "empty edit map removes nothing",
			edits:       map[int]ToggleEdit{},
			wantRemoved: nil,
		},
		{
			name: "explicit off flip removes the row",
			edits: map[int]ToggleEdit{
				1: {IsToggled: boolPtr(false)},
			},
			wantRemoved: []Delta{{PrinterID: 1, MTID: intPtr(100)}},
		},
		{
			name: "edit without a toggle change removes nothing",
			edits: map[int]ToggleEdit{
				1: {},
				2: {IsToggled: boolPtr(true)},
			},
			wantRemoved: nil,
		},
		{
			name: "off flip for an untoggled original row is ignored",
			edits: map[int]ToggleEdit{
				3: {IsToggled: boolPtr(false)},
			},
			wantRemoved: nil,
		},
		{
			name: "off flip for a printer outside original is ignored",
			edits: map[int]ToggleEdit{
				99: {IsToggled: boolPtr(false)},
			},
			wantRemoved: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, removed := DiffAssignments(original, original, tt.edits)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}

func TestDiffAssignments_Idempotent(t *testing.T) {
	original := []PrinterAssignment{
		{PrinterID: 1, MTID: intPtr(100), IsToggled: true},
		{PrinterID: 2, IsToggled: true},
	}
	current := []PrinterAssignment{
		{PrinterID: 2, IsToggled: true},
		{PrinterID: 5, MTID: intPtr(200), IsToggled: true},
	}
	edits := map[int]ToggleEdit{
		1: {IsToggled: boolPtr(false)},
	}

	added1, removed1 := DiffAssignments(original, current, edits)
	added2, removed2 := DiffAssignments(original, current, edits)

	assert.Equal(t, added1, added2)
	assert.Equal(t, removed1, removed2)
}

func TestDiffAssignments_DoesNotMutateInputs(t *testing.T) {
	original := []PrinterAssignment{{PrinterID: 1, IsToggled: true}}
	current := []PrinterAssignment{{PrinterID: 2, IsToggled: true}}
	edits := map[int]ToggleEdit{1: {IsToggled: boolPtr(false)}}

	DiffAssignments(original, current, edits)

	assert.Equal(t, []PrinterAssignment{{PrinterID: 1, IsToggled: true}}, original)
	assert.Equal(t, []PrinterAssignment{{PrinterID: 2, IsToggled: true}}, current)
	assert.Len(t, edits, 1)
}
