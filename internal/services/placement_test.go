package services

import (
	"testing"

	types "github.com/studyforge/studyforge-backend/internal/domain"
)

func refTable2x2WithHeaders() types.ReferenceTable {
	// Row 0 is a header row; rows 1..2 carry content.
	return types.ReferenceTable{
		Rows:    3,
		Columns: 2,
		Cells: []types.ReferenceCell{
			{Row: 0, Column: 0, Text: "Country", IsHeader: true},
			{Row: 0, Column: 1, Text: "Capital", IsHeader: true},
			{Row: 1, Column: 0, Text: "France"},
			{Row: 1, Column: 1, Text: "Paris"},
			{Row: 2, Column: 0, Text: "Spain"},
			{Row: 2, Column: 1, Text: "Madrid"},
		},
	}
}

func TestValidatePlacementAllCorrect(t *testing.T) {
	t.Parallel()
	grid := [][]*types.GridCell{
		{{Text: "Country", IsHeader: true}, {Text: "Capital", IsHeader: true}},
		{{Text: "France"}, {Text: "Paris"}},
		{{Text: "Spain"}, {Text: "Madrid"}},
	}

	res := ValidatePlacement(grid, refTable2x2WithHeaders())

	if res.TotalCells != 4 {
		t.Fatalf("total cells: got=%d want=4 (headers excluded)", res.TotalCells)
	}
	if res.CorrectPlacements != 4 {
		t.Fatalf("correct placements: got=%d want=4", res.CorrectPlacements)
	}
	if res.Accuracy != 100 {
		t.Fatalf("accuracy: got=%d want=100", res.Accuracy)
	}
	if len(res.WrongPlacements) != 0 {
		t.Fatalf("wrong placements: got=%d want=0", len(res.WrongPlacements))
	}
	for r := range res.CorrectnessGrid {
		for c, ok := range res.CorrectnessGrid[r] {
			if !ok {
				t.Fatalf("correctness grid (%d,%d): got=false want=true", r, c)
			}
		}
	}
}

func TestValidatePlacementSwappedCells(t *testing.T) {
	t.Parallel()
	// Paris and Madrid swapped.
	grid := [][]*types.GridCell{
		{{Text: "Country", IsHeader: true}, {Text: "Capital", IsHeader: true}},
		{{Text: "France"}, {Text: "Madrid"}},
		{{Text: "Spain"}, {Text: "Paris"}},
	}

	res := ValidatePlacement(grid, refTable2x2WithHeaders())

	if res.CorrectPlacements != 2 {
		t.Fatalf("correct placements: got=%d want=2", res.CorrectPlacements)
	}
	if res.Accuracy != 50 {
		t.Fatalf("accuracy: got=%d want=50", res.Accuracy)
	}
	if len(res.WrongPlacements) != 2 {
		t.Fatalf("wrong placements: got=%d want=2", len(res.WrongPlacements))
	}

	first := res.WrongPlacements[0]
	if first.CellText != "Madrid" {
		t.Fatalf("cell text: got=%q want=%q", first.CellText, "Madrid")
	}
	if first.PlacedAt != (types.CellPosition{Row: 1, Column: 1}) {
		t.Fatalf("placed at: got=%+v want={1 1}", first.PlacedAt)
	}
	if first.CorrectCellText != "Paris" {
		t.Fatalf("correct cell text: got=%q want=%q", first.CorrectCellText, "Paris")
	}
	if first.CorrectPosition == nil || *first.CorrectPosition != (types.CellPosition{Row: 2, Column: 1}) {
		t.Fatalf("correct position: got=%+v want={2 1}", first.CorrectPosition)
	}
}

func TestValidatePlacementEmptyEqualsAbsent(t *testing.T) {
	t.Parallel()
	ref := types.ReferenceTable{
		Rows:    1,
		Columns: 2,
		Cells: []types.ReferenceCell{
			{Row: 0, Column: 0, Text: "EMPTY"},
			// (0,1) intentionally has no reference cell.
		},
	}

	// nil cell where the reference has no cell either: correct. "EMPTY" is
	// ordinary content and must match exactly.
	grid := [][]*types.GridCell{
		{{Text: "EMPTY"}, nil},
	}

	res := ValidatePlacement(grid, ref)

	if res.CorrectPlacements != 2 {
		t.Fatalf("correct placements: got=%d want=2", res.CorrectPlacements)
	}
	if res.Accuracy != 100 {
		t.Fatalf("accuracy: got=%d want=100", res.Accuracy)
	}
}

func TestValidatePlacementShortGridRowsCountAsEmpty(t *testing.T) {
	t.Parallel()
	res := ValidatePlacement([][]*types.GridCell{}, refTable2x2WithHeaders())

	if res.TotalCells != 4 {
		t.Fatalf("total cells: got=%d want=4", res.TotalCells)
	}
	if res.CorrectPlacements != 0 {
		t.Fatalf("correct placements: got=%d want=0", res.CorrectPlacements)
	}
	if res.Accuracy != 0 {
		t.Fatalf("accuracy: got=%d want=0", res.Accuracy)
	}
	// Missing content has no home position.
	for _, wp := range res.WrongPlacements {
		if wp.CellText != "" {
			t.Fatalf("cell text: got=%q want empty", wp.CellText)
		}
		if wp.CorrectPosition != nil {
			t.Fatalf("correct position for empty cell: got=%+v want=nil", wp.CorrectPosition)
		}
	}
}

func TestValidatePlacementZeroGradableCells(t *testing.T) {
	t.Parallel()
	ref := types.ReferenceTable{
		Rows:    1,
		Columns: 2,
		Cells: []types.ReferenceCell{
			{Row: 0, Column: 0, Text: "A", IsHeader: true},
			{Row: 0, Column: 1, Text: "B", IsHeader: true},
		},
	}

	res := ValidatePlacement([][]*types.GridCell{{{Text: "A", IsHeader: true}, {Text: "B", IsHeader: true}}}, ref)

	if res.TotalCells != 0 {
		t.Fatalf("total cells: got=%d want=0", res.TotalCells)
	}
	if res.Accuracy != 0 {
		t.Fatalf("accuracy: got=%d want=0 (no division by zero)", res.Accuracy)
	}
}

func TestValidatePlacementDuplicateTextFirstDeclaredWins(t *testing.T) {
	t.Parallel()
	ref := types.ReferenceTable{
		Rows:    3,
		Columns: 1,
		Cells: []types.ReferenceCell{
			{Row: 0, Column: 0, Text: "x"},
			{Row: 1, Column: 0, Text: "x"},
			{Row: 2, Column: 0, Text: "q"},
		},
	}

	// "x" misplaced where "q" belongs: both (0,0) and (1,0) hold "x", the
	// first declared one is reported as its home.
	grid := [][]*types.GridCell{
		{{Text: "x"}},
		{{Text: "x"}},
		{{Text: "x"}},
	}

	res := ValidatePlacement(grid, ref)

	if len(res.WrongPlacements) != 1 {
		t.Fatalf("wrong placements: got=%d want=1", len(res.WrongPlacements))
	}
	wp := res.WrongPlacements[0]
	if wp.PlacedAt != (types.CellPosition{Row: 2, Column: 0}) {
		t.Fatalf("placed at: got=%+v want={2 0}", wp.PlacedAt)
	}
	if wp.CorrectPosition == nil || *wp.CorrectPosition != (types.CellPosition{Row: 0, Column: 0}) {
		t.Fatalf("correct position: got=%+v want={0 0}", wp.CorrectPosition)
	}
}

func TestValidatePlacementRoundsAccuracy(t *testing.T) {
	t.Parallel()
	ref := types.ReferenceTable{
		Rows:    1,
		Columns: 3,
		Cells: []types.ReferenceCell{
			{Row: 0, Column: 0, Text: "a"},
			{Row: 0, Column: 1, Text: "b"},
			{Row: 0, Column: 2, Text: "c"},
		},
	}
	grid := [][]*types.GridCell{
		{{Text: "a"}, {Text: "b"}, {Text: "nope"}},
	}

	res := ValidatePlacement(grid, ref)

	// 2/3 = 66.67 -> 67
	if res.Accuracy != 67 {
		t.Fatalf("accuracy: got=%d want=67", res.Accuracy)
	}
}
