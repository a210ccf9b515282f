package services

import (
	"math"

	types "github.com/studyforge/studyforge-backend/internal/domain"
)

// ValidatePlacement grades a submitted table grid against the reference
// layout. Every non-header position is matched by its declared (row, column)
// coordinates; the grid position being graded is the ground truth, not the
// palette position a cell was dragged from. An absent cell and an empty text
// value are equivalent.
func ValidatePlacement(userGrid [][]*types.GridCell, ref types.ReferenceTable) *types.PlacementResult {
	byPosition := make(map[[2]int]*types.ReferenceCell, len(ref.Cells))
	for i := range ref.Cells {
		cell := &ref.Cells[i]
		byPosition[[2]int{cell.Row, cell.Column}] = cell
	}

	result := &types.PlacementResult{
		WrongPlacements: []types.WrongPlacement{},
		CorrectnessGrid: make([][]bool, ref.Rows),
	}

	for r := 0; r < ref.Rows; r++ {
		result.CorrectnessGrid[r] = make([]bool, ref.Columns)
		for c := 0; c < ref.Columns; c++ {
			refCell := byPosition[[2]int{r, c}]
			if refCell != nil && refCell.IsHeader {
				// Headers are fixed; they are never graded.
				result.CorrectnessGrid[r][c] = true
				continue
			}

			result.TotalCells++

			userText := cellText(userGrid, r, c)
			refText := ""
			if refCell != nil {
				refText = refCell.Text
			}

			if userText == refText {
				result.CorrectPlacements++
				result.CorrectnessGrid[r][c] = true
				continue
			}

			wrong := types.WrongPlacement{
				CellText:        userText,
				PlacedAt:        types.CellPosition{Row: r, Column: c},
				CorrectCellText: refText,
			}
			// Best effort: when the reference holds duplicate text values the
			// first declared match wins.
			if home := findByText(ref.Cells, userText); home != nil {
				wrong.CorrectPosition = &types.CellPosition{Row: home.Row, Column: home.Column}
			}
			result.WrongPlacements = append(result.WrongPlacements, wrong)
		}
	}

	if result.TotalCells > 0 {
		result.Accuracy = int(math.Round(float64(result.CorrectPlacements) / float64(result.TotalCells) * 100))
	}
	return result
}

func cellText(grid [][]*types.GridCell, row, col int) string {
	if row < 0 || row >= len(grid) {
		return ""
	}
	cells := grid[row]
	if col < 0 || col >= len(cells) {
		return ""
	}
	if cells[col] == nil {
		return ""
	}
	return cells[col].Text
}

func findByText(cells []types.ReferenceCell, text string) *types.ReferenceCell {
	if text == "" {
		return nil
	}
	for i := range cells {
		if !cells[i].IsHeader && cells[i].Text == text {
			return &cells[i]
		}
	}
	return nil
}
