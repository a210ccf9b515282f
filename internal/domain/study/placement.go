package study

// GridCell is one cell of a submitted table grid. A nil cell and a cell with
// empty text are equivalent: "EMPTY" is a valid content value, not an error
// state.
type GridCell struct {
	Text     string `json:"text"`
	IsHeader bool   `json:"isHeader,omitempty"`
}

// ReferenceCell is one cell of the reference layout, addressed by its declared
// coordinates rather than any palette position.
type ReferenceCell struct {
	Row      int    `json:"row"`
	Column   int    `json:"column"`
	Text     string `json:"text"`
	IsHeader bool   `json:"isHeader,omitempty"`
}

// ReferenceTable is the layout a table-quiz submission is graded against.
type ReferenceTable struct {
	Rows    int             `json:"rows"`
	Columns int             `json:"columns"`
	Cells   []ReferenceCell `json:"cells"`
}

// CellPosition addresses a grid cell.
type CellPosition struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// WrongPlacement explains one misplaced cell: what the user put where, what
// belongs there, and where the misplaced content actually lives (best effort
// when the reference holds duplicate text values).
type WrongPlacement struct {
	CellText        string        `json:"cellText"`
	PlacedAt        CellPosition  `json:"placedAt"`
	CorrectCellText string        `json:"correctCellText"`
	CorrectPosition *CellPosition `json:"correctPosition,omitempty"`
}

// PlacementResult is the validator output for one table. TotalCells excludes
// header cells; Accuracy is a rounded percentage and 0 when TotalCells is 0.
type PlacementResult struct {
	CorrectPlacements int              `json:"correctPlacements"`
	TotalCells        int              `json:"totalCells"`
	Accuracy          int              `json:"accuracy"`
	WrongPlacements   []WrongPlacement `json:"wrongPlacements"`
	CorrectnessGrid   [][]bool         `json:"correctnessGrid"`
}
