package domain

import (
	"github.com/studyforge/studyforge-backend/internal/domain/catalog"
	"github.com/studyforge/studyforge-backend/internal/domain/study"
)

const (
	StatusActive    = study.StatusActive
	StatusCompleted = study.StatusCompleted

	ResultRight = study.ResultRight
	ResultWrong = study.ResultWrong

	DifficultyEasy   = study.DifficultyEasy
	DifficultyMedium = study.DifficultyMedium
	DifficultyHard   = study.DifficultyHard

	ConfidenceHigh = study.ConfidenceHigh
	ConfidenceLow  = study.ConfidenceLow

	TimeBucketAny    = study.TimeBucketAny
	TimeBucketFast   = study.TimeBucketFast
	TimeBucketMedium = study.TimeBucketMedium
	TimeBucketSlow   = study.TimeBucketSlow

	ItemKindFlashcard = catalog.KindFlashcard
	ItemKindMCQ       = catalog.KindMCQ
	ItemKindTable     = catalog.KindTable
)

type Series = study.Series
type StudySession = study.StudySession
type ItemSlot = study.ItemSlot
type Interaction = study.Interaction

type GridCell = study.GridCell
type ReferenceCell = study.ReferenceCell
type ReferenceTable = study.ReferenceTable
type CellPosition = study.CellPosition
type WrongPlacement = study.WrongPlacement
type PlacementResult = study.PlacementResult

type RecipeFilter = study.RecipeFilter
type RecipeCandidate = study.RecipeCandidate

type ItemMetadata = catalog.ItemMetadata
type FilterOptions = catalog.FilterOptions

var (
	ValidResult     = study.ValidResult
	ValidDifficulty = study.ValidDifficulty
	ValidConfidence = study.ValidConfidence
	ValidTimeBucket = study.ValidTimeBucket

	NextSessionID        = study.NextSessionID
	AllSessionsCompleted = study.AllSessionsCompleted
)
