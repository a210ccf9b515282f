package study

const (
	TimeBucketAny    = "any"
	TimeBucketFast   = "fast"   // < 30s
	TimeBucketMedium = "medium" // 30–90s
	TimeBucketSlow   = "slow"   // >= 90s
)

// RecipeFilter selects candidates by set membership per dimension. An empty
// set means no constraint on that dimension.
type RecipeFilter struct {
	Results      []string `json:"results"`
	Difficulties []string `json:"difficulties"`
	Confidences  []string `json:"confidences"`
	TimeSpent    string   `json:"timeSpent"`
}

func ValidTimeBucket(v string) bool {
	switch v {
	case "", TimeBucketAny, TimeBucketFast, TimeBucketMedium, TimeBucketSlow:
		return true
	}
	return false
}

// RecipeCandidate is the derived latest-state view of one item across a
// series' history. Never stored.
type RecipeCandidate struct {
	ItemID           int64  `json:"itemId"`
	LatestResult     string `json:"latestResult"`
	LatestDifficulty string `json:"latestDifficulty"`
	LatestConfidence string `json:"latestConfidence"`
	LatestTimeSpent  int    `json:"latestTimeSpent"`
	SourceSessionID  int    `json:"sourceSessionId"`
}
