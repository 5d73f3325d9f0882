package report

import (
	"slices"

	"threadwatch/internal/types"

	"github.com/mattn/go-runewidth"
)

// Importance is the score used for ranking and display: the adjusted score
// when the backend sent one, else the base score.
func Importance(post types.AnalyzedPost) float64 {
	if adjusted := post.Analysis.AdjustedImportance; adjusted != nil {
		return *adjusted
	}
	return post.Analysis.Importance
}

// TopByImportance returns up to n posts ordered by Importance, highest
// first. Equal scores keep their input order. posts is not modified.
func TopByImportance(posts []types.AnalyzedPost, n int) []types.AnalyzedPost {
	if n <= 0 || len(posts) == 0 {
		return []types.AnalyzedPost{}
	}
	sorted := slices.Clone(posts)
	slices.SortStableFunc(sorted, func(a, b types.AnalyzedPost) int {
		ia, ib := Importance(a), Importance(b)
		switch {
		case ia > ib:
			return -1
		case ia < ib:
			return 1
		default:
			return 0
		}
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

type TierLevel int

const (
	TierLow TierLevel = iota
	TierMedium
	TierHigh
)

func (t TierLevel) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

func Tier(score float64) TierLevel {
	switch {
	case score >= 8:
		return TierHigh
	case score >= 5:
		return TierMedium
	default:
		return TierLow
	}
}

const (
	DefaultTopN      = 10
	barAuthorColumns = 15
)

// Bar is one row of the importance chart.
type Bar struct {
	Author     string
	Importance float64
}

// ImportanceBars projects the top n posts into chart rows. Authors are
// cut to 15 terminal cells.
func ImportanceBars(posts []types.AnalyzedPost, n int) []Bar {
	top := TopByImportance(posts, n)
	bars := make([]Bar, 0, len(top))
	for _, post := range top {
		bars = append(bars, Bar{
			Author:     runewidth.Truncate(post.Author, barAuthorColumns, ""),
			Importance: Importance(post),
		})
	}
	return bars
}
