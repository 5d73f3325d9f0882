package types

import "encoding/json"

type Entities struct {
	Persons       []string `json:"persons"`
	Locations     []string `json:"locations"`
	Organizations []string `json:"organizations"`
	Events        []string `json:"events"`
}

type BonusDetail struct {
	RuleName string  `json:"rule_name"`
	Bonus    float64 `json:"bonus"`
}

// PostAnalysis is the AI annotation attached to a post. AdjustedImportance,
// when present, supersedes Importance.
type PostAnalysis struct {
	Categories         []string      `json:"categories"`
	Importance         float64       `json:"importance"`
	AdjustedImportance *float64      `json:"adjusted_importance,omitempty"`
	Summary            string        `json:"summary"`
	Reasoning          string        `json:"reasoning,omitempty"`
	Entities           *Entities     `json:"entities,omitempty"`
	BonusDetail        []BonusDetail `json:"bonus_detail,omitempty"`
}

type AnalyzedPost struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	Author    string       `json:"author"`
	Link      string       `json:"link"`
	Timestamp string       `json:"timestamp"`
	Keyword   string       `json:"keyword,omitempty"`
	Analysis  PostAnalysis `json:"analysis"`
}

type CategoryStat struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ReportData is everything the report views need for one run. The backend
// sends null for the lists when a run produced no posts; decoding normalizes
// those to empty slices.
type ReportData struct {
	Run           RunRecord      `json:"run"`
	AnalyzedPosts []AnalyzedPost `json:"analyzed_posts"`
	BigFish       []AnalyzedPost `json:"big_fish"`
	CategoryStats []CategoryStat `json:"category_stats"`
}

func (r *ReportData) UnmarshalJSON(data []byte) error {
	type plain ReportData
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	if out.AnalyzedPosts == nil {
		out.AnalyzedPosts = []AnalyzedPost{}
	}
	if out.BigFish == nil {
		out.BigFish = []AnalyzedPost{}
	}
	if out.CategoryStats == nil {
		out.CategoryStats = []CategoryStat{}
	}
	*r = ReportData(out)
	return nil
}
