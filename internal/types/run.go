package types

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// PipelineStats counts posts at each stage of the backend pipeline.
type PipelineStats struct {
	TotalSearched       int `json:"total_searched"`
	FilteredByHardRules int `json:"filtered_by_hard_rules"`
	FilteredByDedup     int `json:"filtered_by_dedup"`
	FilteredByAI        int `json:"filtered_by_ai"`
	ValidCount          int `json:"valid_count"`
}

// RunRecord is the full run row returned with a report.
type RunRecord struct {
	ID             string         `json:"id"`
	Status         RunStatus      `json:"status"`
	Keywords       []string       `json:"keywords"`
	CreatedAt      Timestamp      `json:"created_at"`
	CompletedAt    *Timestamp     `json:"completed_at"`
	ReportMarkdown *string        `json:"report_markdown"`
	Stats          *PipelineStats `json:"stats"`
	ErrorMessage   *string        `json:"error_message"`
}

type SummaryStats struct {
	ValidCount int `json:"valid_count"`
}

// RunSummary is one row of the history listing.
type RunSummary struct {
	ID          string        `json:"id"`
	Status      RunStatus     `json:"status"`
	Keywords    []string      `json:"keywords"`
	CreatedAt   Timestamp     `json:"created_at"`
	CompletedAt *Timestamp    `json:"completed_at"`
	Stats       *SummaryStats `json:"stats"`
}

type HistoryPage struct {
	Runs  []RunSummary `json:"runs"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}
