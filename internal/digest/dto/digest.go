package dto

// RunResult summarizes one completed pipeline run.
type RunResult struct {
	ArticleCount    int    `json:"article_count"`
	ExtractionCount int    `json:"extraction_count"`
	SummaryPath     string `json:"summary_path,omitempty"`
	ReportPath      string `json:"report_path,omitempty"`
}
