package common

const (
	TopListsFileName = "top_lists.json"
	ReportsDirName   = "daily_reports"

	ReportDateLayout = "2006-01-02"
)
