package services

import (
	"encoding/json"
	"time"

	"github.com/markdave123-py/NexSupply/internal/models"
)

// Report is the downloadable JSON export of an analysis.
type Report struct {
	ReportType  string                 `json:"report_type"`
	GeneratedAt string                 `json:"generated_at"`
	Query       string                 `json:"query"`
	Analysis    *models.AnalysisResult `json:"analysis"`
}

func BuildReport(query string, res *models.AnalysisResult, now time.Time) Report {
	return Report{
		ReportType:  "NexSupply Analysis Report",
		GeneratedAt: now.Format(time.RFC3339),
		Query:       query,
		Analysis:    res,
	}
}

// ReportFilename names the attachment after the generation minute.
func ReportFilename(now time.Time) string {
	return "nexsupply_report_" + now.Format("20060102_1504") + ".json"
}

// Encode renders the report as indented JSON.
func (r Report) Encode() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
