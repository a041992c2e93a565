package domain

// ============================================================
// Report generation — gateway contract
// ============================================================

// ReportType selects which report the gateway should write.
type ReportType string

const (
	ReportMonthly  ReportType = "monthly"
	ReportAnalysis ReportType = "analysis"
	ReportStress   ReportType = "stress"
	ReportBudget   ReportType = "budget"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	switch t {
	case ReportMonthly, ReportAnalysis, ReportStress, ReportBudget:
		return true
	}
	return false
}

// DateRange bounds the period a report covers.
type DateRange struct {
	Start string `json:"start"` // YYYY-MM-DD
	End   string `json:"end"`
}

// ReportRequest is the body of POST /v1/reports.
type ReportRequest struct {
	Type      ReportType `json:"type"`
	DateRange DateRange  `json:"dateRange"`
}

// GatewayReportRequest is the payload forwarded to the report generator.
type GatewayReportRequest struct {
	Type        ReportType         `json:"type"`
	UserProfile *UserProfile       `json:"userProfile"`
	Analysis    *FinancialAnalysis `json:"analysis,omitempty"`
	DateRange   DateRange          `json:"dateRange"`
}

// Report is a generated document. Content is markdown text.
type Report struct {
	ID          string     `json:"id"`
	Type        ReportType `json:"type"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	GeneratedAt string     `json:"generatedAt"`
	Period      string     `json:"period"`
}

// ReportResponse is the gateway's envelope for a report.
type ReportResponse struct {
	Success bool    `json:"success"`
	Report  *Report `json:"report,omitempty"`
	Error   string  `json:"error,omitempty"`
}
