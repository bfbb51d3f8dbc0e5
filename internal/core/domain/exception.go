package domain

import "time"

type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Exception types emitted by the detector.
const (
	ExcMissingFiles           = "MISSING_FILES"
	ExcAbnormalDemand         = "ABNORMAL_DEMAND"
	ExcMissingSupplierMapping = "MISSING_SUPPLIER_MAPPING"
	ExcUnknownSKU             = "UNKNOWN_SKU"
	ExcMissingStockSnapshot   = "MISSING_STOCK_SNAPSHOT"
	ExcMissingArtifact        = "MISSING_ARTIFACT"
	ExcEmptyArtifact          = "EMPTY_ARTIFACT"
	ExcMissingFile            = "MISSING_FILE"
)

// ExceptionRecord is one detected anomaly. Records are append-only within a
// run and never mutate prior runs' reports.
type ExceptionRecord struct {
	Date     string   `json:"date"`
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	SKU      string   `json:"sku,omitempty"`
	Quantity int      `json:"quantity,omitempty"`
	Count    int      `json:"count,omitempty"`
	Message  string   `json:"message"`
}

// ExceptionReport aggregates one audit pass.
type ExceptionReport struct {
	RunID           string             `json:"run_id"`
	GeneratedAt     time.Time          `json:"generated_at"`
	PipelineDate    string             `json:"pipeline_date"`
	TotalExceptions int                `json:"total_exceptions"`
	BySeverity      map[Severity]int   `json:"exceptions_by_severity"`
	ByType          map[string]int     `json:"exceptions_by_type"`
	Exceptions      []ExceptionRecord  `json:"exceptions"`
}

// NewExceptionReport builds a report from the ordered record list, filling in
// the severity and type tallies. Both severity buckets are always present.
func NewExceptionReport(runID string, generatedAt time.Time, pipelineDate Partition, records []ExceptionRecord) *ExceptionReport {
	r := &ExceptionReport{
		RunID:           runID,
		GeneratedAt:     generatedAt,
		PipelineDate:    pipelineDate.String(),
		TotalExceptions: len(records),
		BySeverity: map[Severity]int{
			SeverityError:   0,
			SeverityWarning: 0,
		},
		ByType:     make(map[string]int),
		Exceptions: records,
	}
	for _, rec := range records {
		r.BySeverity[rec.Severity]++
		r.ByType[rec.Type]++
	}
	return r
}

// HasErrors reports whether any ERROR-severity record exists; callers use it
// to drive the process exit status.
func (r *ExceptionReport) HasErrors() bool {
	return r.BySeverity[SeverityError] > 0
}
