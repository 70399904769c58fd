package engine

import (
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// ReportFormat controls the CLI output format.
type ReportFormat string

const (
	ReportFormatJSON  ReportFormat = "json"
	ReportFormatTable ReportFormat = "table"
)

// Engine is the central analysis interface. It turns one configuration file
// into a fully populated DeviceReport.
//
// Engine never reads files or calls remote services; callers hand it decoded
// text that already passed input validation.
type Engine interface {
	// Analyze runs every enabled check module against text. It is
	// all-or-nothing: on error no report is returned.
	Analyze(fileName, text string) (*models.DeviceReport, error)
}
