package report

import (
	"errors"
	"fmt"
)

// ErrDestinationExists indicates the output file exists and overwriting is disabled.
var ErrDestinationExists = errors.New("destination already exists")

// NoTableLoadedError indicates report generation was requested before a table was loaded.
type NoTableLoadedError struct{}

func (e *NoTableLoadedError) Error() string {
	return "no table loaded: select a CSV file first"
}

// ReportGenerationError wraps any failure while building, rendering or writing a report.
// Nothing is written to Dest when it is returned.
type ReportGenerationError struct {
	Stage string
	Dest  string
	Err   error
}

func (e *ReportGenerationError) Error() string {
	if e == nil {
		return "report generation failed"
	}
	if e.Stage != "" {
		return fmt.Sprintf("failed to generate report: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("failed to generate report: %v", e.Err)
}

func (e *ReportGenerationError) Unwrap() error { return e.Err }

func stageError(stage, dest string, err error) error {
	var rge *ReportGenerationError
	if errors.As(err, &rge) {
		return err
	}
	return &ReportGenerationError{Stage: stage, Dest: dest, Err: err}
}
