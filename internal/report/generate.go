package report

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/KaramelBytes/tabreport/internal/analysis"
	"github.com/KaramelBytes/tabreport/internal/utils"
	"github.com/google/uuid"
)

// Generator builds and saves reports. The zero value is usable.
// Calls must not run concurrently against the same table.
type Generator struct {
	Logger *slog.Logger
	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// NewGenerator returns a Generator logging to logger (slog.Default when nil).
func NewGenerator(logger *slog.Logger) *Generator {
	return &Generator{Logger: logger}
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// Build assembles a report for t with a fresh run id and timestamp.
func (g *Generator) Build(t *analysis.Table, flags Flags) (*Report, error) {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	newID := uuid.NewString
	if g.NewID != nil {
		newID = g.NewID
	}
	r, err := Build(t, flags, now())
	if err != nil {
		return nil, err
	}
	r.ID = newID()
	return r, nil
}

// Generate builds the report for t and writes it to dest. The file is only
// written once the whole workbook has been assembled in memory.
func (g *Generator) Generate(t *analysis.Table, dest string, flags Flags) (*Report, error) {
	log := g.logger()
	r, err := g.Build(t, flags)
	if err != nil {
		log.Error("report build failed", slog.String("dest", dest), slog.String("error", err.Error()))
		return nil, err
	}
	log.Info("generating report",
		slog.String("run_id", r.ID),
		slog.String("source", r.Source),
		slog.String("dest", dest),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()),
		slog.Any("sheets", r.SheetNames()))
	start := time.Now()
	if err := r.Save(dest, flags.Overwrite); err != nil {
		log.Error("report generation failed",
			slog.String("run_id", r.ID),
			slog.String("dest", dest),
			slog.String("error", err.Error()))
		return nil, err
	}
	log.Info("report written",
		slog.String("run_id", r.ID),
		slog.String("dest", dest),
		slog.Duration("elapsed", time.Since(start)))
	return r, nil
}

// Save renders the report and writes it atomically to dest. With overwrite
// false an existing dest is left untouched and ErrDestinationExists is returned.
func (r *Report) Save(dest string, overwrite bool) error {
	if !overwrite && utils.FileExists(dest) {
		return stageError("write", dest, fmt.Errorf("%s: %w", dest, ErrDestinationExists))
	}
	f, err := r.Workbook()
	if err != nil {
		return stageError("render", dest, err)
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return stageError("serialize", dest, err)
	}
	if err := utils.SafeWriteFile(dest, buf.Bytes()); err != nil {
		return stageError("write", dest, err)
	}
	return nil
}
