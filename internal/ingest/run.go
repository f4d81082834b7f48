package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mind-engage/itembank/internal/apperr"
)

// Request describes one ingestion run.
type Request struct {
	Path       string
	SheetIndex int
	Table      string
	MapToItems bool
}

// Report is the outcome of Run. Mapping fields are present only when
// mapping was requested.
type Report struct {
	ID      string `json:"ingest_id"`
	Message string `json:"message"`
	Result
	*MapResult
}

// Run loads req.Path into req.Table and optionally maps the table onto the
// primary one. When mapping is requested for a secondary table the primary
// table must already exist; this is checked before anything is written.
func (s *Service) Run(ctx context.Context, req Request) (Report, error) {
	rep := Report{ID: uuid.NewString()}
	log := zerolog.Ctx(ctx).With().
		Str("ingest_id", rep.ID).
		Str("table", req.Table).
		Int("sheet_index", req.SheetIndex).
		Logger()

	if !ValidTableName(req.Table) {
		return rep, apperr.Validation("invalid table name %q", req.Table)
	}
	if req.SheetIndex < 0 {
		return rep, apperr.Validation("sheet_index must be >= 0, got %d", req.SheetIndex)
	}
	if req.MapToItems && req.Table != PrimaryTable {
		ok, _, err := s.TableStats(ctx, PrimaryTable)
		if err != nil {
			return rep, err
		}
		if !ok {
			return rep, apperr.NotFound("table %q does not exist; ingest it before mapping %q", PrimaryTable, req.Table)
		}
	}

	start := time.Now()
	res, err := s.Load(ctx, req.Path, req.SheetIndex, req.Table)
	if err != nil {
		log.Warn().Err(err).Msg("ingestion failed")
		return rep, err
	}
	rep.Result = res
	rep.Message = "Ingestion complete"
	log.Info().Int("rows", res.Rows).Int("columns", len(res.Columns)).Dur("duration", time.Since(start)).Msg("table loaded")

	if !req.MapToItems {
		return rep, nil
	}
	m, err := s.MapToItems(ctx, req.Table)
	if err != nil {
		return rep, err
	}
	rep.MapResult = &m
	if m.Warning != "" {
		log.Warn().Str("warning", m.Warning).Bool("view_created", m.ViewCreated).Msg("mapping")
	} else {
		log.Info().Str("view", m.ViewName).Msg("view created")
	}
	return rep, nil
}
