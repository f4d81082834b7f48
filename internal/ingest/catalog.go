package ingest

import (
	"context"

	"github.com/mind-engage/itembank/internal/apperr"
	"github.com/mind-engage/itembank/internal/db"
)

// Tables lists base tables and views.
func (s *Service) Tables(ctx context.Context) (tables, views []string, err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, nil, apperr.Store(err, "acquire connection")
	}
	defer conn.Close()

	if tables, err = s.driver.Tables(ctx, conn); err != nil {
		return nil, nil, apperr.Store(err, "list tables")
	}
	if views, err = s.driver.Views(ctx, conn); err != nil {
		return nil, nil, apperr.Store(err, "list views")
	}
	return tables, views, nil
}

// Columns lists the columns of a table or view.
func (s *Service) Columns(ctx context.Context, table string) ([]string, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, apperr.Store(err, "acquire connection")
	}
	defer conn.Close()

	isTable, err := s.driver.TableExists(ctx, conn, table)
	if err != nil {
		return nil, apperr.Store(err, "inspect catalog")
	}
	if !isTable {
		isView, err := s.driver.ViewExists(ctx, conn, table)
		if err != nil {
			return nil, apperr.Store(err, "inspect catalog")
		}
		if !isView {
			return nil, apperr.NotFound("table %q does not exist", table)
		}
	}
	cols, err := s.driver.Columns(ctx, conn, table)
	if err != nil {
		return nil, apperr.Store(err, "list columns of "+table)
	}
	return cols, nil
}

// TableStats reports whether table exists and, if so, its row count.
func (s *Service) TableStats(ctx context.Context, table string) (exists bool, rows int64, err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return false, 0, apperr.Store(err, "acquire connection")
	}
	defer conn.Close()

	if exists, err = s.driver.TableExists(ctx, conn, table); err != nil || !exists {
		if err != nil {
			err = apperr.Store(err, "inspect catalog")
		}
		return exists, 0, err
	}
	if rows, err = db.RowCount(ctx, conn, table); err != nil {
		return true, 0, apperr.Store(err, "count "+table)
	}
	return true, rows, nil
}

// Ping checks that the store answers.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperr.Store(err, "ping store")
	}
	return nil
}

// Driver names the backing store dialect.
func (s *Service) Driver() db.Driver { return s.driver }
