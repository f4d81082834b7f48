package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/mind-engage/itembank/internal/ingest"
	"github.com/mind-engage/itembank/internal/storage"
)

var (
	ingestFile  string
	ingestSheet int
	ingestTable string
	ingestMap   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load one spreadsheet sheet into a table",
	Long: `Load one sheet of an Excel workbook into a table, replacing it, and
optionally map the table onto items through an items_with_<table> view.
Prints the ingestion summary as JSON.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "workbook path (env DEFAULT_EXCEL_PATH)")
	ingestCmd.Flags().IntVar(&ingestSheet, "sheet", -1, "0-based sheet index (env DEFAULT_SHEET_INDEX)")
	ingestCmd.Flags().StringVarP(&ingestTable, "table", "t", ingest.PrimaryTable, "target table")
	ingestCmd.Flags().BoolVar(&ingestMap, "map-to-items", false, "create the items_with_<table> view")
}

func runIngest(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	ctx := logger.WithContext(cmd.Context())

	file := ingestFile
	if file == "" {
		file = cfg.DefaultExcelPath
	}
	sheet := ingestSheet
	if sheet < 0 {
		sheet = cfg.DefaultSheetIndex
	}

	src, err := storage.NewFSStore(cfg.DataDir)
	if err != nil {
		return err
	}
	path, err := src.Resolve(file)
	if err != nil {
		return err
	}

	dbh, driver, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer dbh.Close()

	rep, err := ingest.NewService(dbh, driver).Run(ctx, ingest.Request{
		Path:       path,
		SheetIndex: sheet,
		Table:      ingestTable,
		MapToItems: ingestMap,
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
