package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"poloscraper/lib/timezone"
	"poloscraper/services/collector"
	"time"

	"github.com/xuri/excelize/v2"
)

const timestampLayout = "02/01/2006 15:04:05"

// Projection is the materialized export: a header row followed by one
// row per record, all exactly as wide as the schema.
type Projection struct {
	Header []string
	Rows   [][]string
}

// Project renders the records through the schema. The timestamp column
// carries the same instant on every row of a run.
func Project(schema Schema, institution string, records []collector.Record) Projection {
	return projectAt(schema, institution, records, timezone.Now())
}

func projectAt(schema Schema, institution string, records []collector.Record, now time.Time) Projection {
	stamp := now.Format(timestampLayout)

	header := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		header[i] = col.Header
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, len(schema.Columns))
		for i, col := range schema.Columns {
			switch col.Kind {
			case KindField:
				row[i] = record.Fields.Get(col.Field)
			case KindInstitution:
				row[i] = institution
			case KindTimestamp:
				row[i] = stamp
			}
		}
		rows = append(rows, row)
	}

	return Projection{Header: header, Rows: rows}
}

// WriteCSV writes the projection as UTF-8 CSV, header first.
func WriteCSV(w io.Writer, projection Projection) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(projection.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range projection.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the projection as a single-sheet workbook.
func WriteXLSX(w io.Writer, projection Projection) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	if err := workbook.SetSheetRow(sheet, "A1", &projection.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range projection.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return workbook.Write(w)
}
