// Package report exports progress snapshots as spreadsheets.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-progress/internal/progress"
)

// Sheet names.
const (
	ProgressSheet = "Progress"
	SummarySheet  = "Summary"
)

var progressHeader = []any{"Module", "Concept", "Progress", "Unlocked", "Completed"}

// WriteXLSX writes s as an XLSX workbook with one row per concept and a
// per-module summary sheet.
func WriteXLSX(w io.Writer, s *progress.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProgressSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if err := writeProgress(f, s); err != nil {
		return err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	if err := writeSummary(f, s); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeProgress(f *excelize.File, s *progress.Snapshot) error {
	if err := setRow(f, ProgressSheet, 1, progressHeader); err != nil {
		return err
	}
	row := 2
	for _, m := range s.Modules {
		for _, c := range m.Concepts {
			values := []any{m.Title, c.Name, c.Progress, yesNo(c.Unlocked), yesNo(c.Completed)}
			if err := setRow(f, ProgressSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeSummary(f *excelize.File, s *progress.Snapshot) error {
	if err := setRow(f, SummarySheet, 1, []any{"Module", "Completed concepts", "Total concepts", "Unlocked", "Completed"}); err != nil {
		return err
	}
	for i, m := range s.Modules {
		done := 0
		for _, c := range m.Concepts {
			if c.Completed {
				done++
			}
		}
		values := []any{m.Title, done, len(m.Concepts), yesNo(m.Unlocked), yesNo(m.Completed)}
		if err := setRow(f, SummarySheet, i+2, values); err != nil {
			return err
		}
	}

	footer := len(s.Modules) + 3
	return setRow(f, SummarySheet, footer, []any{"Overall", fmt.Sprintf("%.0f%%", s.OverallProgress()*100)})
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
