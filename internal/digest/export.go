package digest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/amishk599/pljobs/internal/model"
)

// SheetName is the worksheet holding exported rows.
const SheetName = "Filtered Data"

// messageLimit is the largest digest listed posting by posting.
const messageLimit = 15

// internal columns left out of exports
var hiddenColumns = map[string]bool{"id": true, "core_role": true, "lat": true, "long": true, "upload_id": true}

// ExportColumns is the header of exported files.
func ExportColumns() []string {
	var cols []string
	for _, c := range model.Columns() {
		if !hiddenColumns[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

// exportRow returns p's exported values. Flags become 0/1 and dates
// YYYY-MM-DD.
func exportRow(p model.Posting) []any {
	cols := model.Columns()
	vals := p.Values()
	row := make([]any, 0, len(cols))
	for i, c := range cols {
		if hiddenColumns[c] {
			continue
		}
		v := vals[i]
		if b, ok := v.(bool); ok {
			if b {
				v = 1
			} else {
				v = 0
			}
		}
		row = append(row, v)
	}
	return row
}

// WriteCSV writes postings with a header row.
func WriteCSV(w io.Writer, postings []model.Posting) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns()); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, p := range postings {
		row := exportRow(p)
		rec := make([]string, len(row))
		for i, v := range row {
			switch x := v.(type) {
			case string:
				rec[i] = x
			case float64:
				rec[i] = strconv.FormatFloat(x, 'f', -1, 64)
			default:
				rec[i] = fmt.Sprint(x)
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing csv row %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes postings to a single-sheet workbook with a bold, frozen
// header row.
func WriteXLSX(w io.Writer, postings []model.Posting) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := ExportColumns()
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("writing xlsx header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	for i, p := range postings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := exportRow(p)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing xlsx row %s: %w", p.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

// Message is the chat text accompanying a digest: small digests list every
// posting, large ones only the count.
func Message(postings []model.Posting, day string) string {
	if len(postings) >= messageLimit {
		return fmt.Sprintf("For %s we had %d jobs matching your criteria, here you go:", day, len(postings))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Here are the jobs matching your criteria for %s:\n", day)
	for _, p := range postings {
		fmt.Fprintf(&b, "📌 %s - %s   %s\n", p.JobTitle, p.EmployerName, p.URL)
	}
	return b.String()
}
