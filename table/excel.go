package table

import (
	"bytes"
	"context"
	"fmt"

	"github.com/extrame/xls"
	"github.com/kbukum/tabprofile/pipeline"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses an Office Open XML workbook. The configured sheet is read,
// or the first sheet when none is set. An empty sheet yields a table with
// no columns.
func ReadXLSX(ctx context.Context, data []byte, opts Options) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return New()
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	return fromSheetRows(ctx, rows, opts)
}

// ReadXLS parses a legacy BIFF workbook. Only the first sheet is read unless
// a sheet is named.
func ReadXLS(ctx context.Context, data []byte, opts Options) (*Table, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}

	var sheet *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		s := wb.GetSheet(i)
		if s == nil {
			continue
		}
		if opts.Sheet == "" || s.Name == opts.Sheet {
			sheet = s
			break
		}
	}
	if sheet == nil {
		if opts.Sheet != "" {
			return nil, fmt.Errorf("sheet %q not found", opts.Sheet)
		}
		return New()
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, trimTrailingEmpty(cells))
	}
	return fromSheetRows(ctx, rows, opts)
}

func fromSheetRows(ctx context.Context, rows [][]string, opts Options) (*Table, error) {
	records := make([]record, len(rows))
	for i, r := range rows {
		records[i] = record{fields: trimTrailingEmpty(r), line: i + 1}
	}
	t, err := build(ctx, pipeline.FromSlice(records), opts, false)
	if err == ErrNoColumns {
		return New()
	}
	return t, err
}

func trimTrailingEmpty(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return cells[:n]
}
