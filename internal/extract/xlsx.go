package extract

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// cspell:words xlsx excelize

var ErrNoSheet = errors.New("workbook has no sheets")

// XLSX reads a table from the given sheet of the workbook in r.
// An empty sheet name selects the first sheet.
func XLSX(r io.Reader, sheet string) (table *Table, err error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := workbook.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	if sheet == "" {
		sheets := workbook.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheet
		}
		sheet = sheets[0]
	}

	records, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return NewTable(records)
}
