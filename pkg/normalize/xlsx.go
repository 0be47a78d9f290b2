package normalize

import (
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/procflow/procflow/internal/model"
	"github.com/procflow/procflow/pkg/errors"
)

// LoadXLSX reads an Excel export and normalizes its first sheet.
// Uses the streaming row reader so large workbooks do not load whole
// worksheets into memory.
func LoadXLSX(path string, opts Options) (*model.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.FileNotFound(path)
	}

	xl, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidFormat, "failed to open xlsx").
			WithContext("path", path)
	}
	defer xl.Close()

	sheet := xl.GetSheetName(0)
	if sheet == "" {
		sheets := xl.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New(errors.CodeInvalidFormat, "xlsx has no sheets").
				WithContext("path", path)
		}
		sheet = sheets[0]
	}

	rows, err := xl.Rows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailed, "failed to read xlsx rows")
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errors.New(errors.CodeInvalidFormat, "xlsx sheet is empty").
			WithContext("sheet", sheet)
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailed, "failed to read xlsx header")
	}

	var records [][]string
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeParseFailed, "failed to read xlsx row")
		}
		records = append(records, cols)
	}

	return buildTable(header, records, opts)
}
