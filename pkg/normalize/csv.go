package normalize

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/procflow/procflow/internal/model"
	"github.com/procflow/procflow/pkg/errors"
)

// LoadCSV reads a CSV export from disk and normalizes it.
func LoadCSV(path string, opts Options) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound(path)
		}
		return nil, errors.Wrap(err, errors.CodeFilePermission, "failed to open source file").
			WithContext("path", path)
	}
	defer f.Close()

	return ReadCSV(f, opts)
}

// ReadCSV normalizes a CSV stream.
func ReadCSV(r io.Reader, opts Options) (*model.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged exports

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailed, "failed to parse CSV")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.CodeInvalidFormat, "source file has no header row")
	}

	return buildTable(records[0], records[1:], opts)
}
