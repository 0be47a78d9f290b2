package export

import (
	"os"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/procflow/procflow/internal/model"
	"github.com/procflow/procflow/pkg/errors"
)

// tableSchema mirrors the canonical column contract. Timestamps are stored
// as microseconds; everything except po_number stays utf8.
func tableSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "po_number", Type: arrow.PrimitiveTypes.Int64},
		{Name: "pr_po_no", Type: arrow.BinaryTypes.String},
		{Name: "uid_number", Type: arrow.BinaryTypes.String},
		{Name: "activity", Type: arrow.BinaryTypes.String},
		{Name: "date", Type: arrow.BinaryTypes.String},
		{Name: "timestamp", Type: &arrow.TimestampType{Unit: arrow.Microsecond}},
		{Name: "item", Type: arrow.BinaryTypes.String},
		{Name: "item_line", Type: arrow.BinaryTypes.String},
		{Name: "po_line", Type: arrow.BinaryTypes.String},
		{Name: "gr_line", Type: arrow.BinaryTypes.String},
		{Name: "inv_line", Type: arrow.BinaryTypes.String},
		{Name: "wf_line", Type: arrow.BinaryTypes.String},
	}, nil)
}

// WriteArrowIPC writes the canonical table to an Arrow IPC stream file,
// the interchange format for downstream analytical tooling.
func WriteArrowIPC(table *model.Table, path string) error {
	alloc := memory.NewGoAllocator()
	schema := tableSchema()

	b := array.NewRecordBuilder(alloc, schema)
	defer b.Release()

	for i := range table.Rows {
		r := &table.Rows[i]
		b.Field(0).(*array.Int64Builder).Append(r.PONumber)
		b.Field(1).(*array.StringBuilder).Append(r.PRPONo)
		b.Field(2).(*array.StringBuilder).Append(r.UIDNumber)
		b.Field(3).(*array.StringBuilder).Append(r.Activity)
		b.Field(4).(*array.StringBuilder).Append(r.Date)
		b.Field(5).(*array.TimestampBuilder).Append(arrow.Timestamp(r.Timestamp.UnixMicro()))
		b.Field(6).(*array.StringBuilder).Append(r.Item)
		b.Field(7).(*array.StringBuilder).Append(r.ItemLine)
		b.Field(8).(*array.StringBuilder).Append(r.POLine)
		b.Field(9).(*array.StringBuilder).Append(r.GRLine)
		b.Field(10).(*array.StringBuilder).Append(r.InvLine)
		b.Field(11).(*array.StringBuilder).Append(r.WFLine)
	}

	rec := b.NewRecord()
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to create arrow file").
			WithContext("path", path)
	}
	defer f.Close()

	w := ipc.NewWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(alloc))
	if err := w.Write(rec); err != nil {
		w.Close()
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to write arrow record")
	}
	return w.Close()
}
