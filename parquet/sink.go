// Package parquet persists enriched orders as a parquet file, the
// columnar half of the sink boundary.
package parquet

import (
	"context"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
	opk "github.com/iomega/opk"
	"github.com/pkg/errors"
)

// Schema is the arrow schema of the persisted result. Column names
// match what downstream order tables expect.
var Schema = arrow.NewSchema([]arrow.Field{
	{Name: "orderid", Type: arrow.PrimitiveTypes.Int64},
	{Name: "orderdate", Type: arrow.BinaryTypes.String},
	{Name: "customer", Type: arrow.PrimitiveTypes.Int64},
	{Name: "fullname", Type: arrow.BinaryTypes.String},
	{Name: "address", Type: arrow.BinaryTypes.String},
	{Name: "customertype", Type: arrow.BinaryTypes.String},
	{Name: "status", Type: arrow.BinaryTypes.String},
	{Name: "product", Type: arrow.PrimitiveTypes.Int64},
	{Name: "producttitle", Type: arrow.BinaryTypes.String},
	{Name: "orderamount", Type: arrow.PrimitiveTypes.Float64},
	{Name: "unitprice", Type: arrow.PrimitiveTypes.Float64},
	{Name: "discountamount", Type: arrow.PrimitiveTypes.Float64},
	{Name: "billingaddress", Type: arrow.BinaryTypes.String},
	{Name: "units", Type: arrow.PrimitiveTypes.Int64},
	{Name: "remarks", Type: arrow.BinaryTypes.String},
	{Name: "sentiment_score", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// Option is a functional option for Sink.
type Option func(s *Sink)

// OptStatter sets the stats collector.
func OptStatter(st opk.Statter) Option {
	return func(s *Sink) {
		s.stats = st
	}
}

// Sink writes enriched rows to one parquet file.
type Sink struct {
	path  string
	stats opk.Statter
}

// NewSink returns a Sink writing to path.
func NewSink(path string, opts ...Option) *Sink {
	s := &Sink{
		path:  path,
		stats: opk.NopStatter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Persist implements opk.Sink. The whole batch is written in one shot;
// a sentiment of None is encoded as the -1 sentinel in the
// sentiment_score column.
func (s *Sink) Persist(ctx context.Context, rows []opk.EnrichedOrder) (opk.PersistResult, error) {
	if err := ctx.Err(); err != nil {
		return opk.PersistResult{}, err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return opk.PersistResult{}, errors.Wrapf(opk.ErrSinkUnavailable, "creating %s: %v", dir, err)
		}
	}
	f, err := os.Create(s.path)
	if err != nil {
		return opk.PersistResult{}, errors.Wrapf(opk.ErrSinkUnavailable, "creating %s: %v", s.path, err)
	}
	defer f.Close()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	w, err := pqarrow.NewFileWriter(Schema, f, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return opk.PersistResult{}, errors.Wrapf(opk.ErrSinkUnavailable, "creating parquet writer: %v", err)
	}

	rec := buildRecord(rows)
	defer rec.Release()
	if err := w.Write(rec); err != nil {
		w.Close()
		return opk.PersistResult{}, errors.Wrapf(opk.ErrSinkUnavailable, "writing %s: %v", s.path, err)
	}
	if err := w.Close(); err != nil {
		return opk.PersistResult{}, errors.Wrapf(opk.ErrSinkUnavailable, "closing %s: %v", s.path, err)
	}
	s.stats.Count("sink.rows", int64(len(rows)), 1)
	return opk.PersistResult{RowsWritten: len(rows), Files: []string{s.path}}, nil
}

func buildRecord(rows []opk.EnrichedOrder) arrow.Record {
	bld := array.NewRecordBuilder(memory.DefaultAllocator, Schema)
	defer bld.Release()
	for _, r := range rows {
		bld.Field(0).(*array.Int64Builder).Append(r.OrderID)
		bld.Field(1).(*array.StringBuilder).Append(dateString(r))
		bld.Field(2).(*array.Int64Builder).Append(r.CustomerID)
		bld.Field(3).(*array.StringBuilder).Append(r.CustomerFullName)
		bld.Field(4).(*array.StringBuilder).Append(r.CustomerAddress)
		bld.Field(5).(*array.StringBuilder).Append(string(r.CustomerTier))
		bld.Field(6).(*array.StringBuilder).Append(r.CustomerStatus)
		bld.Field(7).(*array.Int64Builder).Append(r.ProductID)
		bld.Field(8).(*array.StringBuilder).Append(r.ProductTitle)
		bld.Field(9).(*array.Float64Builder).Append(r.OrderAmount)
		bld.Field(10).(*array.Float64Builder).Append(r.UnitPrice)
		bld.Field(11).(*array.Float64Builder).Append(r.DiscountAmount)
		bld.Field(12).(*array.StringBuilder).Append(r.BillingAddress)
		bld.Field(13).(*array.Int64Builder).Append(r.Units)
		bld.Field(14).(*array.StringBuilder).Append(r.Remarks)
		bld.Field(15).(*array.Float64Builder).Append(r.Sentiment.OrElse(opk.ScoreSentinel))
	}
	return bld.NewRecord()
}

func dateString(r opk.EnrichedOrder) string {
	if r.OrderDate.IsZero() {
		return ""
	}
	return r.OrderDate.Format("2006-01-02")
}
