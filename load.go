package opk

import (
	"io"

	"github.com/pkg/errors"
)

// load drains a Source, decoding each raw record with decode.
// Malformed rows are added to rep and skipped; any other failure
// (schema mismatch, source error) aborts the load.
func load[T any](kind DatasetKind, src Source, rep *Report, decode func(interface{}) (T, error)) ([]T, error) {
	var out []T
	for {
		rec, err := src.Record()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %v record", kind)
		}
		v, err := decode(rec)
		if err != nil {
			if mr, ok := err.(*MalformedRecordError); ok {
				if rep != nil {
					rep.Add(mr)
					continue
				}
			}
			return nil, err
		}
		out = append(out, v)
	}
}

// LoadCustomers reads the customers dataset out of src.
func LoadCustomers(src Source, rep *Report) ([]Customer, error) {
	return load(DatasetCustomer, src, rep, DecodeCustomer)
}

// LoadProducts reads the products dataset out of src.
func LoadProducts(src Source, rep *Report) ([]Product, error) {
	return load(DatasetProduct, src, rep, DecodeProduct)
}

// LoadOrders reads the orders dataset out of src.
func LoadOrders(src Source, rep *Report) ([]Order, error) {
	return load(DatasetOrder, src, rep, DecodeOrder)
}
