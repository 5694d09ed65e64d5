package opk

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/mo"
)

// DatasetKind identifies one of the three logical input datasets.
type DatasetKind int

const (
	DatasetCustomer DatasetKind = iota
	DatasetProduct
	DatasetOrder
)

func (k DatasetKind) String() string {
	switch k {
	case DatasetCustomer:
		return "customer"
	case DatasetProduct:
		return "product"
	case DatasetOrder:
		return "order"
	}
	return "unknown"
}

// Customer is one row of the customers dataset. Immutable after load.
type Customer struct {
	ID       int64
	FullName string
	Address  string
	Credit   int64
	Status   string
}

// Product is one row of the products dataset. ItemDiscount is a
// percentage in [0,100]. Immutable after load.
type Product struct {
	ID           int64
	Title        string
	UnitPrice    float64
	ItemDiscount float64
}

// Order is one row of the orders dataset. CustomerID and ProductID are
// foreign keys into the other two datasets. Immutable after load.
type Order struct {
	ID             int64
	Date           time.Time
	CustomerID     int64
	ProductID      int64
	Units          int64
	BillingAddress string
	Remarks        string
}

// EnrichedOrder is the output row: one per (order, customer, product)
// match. Sentiment is None when the scoring service could not produce
// a score; the -1 sentinel only exists in the persisted output.
type EnrichedOrder struct {
	OrderID          int64
	OrderDate        time.Time
	CustomerID       int64
	CustomerFullName string
	CustomerAddress  string
	CustomerTier     Tier
	CustomerStatus   string
	ProductID        int64
	ProductTitle     string
	OrderAmount      float64
	UnitPrice        float64
	DiscountAmount   float64
	BillingAddress   string
	Units            int64
	Remarks          string
	Sentiment        mo.Option[float64]
}

// ScoreSentinel is the value the persisted sentiment column carries
// when no score is available. It overloads the legitimate low end of
// the score range, which is why it exists only at the sink boundary.
const ScoreSentinel = -1.0

// Parser represents a single method for parsing a raw string field to
// a typed value.
type Parser interface {
	Parse(string) (interface{}, error)
}

// IntParser parses integer fields. Values that arrive as floats with
// no fractional part (a json decoder gives every number as float64)
// are accepted.
type IntParser struct{}

// FloatParser parses float fields.
type FloatParser struct{}

// TimeParser parses date fields, trying each layout in turn.
type TimeParser struct {
	Layouts []string
}

// Parse parses an integer string to an int64 value.
func (p IntParser) Parse(field string) (interface{}, error) {
	if n, err := strconv.ParseInt(field, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return nil, err
	}
	n := int64(f)
	if float64(n) != f {
		return nil, errors.Errorf("%s is not an integer", field)
	}
	return n, nil
}

// Parse parses a float string to a float64 value.
func (p FloatParser) Parse(field string) (interface{}, error) {
	return strconv.ParseFloat(field, 64)
}

// Parse parses a date string to a time.Time value.
func (p TimeParser) Parse(field string) (interface{}, error) {
	var err error
	for _, layout := range p.Layouts {
		var t time.Time
		t, err = time.Parse(layout, field)
		if err == nil {
			return t, nil
		}
	}
	return nil, errors.Wrapf(err, "no layout matched %q", field)
}

// dateLayouts are the date formats seen in order exports.
var dateLayouts = []string{"2006-01-02", "01/02/2006", time.RFC3339}

// rawFields wraps one raw record with typed field access. Raw records
// come out of sources as map[string]string (csv) or
// map[string]interface{} (json, kafka); both are normalized to
// strings so the same Parsers serve every source.
type rawFields struct {
	kind DatasetKind
	m    map[string]string
}

func newRawFields(kind DatasetKind, rec interface{}) (rawFields, error) {
	switch rec := rec.(type) {
	case map[string]string:
		return rawFields{kind: kind, m: rec}, nil
	case map[string]interface{}:
		m := make(map[string]string, len(rec))
		for k, v := range rec {
			switch v := v.(type) {
			case nil:
				// a json null stays present-but-empty, like an empty
				// csv cell, so it fails only its own row
				m[k] = ""
			case string:
				m[k] = v
			case float64:
				m[k] = strconv.FormatFloat(v, 'f', -1, 64)
			case int64:
				m[k] = strconv.FormatInt(v, 10)
			case int32:
				m[k] = strconv.FormatInt(int64(v), 10)
			case bool:
				m[k] = strconv.FormatBool(v)
			default:
				return rawFields{}, Malformed(kind, 0, k, "unsupported value type %T", v)
			}
		}
		return rawFields{kind: kind, m: m}, nil
	default:
		return rawFields{}, errors.Errorf("unsupported %v record type %T", kind, rec)
	}
}

// lookup returns the first present field among names. Datasets from
// different exports use slightly different column names for the same
// field (e.g. "customer" vs "customerid" on orders), so every getter
// takes the accepted names in preference order.
func (r rawFields) lookup(names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := r.m[n]; ok {
			return v, true
		}
	}
	return "", false
}

func (r rawFields) str(names ...string) (string, error) {
	v, ok := r.lookup(names...)
	if !ok {
		return "", errors.Wrapf(ErrSchemaMismatch, "%v record has no %q field", r.kind, names[0])
	}
	return v, nil
}

func (r rawFields) optStr(names ...string) string {
	v, _ := r.lookup(names...)
	return v
}

func (r rawFields) int(names ...string) (int64, error) {
	v, err := r.str(names...)
	if err != nil {
		return 0, err
	}
	n, err := IntParser{}.Parse(v)
	if err != nil {
		return 0, Malformed(r.kind, 0, names[0], "parsing %q: %v", v, err)
	}
	return n.(int64), nil
}

func (r rawFields) float(names ...string) (float64, error) {
	v, err := r.str(names...)
	if err != nil {
		return 0, err
	}
	f, err := FloatParser{}.Parse(v)
	if err != nil {
		return 0, Malformed(r.kind, 0, names[0], "parsing %q: %v", v, err)
	}
	return f.(float64), nil
}

func (r rawFields) optDate(names ...string) (time.Time, error) {
	v, ok := r.lookup(names...)
	if !ok || v == "" {
		return time.Time{}, nil
	}
	t, err := (TimeParser{Layouts: dateLayouts}).Parse(v)
	if err != nil {
		return time.Time{}, Malformed(r.kind, 0, names[0], "parsing %q: %v", v, err)
	}
	return t.(time.Time), nil
}

// DecodeCustomer decodes one raw customer record. A missing required
// field yields a schema mismatch error; an unparseable or
// constraint-violating value yields a *MalformedRecordError.
func DecodeCustomer(rec interface{}) (Customer, error) {
	r, err := newRawFields(DatasetCustomer, rec)
	if err != nil {
		return Customer{}, err
	}
	c := Customer{
		Address: r.optStr("address"),
		Status:  r.optStr("status"),
	}
	if c.ID, err = r.int("customerid", "id"); err != nil {
		return Customer{}, err
	}
	if c.FullName, err = r.str("fullname", "name"); err != nil {
		return Customer{}, err
	}
	if c.Credit, err = r.int("credit"); err != nil {
		return Customer{}, keyed(err, c.ID)
	}
	return c, nil
}

// DecodeProduct decodes one raw product record.
func DecodeProduct(rec interface{}) (Product, error) {
	r, err := newRawFields(DatasetProduct, rec)
	if err != nil {
		return Product{}, err
	}
	var p Product
	if p.ID, err = r.int("productid", "id"); err != nil {
		return Product{}, err
	}
	if p.Title, err = r.str("title"); err != nil {
		return Product{}, err
	}
	if p.UnitPrice, err = r.float("unitprice"); err != nil {
		return Product{}, keyed(err, p.ID)
	}
	if p.ItemDiscount, err = r.float("itemdiscount", "itemdiscountpercent"); err != nil {
		return Product{}, keyed(err, p.ID)
	}
	if p.UnitPrice < 0 {
		return Product{}, Malformed(DatasetProduct, p.ID, "unitprice", "negative price %v", p.UnitPrice)
	}
	if p.ItemDiscount < 0 || p.ItemDiscount > 100 {
		return Product{}, Malformed(DatasetProduct, p.ID, "itemdiscount", "discount %v outside [0,100]", p.ItemDiscount)
	}
	return p, nil
}

// DecodeOrder decodes one raw order record.
func DecodeOrder(rec interface{}) (Order, error) {
	r, err := newRawFields(DatasetOrder, rec)
	if err != nil {
		return Order{}, err
	}
	o := Order{
		BillingAddress: r.optStr("billingaddress"),
		Remarks:        r.optStr("remarks"),
	}
	if o.ID, err = r.int("orderid", "id"); err != nil {
		return Order{}, err
	}
	if o.CustomerID, err = r.int("customer", "customerid"); err != nil {
		return Order{}, keyed(err, o.ID)
	}
	if o.ProductID, err = r.int("product", "productid"); err != nil {
		return Order{}, keyed(err, o.ID)
	}
	if o.Units, err = r.int("units"); err != nil {
		return Order{}, keyed(err, o.ID)
	}
	if o.Date, err = r.optDate("orderdate"); err != nil {
		return Order{}, keyed(err, o.ID)
	}
	if o.Units <= 0 {
		return Order{}, Malformed(DatasetOrder, o.ID, "units", "units must be positive, got %d", o.Units)
	}
	return o, nil
}

// keyed fills in the record id on a malformed-record error once the id
// is known.
func keyed(err error, id int64) error {
	if mr, ok := err.(*MalformedRecordError); ok && mr.Key == 0 {
		mr.Key = id
	}
	return err
}
