package opk

import (
	"reflect"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestDecodeCustomer(t *testing.T) {
	c, err := DecodeCustomer(map[string]string{
		"customerid": "3",
		"fullname":   "Ada Chen",
		"address":    "12 Main St Springfield",
		"credit":     "1200",
		"status":     "active",
	})
	if err != nil {
		t.Fatalf("decoding customer: %v", err)
	}
	exp := Customer{ID: 3, FullName: "Ada Chen", Address: "12 Main St Springfield", Credit: 1200, Status: "active"}
	if !reflect.DeepEqual(c, exp) {
		t.Fatalf("got %+v, expected %+v", c, exp)
	}
}

func TestDecodeCustomerAltNames(t *testing.T) {
	// json decoders hand every number over as float64
	c, err := DecodeCustomer(map[string]interface{}{
		"id":     float64(7),
		"name":   "Bruno Kim",
		"credit": float64(400),
	})
	if err != nil {
		t.Fatalf("decoding customer: %v", err)
	}
	if c.ID != 7 || c.FullName != "Bruno Kim" || c.Credit != 400 {
		t.Fatalf("unexpected customer: %+v", c)
	}
	if c.Address != "" || c.Status != "" {
		t.Fatalf("optional fields should be empty: %+v", c)
	}
}

func TestDecodeCustomerMissingField(t *testing.T) {
	_, err := DecodeCustomer(map[string]string{"customerid": "1", "fullname": "X"})
	if errors.Cause(err) != ErrSchemaMismatch {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestDecodeCustomerBadCredit(t *testing.T) {
	_, err := DecodeCustomer(map[string]string{
		"customerid": "9",
		"fullname":   "X",
		"credit":     "lots",
	})
	mr, ok := err.(*MalformedRecordError)
	if !ok {
		t.Fatalf("expected malformed record error, got %v", err)
	}
	if mr.Dataset != DatasetCustomer || mr.Key != 9 || mr.Field != "credit" {
		t.Fatalf("unexpected error detail: %+v", mr)
	}
}

func TestDecodeProduct(t *testing.T) {
	p, err := DecodeProduct(map[string]interface{}{
		"productid":    "10",
		"title":        "Compact Kettle",
		"unitprice":    float64(99.5),
		"itemdiscount": float64(10),
	})
	if err != nil {
		t.Fatalf("decoding product: %v", err)
	}
	exp := Product{ID: 10, Title: "Compact Kettle", UnitPrice: 99.5, ItemDiscount: 10}
	if !reflect.DeepEqual(p, exp) {
		t.Fatalf("got %+v, expected %+v", p, exp)
	}
}

func TestDecodeProductConstraints(t *testing.T) {
	tests := []struct {
		name  string
		rec   map[string]string
		field string
	}{
		{
			name:  "negative price",
			rec:   map[string]string{"productid": "1", "title": "x", "unitprice": "-5", "itemdiscount": "0"},
			field: "unitprice",
		},
		{
			name:  "discount over 100",
			rec:   map[string]string{"productid": "2", "title": "x", "unitprice": "5", "itemdiscount": "120"},
			field: "itemdiscount",
		},
		{
			name:  "negative discount",
			rec:   map[string]string{"productid": "3", "title": "x", "unitprice": "5", "itemdiscount": "-1"},
			field: "itemdiscount",
		},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			_, err := DecodeProduct(tst.rec)
			mr, ok := err.(*MalformedRecordError)
			if !ok {
				t.Fatalf("expected malformed record error, got %v", err)
			}
			if mr.Field != tst.field {
				t.Fatalf("expected error on %s, got %+v", tst.field, mr)
			}
		})
	}
}

func TestDecodeOrder(t *testing.T) {
	o, err := DecodeOrder(map[string]string{
		"orderid":        "100",
		"orderdate":      "2024-03-15",
		"customer":       "1",
		"product":        "10",
		"units":          "2",
		"billingaddress": "9 Oak Ave Riverton",
		"remarks":        "great",
	})
	if err != nil {
		t.Fatalf("decoding order: %v", err)
	}
	exp := Order{
		ID:             100,
		Date:           time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		CustomerID:     1,
		ProductID:      10,
		Units:          2,
		BillingAddress: "9 Oak Ave Riverton",
		Remarks:        "great",
	}
	if !reflect.DeepEqual(o, exp) {
		t.Fatalf("got %+v, expected %+v", o, exp)
	}
}

func TestDecodeOrderDateLayouts(t *testing.T) {
	for _, date := range []string{"2024-03-15", "03/15/2024", "2024-03-15T00:00:00Z"} {
		o, err := DecodeOrder(map[string]string{
			"orderid": "1", "orderdate": date, "customer": "1", "product": "1", "units": "1",
		})
		if err != nil {
			t.Fatalf("decoding order with date %q: %v", date, err)
		}
		if !o.Date.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("date %q parsed to %v", date, o.Date)
		}
	}
}

func TestDecodeOrderMissingDate(t *testing.T) {
	recs := []map[string]string{
		{"orderid": "1", "customer": "1", "product": "1", "units": "1"},
		{"orderid": "1", "orderdate": "", "customer": "1", "product": "1", "units": "1"},
	}
	for _, rec := range recs {
		o, err := DecodeOrder(rec)
		if err != nil {
			t.Fatalf("decoding order %v: %v", rec, err)
		}
		if !o.Date.IsZero() {
			t.Fatalf("expected zero date, got %v", o.Date)
		}
	}
}

func TestDecodeCustomerNullCredit(t *testing.T) {
	// a json null value is present-but-empty and fails only its row
	_, err := DecodeCustomer(map[string]interface{}{
		"customerid": float64(5),
		"fullname":   "X",
		"credit":     nil,
	})
	mr, ok := err.(*MalformedRecordError)
	if !ok {
		t.Fatalf("expected malformed record error, got %v", err)
	}
	if mr.Key != 5 || mr.Field != "credit" {
		t.Fatalf("unexpected error detail: %+v", mr)
	}
}

func TestDecodeOrderBadUnits(t *testing.T) {
	for _, units := range []string{"0", "-3", "2.5"} {
		_, err := DecodeOrder(map[string]string{
			"orderid": "4", "customer": "1", "product": "1", "units": units,
		})
		mr, ok := err.(*MalformedRecordError)
		if !ok {
			t.Fatalf("units %q: expected malformed record error, got %v", units, err)
		}
		if mr.Key != 4 || mr.Field != "units" {
			t.Fatalf("units %q: unexpected error detail: %+v", units, mr)
		}
	}
}

func TestDecodeUnsupportedRecordType(t *testing.T) {
	if _, err := DecodeCustomer(42); err == nil {
		t.Fatal("expected error decoding a non-map record")
	}
}
