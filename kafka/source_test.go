package kafka

import (
	"testing"

	"github.com/elodina/go-avro"
	opk "github.com/iomega/opk"
	"github.com/linkedin/goavro"
)

var orderValue = map[string]interface{}{
	"orderid":        int64(100),
	"orderdate":      "2024-03-15",
	"customer":       int64(1),
	"product":        int64(10),
	"units":          int64(2),
	"billingaddress": "12 Main St",
	"remarks":        "great",
}

func avroEncodedOrder(t *testing.T) []byte {
	t.Helper()
	codec, err := goavro.NewCodec(OrderSchema)
	if err != nil {
		t.Fatal(err)
	}
	data, err := codec.BinaryFromNative(nil, orderValue)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestAvroDecode(t *testing.T) {
	schema, err := avro.ParseSchema(OrderSchema)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := avroDecode(schema, avroEncodedOrder(t))
	if err != nil {
		t.Fatal(err)
	}
	if rec["orderid"].(int64) != 100 || rec["remarks"].(string) != "great" {
		t.Fatalf("unexpected decoded map: %v", rec)
	}

	order, err := opk.DecodeOrder(rec)
	if err != nil {
		t.Fatalf("decoding order from avro record: %v", err)
	}
	if order.ID != 100 || order.CustomerID != 1 || order.ProductID != 10 || order.Units != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestSourceDecodeJSON(t *testing.T) {
	s := NewSource()
	rec, err := s.decode([]byte(`{"orderid": 100, "customer": 1, "product": 10, "units": 2}`))
	if err != nil {
		t.Fatal(err)
	}
	order, err := opk.DecodeOrder(rec)
	if err != nil {
		t.Fatalf("decoding order from json record: %v", err)
	}
	if order.ID != 100 || order.Units != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestSourceDecodeAvro(t *testing.T) {
	s := NewSource()
	s.Type = "avro"
	var err error
	s.schema, err = avro.ParseSchema(OrderSchema)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := s.decode(avroEncodedOrder(t))
	if err != nil {
		t.Fatal(err)
	}
	if rec["orderdate"].(string) != "2024-03-15" {
		t.Fatalf("unexpected decoded map: %v", rec)
	}
}

func TestSourceDecodeUnknownType(t *testing.T) {
	s := NewSource()
	s.Type = "msgpack"
	if _, err := s.decode([]byte("{}")); err == nil {
		t.Fatal("expected error for unsupported message type")
	}
}
