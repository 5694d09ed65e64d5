// Package kafka provides an opk.Source consuming order records from a
// kafka topic, for deployments where orders stream in rather than
// arriving as file exports. Messages may be json objects or
// avro-encoded with the order schema in this package.
package kafka

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"log"

	"github.com/Shopify/sarama"
	cluster "github.com/bsm/sarama-cluster"
	"github.com/elodina/go-avro"
	"github.com/pkg/errors"
)

// OrderSchema is the avro schema for order messages. The field names
// match the csv export columns, so both intakes decode to the same raw
// record shape.
const OrderSchema = `{
	"type": "record",
	"name": "Order",
	"fields": [
		{"name": "orderid", "type": "long"},
		{"name": "orderdate", "type": "string"},
		{"name": "customer", "type": "long"},
		{"name": "product", "type": "long"},
		{"name": "units", "type": "long"},
		{"name": "billingaddress", "type": "string"},
		{"name": "remarks", "type": "string"}
	]
}`

// Source implements the opk.Source interface using kafka as a data
// source.
type Source struct {
	Hosts   []string
	Topics  []string
	Group   string
	Type    string // "json" or "avro"
	MaxMsgs int
	numMsgs int

	schema   avro.Schema
	consumer *cluster.Consumer
}

// NewSource gets a new Source with default configuration.
func NewSource() *Source {
	return &Source{
		Hosts:  []string{"localhost:9092"},
		Topics: []string{"orders"},
		Group:  "opk",
		Type:   "json",
	}
}

// Record returns the decoded value of the next kafka message as a
// map[string]interface{} ready for opk.DecodeOrder.
func (s *Source) Record() (interface{}, error) {
	if s.MaxMsgs > 0 {
		s.numMsgs++
		if s.numMsgs > s.MaxMsgs {
			return nil, io.EOF
		}
	}
	msg, ok := <-s.consumer.Messages()
	if !ok {
		return nil, errors.New("messages channel closed")
	}
	rec, err := s.decode(msg.Value)
	if err != nil {
		return nil, err
	}
	s.consumer.MarkOffset(msg, "") // mark message as processed
	return rec, nil
}

func (s *Source) decode(val []byte) (map[string]interface{}, error) {
	switch s.Type {
	case "json":
		parsed := make(map[string]interface{})
		if err := json.Unmarshal(val, &parsed); err != nil {
			return nil, errors.Wrap(err, "unmarshaling json")
		}
		return parsed, nil
	case "avro":
		return avroDecode(s.schema, val)
	default:
		return nil, errors.Errorf("unsupported kafka message type: '%v'", s.Type)
	}
}

// Open initializes the kafka consumer.
func (s *Source) Open() error {
	if s.Type == "avro" {
		var err error
		s.schema, err = avro.ParseSchema(OrderSchema)
		if err != nil {
			return errors.Wrap(err, "parsing order schema")
		}
	}
	sarama.Logger = log.New(ioutil.Discard, "", 0)
	config := cluster.NewConfig()
	config.Config.Version = sarama.V0_10_0_0
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Group.Return.Notifications = true

	var err error
	s.consumer, err = cluster.NewConsumer(s.Hosts, s.Group, s.Topics, config)
	if err != nil {
		return errors.Wrap(err, "getting new consumer")
	}

	go func() {
		for err := range s.consumer.Errors() {
			log.Printf("kafka error: %s", err.Error())
		}
	}()
	go func() {
		for ntf := range s.consumer.Notifications() {
			log.Printf("kafka rebalanced: %+v", ntf)
		}
	}()
	return nil
}

// Close closes the underlying kafka consumer.
func (s *Source) Close() error {
	err := s.consumer.Close()
	return errors.Wrap(err, "closing kafka consumer")
}

func avroDecode(schema avro.Schema, data []byte) (map[string]interface{}, error) {
	reader := avro.NewGenericDatumReader()
	// SetSchema must be called before calling Read
	reader.SetSchema(schema)
	decoder := avro.NewBinaryDecoder(data)
	decoded := avro.NewGenericRecord(schema)
	if err := reader.Read(decoded, decoder); err != nil {
		return nil, errors.Wrap(err, "reading generic datum")
	}
	return decoded.Map(), nil
}
