// Package kafkagen produces fake order messages to a kafka topic, for
// exercising the kafka order source without a real order system.
package kafkagen

import (
	"encoding/json"
	"log"
	"time"

	"github.com/Shopify/sarama"
	opk "github.com/iomega/opk"
	"github.com/iomega/opk/fake"
	"github.com/iomega/opk/kafka"
	"github.com/linkedin/goavro"
	"github.com/pkg/errors"
)

// Main holds the execution state for the kafka order generator.
type Main struct {
	Hosts     []string      `help:"Comma separated list of host:port pairs for kafka."`
	Topic     string        `help:"Topic to produce orders to."`
	Format    string        `help:"Message encoding: json or avro."`
	Rate      time.Duration `help:"Time between messages."`
	Count     int           `help:"Number of orders to produce. 0 means run forever."`
	Seed      int64         `help:"Random seed for the fake order stream."`
	Customers int64         `help:"Customer id range for generated orders."`
	Products  int64         `help:"Product id range for generated orders."`
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Hosts:     []string{"localhost:9092"},
		Topic:     "orders",
		Format:    "json",
		Rate:      time.Second,
		Seed:      0,
		Customers: 20,
		Products:  10,
	}
}

// Run produces fake orders until Count is reached.
func (m *Main) Run() error {
	encode, err := m.encoder()
	if err != nil {
		return err
	}
	conf := sarama.NewConfig()
	conf.Version = sarama.V0_10_0_0
	conf.Producer.Return.Successes = true
	producer, err := sarama.NewSyncProducer(m.Hosts, conf)
	if err != nil {
		return errors.Wrap(err, "getting new producer")
	}
	defer producer.Close()

	gen := fake.NewGenerator(m.Seed)
	sent := 0
	for ticker := time.NewTicker(m.Rate); m.Count == 0 || sent < m.Count; <-ticker.C {
		order := gen.Order(int64(sent+1), m.Customers, m.Products)
		val, err := encode(order)
		if err != nil {
			return errors.Wrap(err, "encoding order")
		}
		msg := &sarama.ProducerMessage{Topic: m.Topic, Value: sarama.ByteEncoder(val)}
		if _, _, err := producer.SendMessage(msg); err != nil {
			log.Printf("error sending message: '%v', backing off", err)
			time.Sleep(time.Second * 10)
			continue
		}
		sent++
	}
	return nil
}

type orderEncoder func(o opk.Order) ([]byte, error)

func (m *Main) encoder() (orderEncoder, error) {
	switch m.Format {
	case "json":
		return encodeJSON, nil
	case "avro":
		codec, err := goavro.NewCodec(kafka.OrderSchema)
		if err != nil {
			return nil, errors.Wrap(err, "getting avro codec")
		}
		return func(o opk.Order) ([]byte, error) {
			return encodeAvro(codec, o)
		}, nil
	default:
		return nil, errors.Errorf("unsupported format '%v'", m.Format)
	}
}

func encodeJSON(o opk.Order) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"orderid":        o.ID,
		"orderdate":      o.Date.Format("2006-01-02"),
		"customer":       o.CustomerID,
		"product":        o.ProductID,
		"units":          o.Units,
		"billingaddress": o.BillingAddress,
		"remarks":        o.Remarks,
	})
}

func encodeAvro(codec *goavro.Codec, o opk.Order) ([]byte, error) {
	data, err := codec.BinaryFromNative(nil, map[string]interface{}{
		"orderid":        o.ID,
		"orderdate":      o.Date.Format("2006-01-02"),
		"customer":       o.CustomerID,
		"product":        o.ProductID,
		"units":          o.Units,
		"billingaddress": o.BillingAddress,
		"remarks":        o.Remarks,
	})
	return data, errors.Wrap(err, "encoding avro record")
}
