// Package pipeline wires the sources, the enrichment engine, and the
// parquet sink into the end to end order enrichment run.
package pipeline

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	opk "github.com/iomega/opk"
	"github.com/iomega/opk/catalog"
	"github.com/iomega/opk/csv"
	"github.com/iomega/opk/enrich"
	"github.com/iomega/opk/file"
	"github.com/iomega/opk/json"
	"github.com/iomega/opk/kafka"
	"github.com/iomega/opk/metrics"
	"github.com/iomega/opk/parquet"
	"github.com/iomega/opk/s3"
	"github.com/iomega/opk/sentiment"
	"github.com/pkg/errors"
)

// Main holds the execution state for an enrichment run.
type Main struct {
	Customers string `help:"Customer dataset locator: file, directory, glob, or s3://bucket/prefix. CSV with a header row."`
	Products  string `help:"Product dataset locator: file, directory, glob, or s3://bucket/prefix. JSON objects or one array."`
	Orders    string `help:"Order dataset locator like the customer one, or 'kafka' to consume from a topic. CSV with a header row."`
	Region    string `help:"AWS region, used when a locator points at S3."`

	KafkaHosts []string `help:"Comma separated list of host:port pairs for kafka."`
	KafkaGroup string   `help:"Kafka group name for the order consumer."`
	KafkaTopic string   `help:"Kafka topic to read orders from."`
	KafkaType  string   `help:"Kafka message encoding: json or avro."`
	KafkaMax   int      `help:"Maximum number of kafka messages to consume. 0 means no limit."`

	SentimentURL     string        `help:"Sentiment scoring endpoint. Empty disables scoring; every row gets the placeholder score."`
	SentimentKey     string        `help:"Subscription key sent with each scoring request."`
	SentimentTimeout time.Duration `help:"Timeout per scoring attempt."`
	SentimentRetries int           `help:"Number of retries after a failed scoring attempt."`
	CachePath        string        `help:"Directory for the sentiment score cache. Empty disables caching."`

	Output      string `help:"Path of the parquet file to write."`
	CatalogPath string `help:"Path of the catalog database. Empty skips table registration."`
	Table       string `help:"Table name to register the output under."`

	Concurrency int    `help:"Number of orders enriched in parallel."`
	CustomerIDs string `help:"Comma separated customer ids to keep. Empty keeps all customers."`
}

// NewMain returns a new Main with default values.
func NewMain() *Main {
	return &Main{
		Customers:        "customers.csv",
		Products:         "products.json",
		Orders:           "orders.csv",
		Region:           "us-east-1",
		KafkaHosts:       []string{"localhost:9092"},
		KafkaGroup:       "opk",
		KafkaTopic:       "orders",
		KafkaType:        "json",
		SentimentTimeout: time.Second * 10,
		SentimentRetries: 2,
		Output:           "enriched_orders.parquet",
		Table:            "enriched_orders",
		Concurrency:      4,
	}
}

// Run executes the pipeline: load the three datasets, join and enrich,
// write parquet, and register the output table.
func (m *Main) Run() error {
	start := time.Now()
	ctx := context.Background()
	stats := metrics.NewCollector()
	rep := &opk.Report{}

	customers, products, orders, err := m.loadAll(rep)
	if err != nil {
		return err
	}
	log.Printf("loaded %d customers, %d products, %d orders", len(customers), len(products), len(orders))

	score, closeScorer, err := m.scorer()
	if err != nil {
		return err
	}
	if closeScorer != nil {
		defer closeScorer()
	}

	opts := []enrich.Option{
		enrich.OptConcurrency(m.Concurrency),
		enrich.OptStatter(stats),
	}
	keep, err := customerFilter(m.CustomerIDs)
	if err != nil {
		return err
	}
	if keep != nil {
		opts = append(opts, enrich.OptCustomerFilter(keep))
	}
	enricher := enrich.New(opk.ClassifyCredit, score, opts...)
	rows, err := enricher.Enrich(ctx, orders, customers, products, rep)
	if err != nil {
		return errors.Wrap(err, "enriching orders")
	}

	sink := parquet.NewSink(m.Output, parquet.OptStatter(stats))
	res, err := sink.Persist(ctx, rows)
	if err != nil {
		return errors.Wrap(err, "persisting enriched orders")
	}
	if err := m.register(res); err != nil {
		return err
	}

	log.Printf("wrote %d rows to %v in %v", res.RowsWritten, res.Files, time.Since(start))
	log.Println(rep.Summary())
	return nil
}

func (m *Main) loadAll(rep *opk.Report) (customers []opk.Customer, products []opk.Product, orders []opk.Order, err error) {
	custRaw, err := m.rawSource(m.Customers)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "opening customer source")
	}
	customers, err = opk.LoadCustomers(csv.NewSource(custRaw), rep)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "loading customers")
	}

	prodRaw, err := m.rawSource(m.Products)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "opening product source")
	}
	products, err = opk.LoadProducts(json.NewSourceFromRawSource(prodRaw), rep)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "loading products")
	}

	orderSrc, closeOrders, err := m.orderSource()
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "opening order source")
	}
	if closeOrders != nil {
		defer closeOrders()
	}
	orders, err = opk.LoadOrders(orderSrc, rep)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "loading orders")
	}
	return customers, products, orders, nil
}

// rawSource picks the raw byte source for a locator, local or S3.
func (m *Main) rawSource(locator string) (opk.RawSource, error) {
	if bucket, prefix, ok := s3.ParseLocator(locator); ok {
		return s3.NewRawSource(s3.OptBucket(bucket), s3.OptPrefix(prefix), s3.OptRegion(m.Region))
	}
	return file.NewRawSource(locator)
}

func (m *Main) orderSource() (opk.Source, func() error, error) {
	if m.Orders == "kafka" {
		src := kafka.NewSource()
		src.Hosts = m.KafkaHosts
		src.Group = m.KafkaGroup
		src.Topics = []string{m.KafkaTopic}
		src.Type = m.KafkaType
		src.MaxMsgs = m.KafkaMax
		if err := src.Open(); err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	}
	raw, err := m.rawSource(m.Orders)
	if err != nil {
		return nil, nil, err
	}
	return csv.NewSource(raw), nil, nil
}

func (m *Main) scorer() (enrich.ScoreFunc, func() error, error) {
	if m.SentimentURL == "" {
		return nil, nil, nil
	}
	client := sentiment.NewClient(m.SentimentURL,
		sentiment.OptKey(m.SentimentKey),
		sentiment.OptTimeout(m.SentimentTimeout),
		sentiment.OptRetries(m.SentimentRetries))
	if m.CachePath == "" {
		return client.Score, nil, nil
	}
	cache, err := sentiment.NewCache(m.CachePath, client)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening score cache")
	}
	return cache.Score, cache.Close, nil
}

func (m *Main) register(res opk.PersistResult) error {
	if m.CatalogPath == "" {
		return nil
	}
	cat, err := catalog.Open(m.CatalogPath)
	if err != nil {
		return errors.Wrap(err, "opening catalog")
	}
	defer cat.Close()
	err = cat.Register(catalog.Entry{
		Table: m.Table,
		Files: res.Files,
		Rows:  res.RowsWritten,
	})
	return errors.Wrapf(err, "registering table %s", m.Table)
}

func customerFilter(ids string) (func(int64) bool, error) {
	if ids == "" {
		return nil, nil
	}
	parts := strings.Split(ids, ",")
	keep := make(map[int64]struct{}, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing customer id '%v'", p)
		}
		keep[id] = struct{}{}
	}
	return func(id int64) bool {
		_, ok := keep[id]
		return ok
	}, nil
}
