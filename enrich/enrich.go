// Package enrich joins orders against customers and products and
// builds the enriched output rows. The tier classifier and the
// sentiment scorer are injected as plain functions, so the engine has
// no knowledge of credit policy or remote services.
package enrich

import (
	"context"
	"sync"
	"time"

	opk "github.com/iomega/opk"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// TierFunc maps a credit value to a tier. An error means no tier is
// defined for that credit; the row is reported and skipped.
type TierFunc func(credit int64) (opk.Tier, error)

// ScoreFunc produces a sentiment score for a piece of text, or None
// when scoring failed. It must be safe for concurrent use.
type ScoreFunc func(ctx context.Context, text string) mo.Option[float64]

// Option is a functional option for the Enricher.
type Option func(e *Enricher)

// OptConcurrency sets how many workers enrich orders in parallel. The
// scoring call is the only blocking part of enrichment, so this is
// effectively the number of in-flight scoring calls. Output order is
// stable regardless.
func OptConcurrency(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// OptCustomerFilter restricts enrichment to orders whose customer
// passes keep. Orders filtered out produce no output row.
func OptCustomerFilter(keep func(customerID int64) bool) Option {
	return func(e *Enricher) {
		e.keep = keep
	}
}

// OptStatter sets the stats collector.
func OptStatter(s opk.Statter) Option {
	return func(e *Enricher) {
		e.stats = s
	}
}

// Enricher performs the inner join and per-row enrichment.
type Enricher struct {
	tier        TierFunc
	score       ScoreFunc
	concurrency int
	keep        func(int64) bool
	stats       opk.Statter
}

// New returns an Enricher using tier and score. score may be nil, in
// which case every row carries no sentiment.
func New(tier TierFunc, score ScoreFunc, opts ...Option) *Enricher {
	e := &Enricher{
		tier:        tier,
		score:       score,
		concurrency: 1,
		stats:       opk.NopStatter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich inner-joins orders with customers and products on their ids
// and builds one EnrichedOrder per match, in the input order of
// orders. Orders with no matching customer or product are dropped.
// Rows violating a field constraint (e.g. a credit with no tier) are
// added to rep and skipped. The only error Enrich returns is a context
// cancellation, in which case in-flight work is abandoned and partial
// results are discarded.
func (e *Enricher) Enrich(ctx context.Context, orders []opk.Order, customers []opk.Customer, products []opk.Product, rep *opk.Report) ([]opk.EnrichedOrder, error) {
	custByID := lo.SliceToMap(customers, func(c opk.Customer) (int64, opk.Customer) { return c.ID, c })
	prodByID := lo.SliceToMap(products, func(p opk.Product) (int64, opk.Product) { return p.ID, p })

	results := make([]*opk.EnrichedOrder, len(orders))
	if e.concurrency <= 1 {
		for i := range orders {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = e.buildOne(ctx, orders[i], custByID, prodByID, rep)
		}
	} else {
		jobs := make(chan int)
		wg := sync.WaitGroup{}
		for w := 0; w < e.concurrency; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = e.buildOne(ctx, orders[i], custByID, prodByID, rep)
				}
			}()
		}
	feed:
		for i := range orders {
			select {
			case jobs <- i:
			case <-ctx.Done():
				break feed
			}
		}
		close(jobs)
		wg.Wait()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]opk.EnrichedOrder, 0, len(orders))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	e.stats.Count("enrich.rows", int64(len(out)), 1)
	return out, nil
}

func (e *Enricher) buildOne(ctx context.Context, o opk.Order, custByID map[int64]opk.Customer, prodByID map[int64]opk.Product, rep *opk.Report) *opk.EnrichedOrder {
	cust, ok := custByID[o.CustomerID]
	if !ok {
		e.stats.Count("enrich.no-customer", 1, 1)
		return nil
	}
	prod, ok := prodByID[o.ProductID]
	if !ok {
		e.stats.Count("enrich.no-product", 1, 1)
		return nil
	}
	if e.keep != nil && !e.keep(cust.ID) {
		e.stats.Count("enrich.filtered", 1, 1)
		return nil
	}
	tier, err := e.tier(cust.Credit)
	if err != nil {
		if rep != nil {
			rep.Add(opk.Malformed(opk.DatasetCustomer, cust.ID, "credit", "no tier for credit %d", cust.Credit))
		}
		e.stats.Count("enrich.malformed", 1, 1)
		return nil
	}

	orderAmount := prod.UnitPrice * float64(o.Units)
	discountAmount := orderAmount * prod.ItemDiscount / 100

	sent := mo.None[float64]()
	if e.score != nil {
		start := time.Now()
		sent = e.score(ctx, o.Remarks)
		e.stats.Timing("enrich.score", time.Since(start), 1)
		if sent.IsAbsent() {
			e.stats.Count("enrich.score-missing", 1, 1)
		}
	}

	return &opk.EnrichedOrder{
		OrderID:          o.ID,
		OrderDate:        o.Date,
		CustomerID:       cust.ID,
		CustomerFullName: cust.FullName,
		CustomerAddress:  cust.Address,
		CustomerTier:     tier,
		CustomerStatus:   cust.Status,
		ProductID:        prod.ID,
		ProductTitle:     prod.Title,
		OrderAmount:      orderAmount,
		UnitPrice:        prod.UnitPrice,
		DiscountAmount:   discountAmount,
		BillingAddress:   o.BillingAddress,
		Units:            o.Units,
		Remarks:          o.Remarks,
		Sentiment:        sent,
	}
}

// CustomerTier is one row of the tier-annotated customer listing.
type CustomerTier struct {
	CustomerID int64
	FullName   string
	Address    string
	Credit     int64
	Status     string
	Tier       opk.Tier
}

// ClassifyCustomers annotates every customer with its tier. Customers
// whose credit has no defined tier are reported and omitted.
func ClassifyCustomers(customers []opk.Customer, tier TierFunc, rep *opk.Report) []CustomerTier {
	out := make([]CustomerTier, 0, len(customers))
	for _, c := range customers {
		t, err := tier(c.Credit)
		if err != nil {
			if rep != nil {
				rep.Add(opk.Malformed(opk.DatasetCustomer, c.ID, "credit", "no tier for credit %d", c.Credit))
			}
			continue
		}
		out = append(out, CustomerTier{
			CustomerID: c.ID,
			FullName:   c.FullName,
			Address:    c.Address,
			Credit:     c.Credit,
			Status:     c.Status,
			Tier:       t,
		})
	}
	return out
}
