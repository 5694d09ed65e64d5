package fake

import (
	"io"
	"strconv"
	"sync"
)

// OrderSource is an opk.Source which generates n fake raw order
// records, shaped like records coming off a json or kafka source. Safe
// for concurrent use.
type OrderSource struct {
	mu           sync.Mutex
	g            *Generator
	n            int64
	numCustomers int64
	numProducts  int64
	next         int64
}

// NewOrderSource creates an OrderSource yielding n orders.
func NewOrderSource(seed, n, numCustomers, numProducts int64) *OrderSource {
	return &OrderSource{
		g:            NewGenerator(seed),
		n:            n,
		numCustomers: numCustomers,
		numProducts:  numProducts,
		next:         1,
	}
}

// Record implements opk.Source.
func (s *OrderSource) Record() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next > s.n {
		return nil, io.EOF
	}
	o := s.g.Order(s.next, s.numCustomers, s.numProducts)
	s.next++
	return map[string]interface{}{
		"orderid":        strconv.FormatInt(o.ID, 10),
		"orderdate":      o.Date.Format("2006-01-02"),
		"customer":       strconv.FormatInt(o.CustomerID, 10),
		"product":        strconv.FormatInt(o.ProductID, 10),
		"units":          strconv.FormatInt(o.Units, 10),
		"billingaddress": o.BillingAddress,
		"remarks":        o.Remarks,
	}, nil
}
