// Package fake generates deterministic fake customers, products, and
// orders for tests, demos, and the datagen command.
package fake

import (
	"fmt"
	"math/rand"
	"time"

	opk "github.com/iomega/opk"
)

var (
	firstNames = []string{"Ada", "Bruno", "Carla", "Dmitri", "Elena", "Farid", "Grace", "Hiro", "Ines", "Jonas", "Kavya", "Luis", "Mona", "Nils", "Oona", "Pavel"}
	lastNames  = []string{"Alvarez", "Brandt", "Chen", "Duarte", "Eriksen", "Fischer", "Gupta", "Haddad", "Ivanov", "Jensen", "Kim", "Larsen", "Moreau", "Novak"}
	streets    = []string{"Main St", "Oak Ave", "Harbor Rd", "Mill Ln", "Station Way", "Elm Dr", "Lake View", "High St"}
	cities     = []string{"Springfield", "Riverton", "Lakewood", "Fairview", "Brookside", "Milltown"}
	statuses   = []string{"active", "active", "active", "dormant", "closed"}

	productAdjs  = []string{"Compact", "Deluxe", "Portable", "Wireless", "Rugged", "Classic", "Smart", "Eco"}
	productNouns = []string{"Speaker", "Kettle", "Backpack", "Lamp", "Monitor", "Blender", "Router", "Chair"}

	// remark phrases stay comma-free so they survive naive csv exports
	remarkPool = []string{
		"great",
		"arrived on time",
		"exactly as described",
		"would buy again",
		"packaging was damaged",
		"terrible experience",
		"missing parts",
		"better than expected",
		"works fine",
		"",
	}
)

// Generator produces fake records. The same seed yields the same
// series on a given version of Go.
type Generator struct {
	rand *rand.Rand
}

// NewGenerator creates a Generator with the given random seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rand: rand.New(rand.NewSource(seed))}
}

// Customer generates the customer with the given id.
func (g *Generator) Customer(id int64) opk.Customer {
	return opk.Customer{
		ID:       id,
		FullName: g.pick(firstNames) + " " + g.pick(lastNames),
		Address:  g.address(),
		Credit:   1 + g.rand.Int63n(50000),
		Status:   g.pick(statuses),
	}
}

// Product generates the product with the given id.
func (g *Generator) Product(id int64) opk.Product {
	return opk.Product{
		ID:           id,
		Title:        g.pick(productAdjs) + " " + g.pick(productNouns),
		UnitPrice:    float64(1+g.rand.Intn(49999)) / 100,
		ItemDiscount: float64(g.rand.Intn(31)),
	}
}

// Order generates the order with the given id, referencing customers
// 1..numCustomers and products 1..numProducts.
func (g *Generator) Order(id int64, numCustomers, numProducts int64) opk.Order {
	return opk.Order{
		ID:             id,
		Date:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, g.rand.Intn(365)),
		CustomerID:     1 + g.rand.Int63n(numCustomers),
		ProductID:      1 + g.rand.Int63n(numProducts),
		Units:          1 + g.rand.Int63n(9),
		BillingAddress: g.address(),
		Remarks:        g.pick(remarkPool),
	}
}

// Customers generates customers with ids 1..n.
func (g *Generator) Customers(n int64) []opk.Customer {
	out := make([]opk.Customer, 0, n)
	for id := int64(1); id <= n; id++ {
		out = append(out, g.Customer(id))
	}
	return out
}

// Products generates products with ids 1..n.
func (g *Generator) Products(n int64) []opk.Product {
	out := make([]opk.Product, 0, n)
	for id := int64(1); id <= n; id++ {
		out = append(out, g.Product(id))
	}
	return out
}

// Orders generates orders with ids 1..n over the given key ranges.
func (g *Generator) Orders(n, numCustomers, numProducts int64) []opk.Order {
	out := make([]opk.Order, 0, n)
	for id := int64(1); id <= n; id++ {
		out = append(out, g.Order(id, numCustomers, numProducts))
	}
	return out
}

func (g *Generator) pick(pool []string) string {
	return pool[g.rand.Intn(len(pool))]
}

func (g *Generator) address() string {
	return fmt.Sprintf("%d %s %s", 1+g.rand.Intn(999), g.pick(streets), g.pick(cities))
}
