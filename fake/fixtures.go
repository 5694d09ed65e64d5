package fake

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	opk "github.com/iomega/opk"
	"github.com/pkg/errors"
)

// Main holds the configuration for the datagen command, which writes a
// consistent set of fixture files for the three datasets.
type Main struct {
	Dir       string `help:"Directory to write fixture files into."`
	Customers int64  `help:"Number of customers to generate."`
	Products  int64  `help:"Number of products to generate."`
	Orders    int64  `help:"Number of orders to generate."`
	Seed      int64  `help:"Random seed. The same seed writes the same files."`
}

// NewMain gets a new Main with default values.
func NewMain() *Main {
	return &Main{
		Dir:       "fixtures",
		Customers: 20,
		Products:  10,
		Orders:    200,
		Seed:      0,
	}
}

// Run writes customers.csv, products.json, and orders.csv into Dir.
func (m *Main) Run() error {
	g := NewGenerator(m.Seed)
	return WriteFixtures(m.Dir,
		g.Customers(m.Customers),
		g.Products(m.Products),
		g.Orders(m.Orders, m.Customers, m.Products))
}

// WriteFixtures writes the three datasets in the shapes the pipeline
// reads: customers and orders as headered csv, products as one json
// array.
func WriteFixtures(dir string, customers []opk.Customer, products []opk.Product, orders []opk.Order) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	if err := writeCustomersCSV(filepath.Join(dir, "customers.csv"), customers); err != nil {
		return err
	}
	if err := writeProductsJSON(filepath.Join(dir, "products.json"), products); err != nil {
		return err
	}
	return writeOrdersCSV(filepath.Join(dir, "orders.csv"), orders)
}

func writeCustomersCSV(path string, customers []opk.Customer) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()
	fmt.Fprintln(f, "customerid,fullname,address,credit,status")
	for _, c := range customers {
		fmt.Fprintf(f, "%d,%s,%s,%d,%s\n", c.ID, c.FullName, c.Address, c.Credit, c.Status)
	}
	return nil
}

func writeProductsJSON(path string, products []opk.Product) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()
	rows := make([]map[string]interface{}, 0, len(products))
	for _, p := range products {
		rows = append(rows, map[string]interface{}{
			"productid":    p.ID,
			"title":        p.Title,
			"unitprice":    p.UnitPrice,
			"itemdiscount": p.ItemDiscount,
		})
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return errors.Wrapf(enc.Encode(rows), "encoding %s", path)
}

func writeOrdersCSV(path string, orders []opk.Order) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()
	fmt.Fprintln(f, "orderid,orderdate,customer,product,units,billingaddress,remarks")
	for _, o := range orders {
		date := ""
		if !o.Date.IsZero() {
			date = o.Date.Format("2006-01-02")
		}
		fmt.Fprintf(f, "%d,%s,%d,%d,%d,%s,%s\n",
			o.ID, date, o.CustomerID, o.ProductID, o.Units, o.BillingAddress, o.Remarks)
	}
	return nil
}
