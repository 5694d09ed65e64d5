package pipeline

import (
	"fmt"
	"log"
	"os"

	opk "github.com/iomega/opk"
	"github.com/iomega/opk/csv"
	"github.com/iomega/opk/enrich"
	"github.com/pkg/errors"
)

// TiersMain holds the execution state for the tier listing command,
// which classifies every customer and prints the annotated listing.
type TiersMain struct {
	Customers string `help:"Customer dataset locator: file, directory, glob, or s3://bucket/prefix. CSV with a header row."`
	Region    string `help:"AWS region, used when the locator points at S3."`
	Output    string `help:"File to write the listing to. Empty writes to stdout."`
}

// NewTiersMain returns a new TiersMain with default values.
func NewTiersMain() *TiersMain {
	return &TiersMain{
		Customers: "customers.csv",
		Region:    "us-east-1",
	}
}

// Run loads the customers, classifies each one, and writes the listing
// as headered csv.
func (m *TiersMain) Run() error {
	raw, err := (&Main{Region: m.Region}).rawSource(m.Customers)
	if err != nil {
		return errors.Wrap(err, "opening customer source")
	}
	rep := &opk.Report{}
	customers, err := opk.LoadCustomers(csv.NewSource(raw), rep)
	if err != nil {
		return errors.Wrap(err, "loading customers")
	}

	out := os.Stdout
	if m.Output != "" {
		out, err = os.Create(m.Output)
		if err != nil {
			return errors.Wrapf(err, "creating %s", m.Output)
		}
		defer out.Close()
	}
	fmt.Fprintln(out, "customerid,fullname,address,credit,status,customertype")
	for _, ct := range enrich.ClassifyCustomers(customers, opk.ClassifyCredit, rep) {
		fmt.Fprintf(out, "%d,%s,%s,%d,%s,%s\n", ct.CustomerID, ct.FullName, ct.Address, ct.Credit, ct.Status, ct.Tier)
	}
	log.Println(rep.Summary())
	return nil
}
