package cmd

import (
	"io"

	"github.com/iomega/opk/pipeline"
	"github.com/jaffee/commandeer/cobrafy"
	"github.com/spf13/cobra"
)

// EnrichMain is wrapped by NewEnrichCommand and only exported for testing
// purposes.
var EnrichMain *pipeline.Main

// NewEnrichCommand returns a new cobra command wrapping EnrichMain.
func NewEnrichCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	EnrichMain = pipeline.NewMain()
	command, err := cobrafy.Command(EnrichMain)
	if err != nil {
		panic(err)
	}
	command.Use = "enrich"
	command.Short = "enrich - join orders with customers and products and write parquet"
	command.Long = `Loads the customer, product, and order datasets, classifies
each customer by credit, scores each order's remarks, joins the three
datasets, and writes the enriched orders as a parquet file.`
	return command
}

func init() {
	subcommandFns["enrich"] = NewEnrichCommand
}
