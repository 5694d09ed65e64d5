package cmd

import (
	"io"

	"github.com/iomega/opk/pipeline"
	"github.com/jaffee/commandeer/cobrafy"
	"github.com/spf13/cobra"
)

// TiersMain is wrapped by NewTiersCommand and only exported for testing
// purposes.
var TiersMain *pipeline.TiersMain

// NewTiersCommand returns a new cobra command wrapping TiersMain.
func NewTiersCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	TiersMain = pipeline.NewTiersMain()
	command, err := cobrafy.Command(TiersMain)
	if err != nil {
		panic(err)
	}
	command.Use = "tiers"
	command.Short = "tiers - classify customers by credit"
	command.Long = `Loads the customer dataset and writes the listing annotated
with each customer's tier.`
	return command
}

func init() {
	subcommandFns["tiers"] = NewTiersCommand
}
