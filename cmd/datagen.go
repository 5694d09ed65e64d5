package cmd

import (
	"io"

	"github.com/iomega/opk/fake"
	"github.com/jaffee/commandeer/cobrafy"
	"github.com/spf13/cobra"
)

// DatagenMain is wrapped by NewDatagenCommand and only exported for testing
// purposes.
var DatagenMain *fake.Main

// NewDatagenCommand returns a new cobra command wrapping DatagenMain.
func NewDatagenCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	DatagenMain = fake.NewMain()
	command, err := cobrafy.Command(DatagenMain)
	if err != nil {
		panic(err)
	}
	command.Use = "datagen"
	command.Short = "datagen - write fake fixture datasets"
	command.Long = `Writes a consistent set of customer, product, and order
fixture files for trying out the pipeline.`
	return command
}

func init() {
	subcommandFns["datagen"] = NewDatagenCommand
}
