package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/itohio/golinduino/pkg/verify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newVerifyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [root]",
		Short: "Verify every sketch in a tree with the Arduino IDE",
		Long: `Verify walks root (default "LTSketchbook/Part Number") and runs the IDE in
verification mode on every sketch, one at a time, printing the sketch path and
the exit status of each run. The IDE output of a failed sketch is printed
after its exit status. It fails when any sketch failed to verify.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := c.cfg.Verify.Root
			if len(args) > 0 {
				root = args[0]
			}

			d := verify.New(afero.NewOsFs(), verify.ExecRunner{}, c.cfg.Verify).WithLogger(c.log)
			out := cmd.OutOrStdout()

			var (
				summary verify.Summary
				walkErr error
			)
			for r, err := range d.Run(cmd.Context(), root) {
				if err != nil {
					c.log.WithError(err).Warn("sketch discovery error")
					walkErr = multierr.Append(walkErr, err)
					continue
				}
				printResult(out, r)
				summary.Add(r)
			}

			if summary.Total > 0 {
				fmt.Fprintln(out, summary.String())
			}
			return multierr.Append(walkErr, summary.Err())
		},
	}

	cmd.Flags().String("tool", "", "IDE executable")
	cmd.Flags().String("suffix", "", "sketch file suffix")
	cmd.Flags().Duration("timeout", 0, "per-sketch timeout (0 = none)")
	return cmd
}

// printResult prints the sketch path and exit status. The tool's output is
// printed after the status of a failed sketch.
func printResult(out io.Writer, r verify.Result) {
	fmt.Fprintln(out, r.Path)
	if r.Err != nil {
		fmt.Fprintf(out, "%d (%v)\n", r.ExitCode, r.Err)
	} else {
		fmt.Fprintln(out, r.ExitCode)
	}

	if r.OK() || len(r.Output) == 0 {
		return
	}
	out.Write(r.Output)
	if !bytes.HasSuffix(r.Output, []byte("\n")) {
		fmt.Fprintln(out)
	}
}
