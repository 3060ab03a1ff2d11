package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/itohio/golinduino/pkg/sample"
	"github.com/spf13/cobra"
)

// defaultInput is the terminal capture file the board output is logged to.
const defaultInput = "teraterm.txt"

func newDecodeCmd(c *cli) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode an LTC2508 hex capture into voltages",
		Long: `Decode reads one 10-digit hex record per line (default teraterm.txt, "-" for
stdin) and prints the received data, the calculated voltage and the
decimation factor of every record, followed by a summary.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var diag io.Writer = out
			if quiet {
				diag = nil
			}

			result, err := c.decodeFile(cmd.Context(), inputPath(args), cmd.InOrStdin(), diag)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\n%d records decoded, %d skipped\n", len(result.Samples), len(result.Skipped))
			fmt.Fprintln(out, sample.Summarize(result.Samples))
			return nil
		},
	}

	addDecoderFlags(cmd)
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-record diagnostics")
	return cmd
}

func addDecoderFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("vref", 0, "full-scale reference voltage (V)")
	cmd.Flags().Bool("signed", false, "treat codes as two's complement")
	cmd.Flags().Bool("fail-fast", false, "abort on the first malformed record")
}

func inputPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultInput
}

// decodeFile decodes path ("-" reads stdin) with the configured decoder.
func (c *cli) decodeFile(ctx context.Context, path string, stdin io.Reader, diag io.Writer) (sample.Result, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return sample.Result{}, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	d := sample.NewDecoder(c.cfg.Decoder, diag).WithLogger(c.log)
	result, err := d.DecodeAll(ctx, r)
	if err != nil {
		return result, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	c.log.WithField("input", path).
		WithField("records", len(result.Samples)).
		WithField("skipped", len(result.Skipped)).
		Debug("decoded capture")
	return result, nil
}
