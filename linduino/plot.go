package main

import (
	"fmt"

	"github.com/itohio/golinduino/pkg/sample"
	"github.com/itohio/golinduino/pkg/scope"
	"github.com/spf13/cobra"
)

func newPlotCmd(c *cli) *cobra.Command {
	var (
		pngPath string
		average int
	)

	cmd := &cobra.Command{
		Use:   "plot [file]",
		Short: "Decode a capture and plot voltage against sample index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := inputPath(args)
			result, err := c.decodeFile(cmd.Context(), path, cmd.InOrStdin(), nil)
			if err != nil {
				return err
			}

			voltages := result.Voltages()
			if average > 1 {
				voltages = sample.MovingAverage(nil, voltages, average)
			}

			if pngPath != "" {
				newApp()
				if err := scope.SavePNG(pngPath, voltages, c.cfg.Plot); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "plot written to %s\n", pngPath)
				return nil
			}

			showPlot(newApp(), c.cfg.Plot, path, voltages)
			return nil
		},
	}

	addDecoderFlags(cmd)
	cmd.Flags().StringVar(&pngPath, "png", "", "write the chart to a PNG file instead of opening a window")
	cmd.Flags().IntVar(&average, "average", 0, "moving average window in samples (0 = off)")
	cmd.Flags().Int("max-points", 0, "maximum points drawn before decimation")
	return cmd
}
