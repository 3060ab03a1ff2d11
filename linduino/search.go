package main

import (
	"fmt"

	"github.com/itohio/golinduino/pkg/search"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newSearchCmd(c *cli) *cobra.Command {
	var keepGoing bool

	cmd := &cobra.Command{
		Use:   "search [root]",
		Short: "List files in a source tree whose content matches a pattern",
		Long: `Search walks root (default LTSketchbook/libraries) and prints the path of every
file whose content matches the regular expression --pattern (default i2c_poll).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := c.cfg.Search.Root
			if len(args) > 0 {
				root = args[0]
			}

			s, err := search.FromConfig(afero.NewOsFs(), c.cfg.Search)
			if err != nil {
				return err
			}
			s.WithLogger(c.log)

			out := cmd.OutOrStdout()
			var errs error
			matches := 0
			for path, err := range s.Files(cmd.Context(), root) {
				if err != nil {
					if !keepGoing {
						return err
					}
					c.log.WithError(err).Warn("search error")
					errs = multierr.Append(errs, err)
					continue
				}
				fmt.Fprintln(out, path)
				matches++
			}

			c.log.WithField("root", root).WithField("matches", matches).Debug("search complete")
			return errs
		},
	}

	cmd.Flags().StringP("pattern", "p", "", "regular expression to search for")
	cmd.Flags().StringSlice("include", nil, "only search files matching these globs (e.g. '**/*.{cpp,h}')")
	cmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false, "report unreadable files and continue")
	return cmd
}
