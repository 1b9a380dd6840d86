package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stephenmw/distress/internal/config"
	"github.com/stephenmw/distress/internal/logging"
	"github.com/stephenmw/distress/internal/solve"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		workers    int
		debug      bool
		dump       bool
		sorted     bool
	)

	cmd := &cobra.Command{
		Use:   "distress [input]",
		Short: "Decode a distress signal made of nested-list packets",
		Long: `Reads one packet per line (blank lines are ignored) from the input file, or
stdin when the file is omitted or "-", and prints the sum of the indices of
the pairs that are in the right order followed by the decoder key.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			opts, err := cfg.Options()
			if err != nil {
				return err
			}
			opts.Logger = logger

			in, name, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			logger.Debug("reading corpus", zap.String("path", name), zap.Int("workers", opts.Workers))

			res, err := solve.Solve(cmd.Context(), in, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			if dump {
				dumper.Fdump(cmd.ErrOrStderr(), res.Corpus)
			}

			out := cmd.OutOrStdout()

			if sorted {
				packets, _ := solve.Rank(res.Corpus, opts.Dividers...)
				for _, p := range packets {
					fmt.Fprintln(out, p)
				}
				return nil
			}

			fmt.Fprintf(out, "%s: %d\n", cfg.Labels.Part1, res.Part1)
			fmt.Fprintf(out, "%s: %d\n", cfg.Labels.Part2, res.Part2)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file (optional)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "number of goroutines parsing lines (overrides config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the parsed packets to stderr")
	cmd.Flags().BoolVar(&sorted, "sorted", false, "print the packets and dividers in sorted order instead of the answers")
	return cmd
}

func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), "<stdin>", nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", err
	}
	return f, args[0], nil
}
