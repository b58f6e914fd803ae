// Command cartboost trains and applies gradient boosted tree ensembles on
// LIBSVM-formatted data.
//
//	cartboost train --config train.toml --data train.libsvm --model model.gob [--valid valid.libsvm]
//	cartboost predict --model model.gob --data test.libsvm [--output preds.txt]
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/cartboost/config"
	"github.com/YuminosukeSato/cartboost/pkg/errors"
	"github.com/YuminosukeSato/cartboost/pkg/log"
	"github.com/YuminosukeSato/cartboost/sparse"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cartboost",
		Short:         "Gradient boosted regression trees",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides the config file")
	root.PersistentFlags().String("log-format", "", "log format (console, json); overrides the config file")
	root.AddCommand(trainCommand(), predictCommand())
	return root
}

// setupLogging installs the global logger from the [log] section, with
// command line flags taking precedence.
func setupLogging(cmd *cobra.Command, lc config.LogConfig, w io.Writer) error {
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		lc.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		lc.Format = v
	}
	switch lc.Format {
	case config.LogFormatConsole:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case config.LogFormatJSON:
	default:
		return errors.NewConfigurationError("log.format", "must be json or console", lc.Format)
	}
	return log.SetupLogger(lc.Level, w)
}

func readLibSVM(path string) (*sparse.Matrix, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	m, labels, err := sparse.ReadLibSVM(f)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read %s", path)
	}
	return m, labels, nil
}
