package main

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/cartboost/config"
	"github.com/YuminosukeSato/cartboost/gbm"
	"github.com/YuminosukeSato/cartboost/metrics"
	"github.com/YuminosukeSato/cartboost/pkg/errors"
	"github.com/YuminosukeSato/cartboost/pkg/log"
)

func predictCommand() *cobra.Command {
	var (
		modelPath  string
		dataPath   string
		outputPath string
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict LIBSVM rows with a saved ensemble, one value per line",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if err := setupLogging(cmd, config.Default().Log, os.Stderr); err != nil {
				return err
			}
			logger := log.GetLoggerWithName("cli")

			model := gbm.New()
			if err := model.Load(modelPath); err != nil {
				return err
			}
			rows, labels, err := readLibSVM(dataPath)
			if err != nil {
				return err
			}
			preds, err := model.PredictBatch(rows)
			if err != nil {
				return err
			}
			// the label column is always present in LIBSVM, so report the error
			// against it as well
			if rmse, rerr := metrics.RMSESlice(labels, preds); rerr == nil {
				logger.Info("Prediction finished",
					log.OperationKey, log.OperationPredict,
					log.SamplesKey, len(preds),
					log.LossKey, rmse)
			}

			var out io.Writer = cmd.OutOrStdout()
			if outputPath != "" {
				f, ferr := os.Create(outputPath)
				if ferr != nil {
					return errors.Wrapf(ferr, "failed to create %s", outputPath)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				out = f
			}
			return writePredictions(out, preds)
		},
	}
	cmd.Flags().StringVar(&modelPath, "model", "", "model file written by train")
	cmd.Flags().StringVar(&dataPath, "data", "", "data in LIBSVM format")
	cmd.Flags().StringVar(&outputPath, "output", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func writePredictions(w io.Writer, preds []float64) error {
	bw := bufio.NewWriter(w)
	for _, p := range preds {
		bw.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
