package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/cartboost/config"
	"github.com/YuminosukeSato/cartboost/gbm"
	"github.com/YuminosukeSato/cartboost/pkg/log"
)

func trainCommand() *cobra.Command {
	var (
		configPath string
		dataPath   string
		validPath  string
		modelPath  string
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train an ensemble on LIBSVM data and save it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			if err := setupLogging(cmd, cfg.Log, os.Stderr); err != nil {
				return err
			}
			logger := log.GetLoggerWithName("cli")

			train, labels, err := readLibSVM(dataPath)
			if err != nil {
				return err
			}
			logger.Info("Loaded training data",
				log.SamplesKey, train.NumRows(),
				log.FeaturesKey, train.NumFeature(),
				log.NonZerosKey, train.NNZ())

			opts, err := cfg.GBMOptions()
			if err != nil {
				return err
			}
			model := gbm.New(opts...)
			if validPath == "" {
				err = model.FitRows(train, labels)
			} else {
				valid, validLabels, rerr := readLibSVM(validPath)
				if rerr != nil {
					return rerr
				}
				err = model.FitWithValidation(train, labels, valid, validLabels)
			}
			if err != nil {
				return err
			}

			if err := model.Save(modelPath); err != nil {
				return err
			}
			history := model.History()
			if len(history) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "trees: %d\n", model.NumTrees())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "trees: %d\ttrain rmse: %.6f\n", model.NumTrees(), history[len(history)-1])
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "TOML configuration file")
	cmd.Flags().StringVar(&dataPath, "data", "", "training data in LIBSVM format")
	cmd.Flags().StringVar(&validPath, "valid", "", "optional validation data in LIBSVM format")
	cmd.Flags().StringVar(&modelPath, "model", "", "output model file")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
