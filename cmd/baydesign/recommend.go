package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/baydesign-go/pkg/campaign"
	"github.com/XiaoConstantine/baydesign-go/pkg/config"
	"github.com/XiaoConstantine/baydesign-go/pkg/optim"
	"github.com/XiaoConstantine/baydesign-go/pkg/recommenders"
	"github.com/XiaoConstantine/baydesign-go/pkg/searchspace"
)

var (
	experimentPath string
	configPath     string
	batchSize      int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend the next batch of experiments",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if batchSize == 0 {
			batchSize = cfg.Campaign.BatchSize
		}

		exp, err := config.LoadExperiment(experimentPath)
		if err != nil {
			return err
		}
		space, err := exp.SearchSpace()
		if err != nil {
			return err
		}

		camp, err := campaign.New(space, campaign.Config{
			Seed:              cfg.Campaign.Seed,
			LengthScale:       cfg.Surrogate.LengthScale,
			NoiseVariance:     cfg.Surrogate.NoiseVariance,
			MonteCarloSamples: cfg.Campaign.MonteCarloSamples,
			Recommender: recommenders.ConstrainedConfig{
				MaxEnumeratedConfigurations: cfg.Recommender.MaxEnumeratedConfigurations,
				SamplingPercentage:          cfg.Recommender.SamplingPercentage,
				MaxGoroutines:               cfg.Recommender.MaxGoroutines,
				Seed:                        cfg.Campaign.Seed,
			},
			Optimizer: optim.RandomRestartConfig{
				NumCandidates: cfg.Optimizer.NumCandidates,
				MaxGoroutines: cfg.Optimizer.MaxGoroutines,
				Seed:          cfg.Campaign.Seed,
			},
		})
		if err != nil {
			return err
		}

		for _, m := range exp.Measurement {
			if err := camp.AddMeasurements(campaign.Measurement{
				Parameters: m.Parameters,
				Target:     m.Target,
			}); err != nil {
				return err
			}
		}

		table, err := camp.Recommend(context.Background(), batchSize)
		if err != nil {
			return err
		}

		printTable(cmd, table)
		return nil
	},
}

func printTable(cmd *cobra.Command, table *searchspace.Table) {
	cmd.Println(strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%.6g", v)
		}
		cmd.Println(strings.Join(cells, "\t"))
	}
}

func init() {
	recommendCmd.Flags().StringVarP(&experimentPath, "experiment", "e", "", "path to the experiment YAML file")
	recommendCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to an engine config YAML file")
	recommendCmd.Flags().IntVarP(&batchSize, "batch", "b", 0, "number of points to recommend")
	_ = recommendCmd.MarkFlagRequired("experiment")
	rootCmd.AddCommand(recommendCmd)
}
