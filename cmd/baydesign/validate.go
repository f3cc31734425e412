package main

import (
	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/baydesign-go/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <experiment.yaml>",
	Short: "Check an experiment file without recommending anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := config.LoadExperiment(args[0])
		if err != nil {
			return err
		}
		space, err := exp.SearchSpace()
		if err != nil {
			return err
		}

		cmd.Printf("experiment ok: %d parameters, %s search space\n",
			space.NumParameters(), space.Type())
		if !space.Continuous.IsEmpty() {
			cmd.Printf("linear constraints: %d equalities, %d inequalities\n",
				len(space.Continuous.LinearEqualities()),
				len(space.Continuous.LinearInequalities()))
			if space.Continuous.HasCardinalityConstraints() {
				cmd.Printf("inactive parameter configurations: %d\n",
					space.Continuous.TotalInactiveConfigurations())
			}
		}
		if !space.Discrete.IsEmpty() {
			cmd.Printf("discrete candidates: %d\n", space.Discrete.Candidates().NumRows())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
