package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "baydesign",
	Short: "Sequential experimental design from the command line",
	Long: `baydesign recommends the next experiments to run for a design problem
described in a YAML file: parameters, linear and cardinality constraints,
and any measurements already taken.

Without measurements the recommendations are random constraint-satisfying
draws; with measurements they maximize expected improvement under a
Gaussian process fitted to the data.`,
	Version: "0.1.0",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
