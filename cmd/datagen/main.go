package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/tallyline/internal/dataset"
	"github.com/vanshika/tallyline/internal/generator"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := generator.DefaultConfig()
	var (
		outputDir   string
		format      string
		writeStdout bool
	)

	cmd := &cobra.Command{
		Use:          "datagen",
		Short:        "Generate synthetic orders and users",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (want json or yaml)", format)
			}
			cfg.MissingEmailChance = clampProbability(cfg.MissingEmailChance)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			data, err := generator.New(cfg).Generate(ctx)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			if writeStdout {
				return dataset.Encode(cmd.OutOrStdout(), format == "yaml", data)
			}

			if err := generator.WriteDataset(data, outputDir, format); err != nil {
				return fmt.Errorf("write dataset: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d orders and %d users into %s\n", len(data.Orders), len(data.Users), outputDir)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.NumOrders, "orders", cfg.NumOrders, "number of orders to generate")
	flags.IntVar(&cfg.NumUsers, "users", cfg.NumUsers, "number of users to generate")
	flags.IntVar(&cfg.MaxItemsPerOrder, "max-items", cfg.MaxItemsPerOrder, "maximum line items per order")
	flags.Float64Var(&cfg.MissingEmailChance, "missing-email-chance", cfg.MissingEmailChance, "probability that a user has no email")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for deterministic generation")
	flags.StringVar(&outputDir, "output-dir", "data", "directory to write orders and users files")
	flags.StringVar(&format, "format", "json", "output format: json or yaml")
	flags.BoolVar(&writeStdout, "stdout", false, "write combined dataset to stdout instead of files")

	return cmd
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
