package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"query-expander/internal/config"
	"query-expander/internal/models"
	"query-expander/internal/prompt"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <seed query>",
	Short: "Print the instruction that would be sent to the model for a seed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if err := applyExpansionFlags(cmd, cfg); err != nil {
			return err
		}
		if cfg.Expansion.Strategy == models.FixedCount &&
			(cfg.Expansion.Count < models.MinFixedCount || cfg.Expansion.Count > models.MaxFixedCount) {
			return fmt.Errorf("%w, got %d", config.ErrInvalidCount, cfg.Expansion.Count)
		}
		fmt.Fprint(cmd.OutOrStdout(), prompt.Build(args[0], cfg.Expansion.Strategy, cfg.Expansion.Count))
		return nil
	},
}

func init() {
	addExpansionFlags(promptCmd)
}
