package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"query-expander/internal/config"
	"query-expander/internal/expander"
	"query-expander/internal/helper"
	"query-expander/internal/llmservice"
	"query-expander/internal/models"
	"query-expander/internal/parser"
	"query-expander/internal/report"
)

const chartWidth = 40

var expandCmd = &cobra.Command{
	Use:   "expand <seeds file>",
	Short: "Expand every seed query in a csv, xlsx or txt file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpand,
}

func init() {
	f := expandCmd.Flags()
	f.StringP("output", "o", "", "output file, .csv or .xlsx")
	f.String("html", "", "also write an html report to this path")
	f.String("column", "", "name of the seed query column")
	f.Int("preview", 0, "number of random rows to preview")
	f.Duration("pause", 0, "pause after each seed, negative disables it")
	f.String("provider", "", "model provider: gemini, openai or ollama")
	f.String("model", "", "model name")
	f.String("base-url", "", "model service base url")
	f.String("api-key", "", "model service api key")
	f.Duration("timeout", 0, "timeout for each model call")
	f.Bool("repair", false, "try to repair malformed json responses")
	f.Bool("json", false, "print the run summary as json")
	addExpansionFlags(expandCmd)
}

func addExpansionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("strategy", "s", "", "expansion strategy: fixed or model")
	cmd.Flags().IntP("count", "n", 0, fmt.Sprintf("expansions per seed for the fixed strategy (%d-%d)", models.MinFixedCount, models.MaxFixedCount))
}

func applyExpansionFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		v, _ := flags.GetString("strategy")
		s, err := models.ParseStrategy(v)
		if err != nil {
			return err
		}
		cfg.Expansion.Strategy = s
	}
	if flags.Changed("count") {
		cfg.Expansion.Count, _ = flags.GetInt("count")
	}
	return nil
}

// applyFlags overrides config values with the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	if err := applyExpansionFlags(cmd, cfg); err != nil {
		return err
	}
	flags := cmd.Flags()
	strFlags := map[string]*string{
		"output":   &cfg.Output.Path,
		"html":     &cfg.Output.HTMLReport,
		"column":   &cfg.Input.Column,
		"provider": &cfg.LLM.Provider,
		"model":    &cfg.LLM.Model,
		"base-url": &cfg.LLM.BaseURL,
		"api-key":  &cfg.LLM.Key,
	}
	for name, dst := range strFlags {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("provider") {
		cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	}
	if flags.Changed("preview") {
		cfg.Output.PreviewSize, _ = flags.GetInt("preview")
	}
	if flags.Changed("pause") {
		cfg.Expansion.Pause, _ = flags.GetDuration("pause")
	}
	if flags.Changed("timeout") {
		cfg.LLM.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("repair") {
		cfg.Parser.Repair, _ = flags.GetBool("repair")
	}
	return nil
}

// promptAPIKey asks for the key without echo when stdin is a terminal.
func promptAPIKey(cfg *config.Config) {
	if cfg.LLM.Key != "" || cfg.LLM.Provider == "ollama" || !term.IsTerminal(int(os.Stdin.Fd())) {
		return
	}
	fmt.Fprintf(os.Stderr, "Enter your %s API key: ", cfg.LLM.Provider)
	key, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Warn().Err(err).Msg("Could not read API key")
		return
	}
	cfg.LLM.Key = strings.TrimSpace(string(key))
}

func runExpand(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	promptAPIKey(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	seeds, err := parser.LoadSeeds(args[0], cfg.Input.Column)
	if err != nil {
		return err
	}
	log.Info().Msgf("Loaded %d seed queries.", len(seeds))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := llmservice.New(ctx, &cfg.LLM)
	if err != nil {
		return err
	}

	result, runErr := expander.NewExpander(gen, cfg).Run(ctx, seeds)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		if !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		log.Warn().Int("records", len(result.Records)).Msg("Run interrupted, saving partial results")
	}

	if err := report.Save(cfg.Output.Path, result.Records); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	log.Info().Str("path", cfg.Output.Path).Msg("Saved expanded queries")

	present(cmd, cfg, result)
	return runErr
}

func present(cmd *cobra.Command, cfg *config.Config, result *models.ExpansionResult) {
	out := cmd.OutOrStdout()
	sample := report.Sample(result.Records, cfg.Output.PreviewSize, nil)
	counts := report.IntentCounts(result.Records)

	fmt.Fprintf(out, "\n### Preview of expanded results\n\n%s\n", report.PreviewMarkdown(sample))
	fmt.Fprintf(out, "### Intent Type Distribution\n\n%s\n", report.BarChart(counts, chartWidth))
	if result.Failed > 0 {
		fmt.Fprintf(out, "%d of %d seeds failed, see rows where %s is %s.\n",
			result.Failed, result.Seeds, models.ColumnQuery, models.ErrorValue)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		helper.PrettyPrint(struct {
			RunID    string               `json:"run_id"`
			Strategy models.Strategy      `json:"strategy"`
			Seeds    int                  `json:"seeds"`
			Failed   int                  `json:"failed"`
			Records  int                  `json:"records"`
			Output   string               `json:"output"`
			Intents  []report.IntentCount `json:"intents"`
		}{result.RunID, result.Strategy, result.Seeds, result.Failed, len(result.Records), cfg.Output.Path, counts})
	}

	if cfg.Output.HTMLReport == "" {
		return
	}
	if err := report.SaveHTML(cfg.Output.HTMLReport, result, sample); err != nil {
		log.Error().Err(err).Msg("Error writing html report")
		return
	}
	log.Info().Str("path", cfg.Output.HTMLReport).Msg("Saved html report")
}
