package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/finsight"
	"github.com/m-mizutani/finsight/datasource/alphavantage"
	"github.com/m-mizutani/finsight/datasource/fmp"
	"github.com/m-mizutani/finsight/llm/claude"
	"github.com/m-mizutani/finsight/llm/gemini"
	"github.com/m-mizutani/finsight/llm/openai"
	"github.com/m-mizutani/finsight/report"
)

func askCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer a financial research question with validated data",
		ArgsUsage: "<question>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "llm",
				Value:   "openrouter",
				Sources: cli.EnvVars("FINSIGHT_LLM"),
				Usage:   "Reasoning provider: openrouter, gemini, or claude",
			},
			&cli.StringFlag{
				Name:    "model",
				Sources: cli.EnvVars("FINSIGHT_MODEL"),
				Usage:   "Model name override for the chosen provider",
			},
			&cli.StringFlag{
				Name:    "llm-api-key",
				Sources: cli.EnvVars("OPENROUTER_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY"),
				Usage:   "API key for the reasoning provider",
			},
			&cli.StringFlag{
				Name:    "alpha-vantage-key",
				Sources: cli.EnvVars("ALPHA_VANTAGE_API_KEY"),
				Usage:   "Alpha Vantage API key (the vendor's 'demo' key works but is rate limited)",
			},
			&cli.StringFlag{
				Name:    "fmp-key",
				Sources: cli.EnvVars("FMP_API_KEY"),
				Usage:   "Financial Modeling Prep API key (optional fallback source)",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Write the final report to this file (.pdf or .md)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a question is required, e.g.: finsight ask \"What was Apple's revenue last year?\"")
	}

	logLevel := slog.LevelInfo
	if cmd.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg := &finsight.Config{
		LLMAPIKey:       cmd.String("llm-api-key"),
		LLMModel:        cmd.String("model"),
		FinancialAPIKey: cmd.String("alpha-vantage-key"),
	}
	if err := cfg.Validate(); err != nil {
		return renderFailure(err)
	}
	if cfg.FinancialAPIKey == "demo" {
		logger.Warn("using the Alpha Vantage demo key; responses are rate limited and may contain dummy data")
	}

	llmClient, err := newLLMClient(ctx, cmd.String("llm"), cfg)
	if err != nil {
		return err
	}

	capabilities, err := newCapabilities(cfg, cmd.String("fmp-key"))
	if err != nil {
		return err
	}

	extractor, err := finsight.NewEntityExtractor(llmClient)
	if err != nil {
		return err
	}
	planner, err := finsight.NewPlanner(llmClient, finsight.WithEntityExtractor(extractor))
	if err != nil {
		return err
	}
	synthesizer, err := finsight.NewSynthesizer(llmClient)
	if err != nil {
		return err
	}

	controller, err := finsight.NewController(
		planner,
		finsight.NewExecutor(finsight.NewRouter(capabilities...)),
		finsight.NewValidator(),
		synthesizer,
		finsight.WithObserver(finsight.NewLogObserver(logger)),
		finsight.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	state := controller.Run(ctx, query)

	if state.Status == finsight.StatusFailed {
		fmt.Fprintf(os.Stderr, "Research failed (%s): %s\n", state.ErrSource, state.Err)
		if state.Validation != nil && len(state.Validation.Issues) > 0 {
			for _, issue := range state.Validation.Issues {
				fmt.Fprintf(os.Stderr, "  - %s\n", issue)
			}
		}
		return fmt.Errorf("research did not complete")
	}

	fmt.Println(state.FinalAnswer)
	fmt.Printf("\nConfidence: %.2f (coverage %.2f, quality %.2f, inference %.2f)\n",
		state.Validation.Confidence,
		state.Validation.Breakdown.DataCoverage,
		state.Validation.Breakdown.DataQuality,
		state.Validation.Breakdown.InferenceStrength)

	if output := cmd.String("output"); output != "" {
		if err := writeReport(output, state.Report); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", output)
	}

	return nil
}

func newLLMClient(ctx context.Context, provider string, cfg *finsight.Config) (finsight.LLMClient, error) {
	switch provider {
	case "openrouter":
		opts := []openai.Option{openai.WithBaseURL(openai.OpenRouterBaseURL)}
		if cfg.LLMModel != "" {
			opts = append(opts, openai.WithModel(cfg.LLMModel))
		}
		return openai.New(cfg.LLMAPIKey, opts...)

	case "openai":
		var opts []openai.Option
		if cfg.LLMModel != "" {
			opts = append(opts, openai.WithModel(cfg.LLMModel))
		}
		return openai.New(cfg.LLMAPIKey, opts...)

	case "gemini":
		var opts []gemini.Option
		if cfg.LLMModel != "" {
			opts = append(opts, gemini.WithModel(cfg.LLMModel))
		}
		return gemini.New(ctx, cfg.LLMAPIKey, opts...)

	case "claude":
		var opts []claude.Option
		if cfg.LLMModel != "" {
			opts = append(opts, claude.WithModel(cfg.LLMModel))
		}
		return claude.New(cfg.LLMAPIKey, opts...)
	}

	return nil, fmt.Errorf("unknown LLM provider: %q (want openrouter, openai, gemini, or claude)", provider)
}

func newCapabilities(cfg *finsight.Config, fmpKey string) ([]finsight.Capability, error) {
	av, err := alphavantage.New(cfg.FinancialAPIKey)
	if err != nil {
		return nil, err
	}
	capabilities := []finsight.Capability{av}

	if fmpKey != "" {
		fallback, err := fmp.New(fmpKey)
		if err != nil {
			return nil, err
		}
		capabilities = append(capabilities, fallback)
	}

	return capabilities, nil
}

func writeReport(path string, r *finsight.FinalReport) error {
	switch filepath.Ext(path) {
	case ".pdf":
		data, err := report.RenderPDF(r)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)

	case ".md":
		text, err := report.RenderMarkdown(r)
		if err != nil {
			return err
		}
		return os.WriteFile(path, []byte(text), 0o644)
	}

	return fmt.Errorf("unsupported report format: %q (want .pdf or .md)", filepath.Ext(path))
}

// renderFailure turns a classified error into actionable CLI output.
func renderFailure(err error) error {
	if e, ok := finsight.AsError(err); ok && e.Suggestion != "" {
		return fmt.Errorf("%s\n%s", e.Message, e.Suggestion)
	}
	return err
}
