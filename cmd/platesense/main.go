// PlateSense — Financial Insight Engine for Restaurant Groups
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/platesense/platesense/api"
	"github.com/platesense/platesense/internal/agent"
	"github.com/platesense/platesense/internal/config"
	"github.com/platesense/platesense/internal/consolidate"
	"github.com/platesense/platesense/internal/insights"
	"github.com/platesense/platesense/internal/llm"
	"github.com/platesense/platesense/internal/report"
	"github.com/platesense/platesense/internal/store"
	"github.com/platesense/platesense/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "platesense",
	Short: "PlateSense — Financial Insight Engine for Restaurant Groups",
	Long: `PlateSense derives profitability, working capital, funding, what-if,
and valuation insights from raw restaurant financials, for single
branches or a consolidated group view. It also serves an HTTP API,
pulls customer reviews, and coaches operators over chat.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		return initLogger(cfg.Logging)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("data", "", "JSON dataset file (default: built-in demo data)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(consolidateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(statusCmd)
}

// initLogger installs the global zap logger per the logging config.
func initLogger(lc config.LoggingConfig) error {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if lc.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return nil
}

// loadStore opens the --data dataset, or seeds the demo group.
func loadStore(cmd *cobra.Command) (*store.Store, error) {
	if path, _ := cmd.Flags().GetString("data"); path != "" {
		return store.LoadFile(path)
	}
	st := store.New()
	st.SeedDemo()
	return st, nil
}

// scopePeriods resolves a scope argument ("consolidated" or a branch id)
// to its display name, location, and period series.
func scopePeriods(st *store.Store, scope string) (name, location string, periods []models.PeriodFinancials, ext store.ExternalBundle, err error) {
	if scope == "" || strings.EqualFold(scope, "consolidated") {
		periods = consolidate.Consolidate(st.Branches(), st.PeriodsByBranch())
		if len(periods) == 0 {
			return "", "", nil, store.ExternalBundle{}, fmt.Errorf("no financial data for any active branch")
		}
		return "Consolidated", "", periods, store.ExternalBundle{}, nil
	}

	branch, ok := st.Branch(scope)
	if !ok {
		return "", "", nil, store.ExternalBundle{}, fmt.Errorf("unknown branch: %s", scope)
	}
	periods = st.Periods(scope)
	if len(periods) == 0 {
		return "", "", nil, store.ExternalBundle{}, fmt.Errorf("no financial data for branch %s", scope)
	}
	return branch.Name, branch.Location, periods, st.External(scope), nil
}

// buildReportData resolves every metric domain for one scope.
func buildReportData(engine *insights.Engine, st *store.Store, scope string, multiplier float64) (*report.Data, error) {
	name, location, periods, ext, err := scopePeriods(st, scope)
	if err != nil {
		return nil, err
	}
	if multiplier == 0 {
		multiplier = engine.Params().MultiplierDefault
	}
	if err := engine.ValidateMultiplier(multiplier); err != nil {
		return nil, err
	}

	fin := periods[len(periods)-1]
	return &report.Data{
		Scope:          name,
		Location:       location,
		Periods:        periods,
		Profitability:  engine.Profitability(ext.Profitability, &fin),
		WorkingCapital: engine.WorkingCapital(ext.WorkingCapital, &fin),
		Funding:        engine.Funding(ext.Funding, &fin),
		Sensitivity:    engine.Sensitivity(ext.Sensitivity, &fin),
		Valuation:      engine.Valuation(ext.Valuation, &fin, multiplier),
	}, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("PlateSense %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := api.NewServer(cfg)
		if err != nil {
			return fmt.Errorf("building server: %w", err)
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		zap.L().Info("starting PlateSense API server", zap.String("addr", addr))
		return srv.ListenAndServe(addr)
	},
}

// --- Insights Command ---

var insightsCmd = &cobra.Command{
	Use:   "insights [branch-id|consolidated]",
	Short: "Print the derived metric bundles for one branch or the group",
	Long: `Resolve profitability, working capital, funding, what-if, and
valuation metrics for the latest period of a branch (or the consolidated
view) and print them as JSON.

Examples:
  platesense insights downtown
  platesense insights consolidated --multiplier 10
  platesense insights cbd --data group.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadStore(cmd)
		if err != nil {
			return err
		}
		engine := insights.NewEngine(api.EngineParams(cfg))

		scope := ""
		if len(args) > 0 {
			scope = args[0]
		}
		multiplier, _ := cmd.Flags().GetFloat64("multiplier")

		data, err := buildReportData(engine, st, scope, multiplier)
		if err != nil {
			return err
		}

		bundle := map[string]interface{}{
			"scope":           data.Scope,
			"period_label":    data.Periods[len(data.Periods)-1].PeriodLabel,
			"profitability":   data.Profitability,
			"working_capital": data.WorkingCapital,
			"funding":         data.Funding,
			"sensitivity":     data.Sensitivity,
			"valuation":       data.Valuation,
		}
		out, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	insightsCmd.Flags().Float64("multiplier", 0, "EBITDA multiplier (default: configured default)")
}

// --- Consolidate Command ---

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Print the consolidated period series for all active branches",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadStore(cmd)
		if err != nil {
			return err
		}

		periods := consolidate.Consolidate(st.Branches(), st.PeriodsByBranch())
		if len(periods) == 0 {
			return fmt.Errorf("no financial data for any active branch")
		}

		out, err := json.MarshalIndent(periods, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report [branch-id|consolidated]",
	Short: "Generate an insight report",
	Long: `Generate a financial insight report for one branch or the
consolidated group view.

Examples:
  platesense report downtown
  platesense report consolidated --format html --output group.html
  platesense report downtown --format pdf --output downtown.pdf`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadStore(cmd)
		if err != nil {
			return err
		}
		engine := insights.NewEngine(api.EngineParams(cfg))

		scope := ""
		if len(args) > 0 {
			scope = args[0]
		}
		multiplier, _ := cmd.Flags().GetFloat64("multiplier")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		data, err := buildReportData(engine, st, scope, multiplier)
		if err != nil {
			return err
		}

		reportCfg := report.DefaultReportConfig()
		switch report.ReportFormat(format) {
		case report.FormatText:
			text, err := report.GenerateText(data, reportCfg)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil

		case report.FormatHTML:
			html, err := report.GenerateHTML(data, reportCfg)
			if err != nil {
				return err
			}
			if output == "" {
				output = "platesense_report.html"
			}
			if err := os.WriteFile(output, []byte(html), 0o644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Printf("Report written to %s\n", output)
			return nil

		case report.FormatPDF:
			html, err := report.GenerateHTML(data, reportCfg)
			if err != nil {
				return err
			}
			if output == "" {
				output = "platesense_report.pdf"
			}
			if !report.IsPDFSupported() {
				fmt.Println("No PDF engine found (wkhtmltopdf or chromium); writing HTML instead.")
			}
			if err := report.GeneratePDF(html, output); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", output)
			return nil

		default:
			return fmt.Errorf("unsupported format: %s (use text, html, or pdf)", format)
		}
	},
}

func init() {
	reportCmd.Flags().String("format", "text", "report format: text, html, or pdf")
	reportCmd.Flags().String("output", "", "output file path (html/pdf formats)")
	reportCmd.Flags().Float64("multiplier", 0, "EBITDA multiplier (default: configured default)")
}

// --- Chat Command ---

var chatCmd = &cobra.Command{
	Use:   "chat [branch-id|consolidated]",
	Short: "Chat with the financial coach",
	Long: `Start an interactive coaching session scoped to one branch or the
consolidated view. Without a configured LLM provider the coach answers
offline from the metrics snapshot.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadStore(cmd)
		if err != nil {
			return err
		}
		engine := insights.NewEngine(api.EngineParams(cfg))

		var provider llm.Provider
		if router, err := llm.NewRouterFromConfig(cfg); err == nil {
			provider = router
		} else {
			fmt.Println("No LLM provider configured; coach answers offline.")
		}

		coach := agent.NewCoach(provider, engine, st, &llm.ChatOptions{
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		})

		branchID := ""
		if len(args) > 0 && !strings.EqualFold(args[0], "consolidated") {
			if _, ok := st.Branch(args[0]); !ok {
				return fmt.Errorf("unknown branch: %s", args[0])
			}
			branchID = args[0]
		}

		session := coach.StartSession(branchID)
		scope := "consolidated group"
		if branchID != "" {
			scope = "branch " + branchID
		}
		fmt.Printf("PlateSense coach — %s. Type 'exit' to quit.\n\n", scope)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("you> ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}
			if question == "exit" || question == "quit" {
				break
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			reply, err := coach.Ask(ctx, session.ID, question)
			cancel()
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Printf("\ncoach> %s\n\n", reply.Content)
		}

		coach.EndSession(session.ID)
		return scanner.Err()
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  PlateSense — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    LLM Provider:   %s (model: %s)\n", cfg.LLM.Primary, cfg.LLM.Model)
		fmt.Printf("    API Server:     %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Printf("    Review Feeds:   %d feeds, %d pages\n", len(cfg.Reviews.Feeds), len(cfg.Reviews.Pages))
		fmt.Printf("    Demo Seed:      %v\n", cfg.API.SeedDemo)
		fmt.Println()

		fmt.Println("  Engine Constants:")
		params := api.EngineParams(cfg)
		fmt.Printf("    Principal Payment:    %.0f\n", params.AssumedPrincipalPayment)
		fmt.Printf("    After-Tax Factor:     %.2f\n", params.AfterTaxCashFlowFactor)
		fmt.Printf("    Multiplier Range:     %.1f – %.1f (step %.1f, default %.1f)\n",
			params.MultiplierMin, params.MultiplierMax, params.MultiplierStep, params.MultiplierDefault)
		fmt.Println()

		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-20s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
