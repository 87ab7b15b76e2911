package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/gollem"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"reqcast/internal/config"
	"reqcast/internal/llm"
	"reqcast/internal/logging"
	"reqcast/internal/mcp"
	"reqcast/internal/pipeline"
	"reqcast/internal/project"
	"reqcast/internal/visuals"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	llmClient gollem.LLMClient
)

var rootCmd = &cobra.Command{
	Use:   "reqcast",
	Short: "reqcast turns structured requirements into risk profiles and probabilistic delivery forecasts",
	Long: `An MCP server that scores project requirements for complexity and risk,
estimates a baseline delivery duration, and runs Monte Carlo timeline simulations
refined through a quality-gated validation loop.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		llmClient, err = llm.NewGeminiClient(cmd.Context(), cfg.GeminiProject, cfg.GeminiLocation)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize LLM client")
		}
		if llmClient == nil {
			log.Info().Msg("No LLM configured; the judged pipeline is disabled")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("reqcast starting")
	},
	Run: func(cmd *cobra.Command, args []string) {
		log.Info().Msg("MCP Server starting Stdio loop")
		server := mcp.NewServer(cfg, llmClient)
		if err := server.Serve(); err != nil {
			log.Fatal().Err(err).Msg("Server terminated")
		}
	},
}

var (
	briefPath string
	seed      int64
	withLoop  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis against a brief file and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		brief, err := project.LoadBrief(briefPath)
		if err != nil {
			return err
		}
		if brief.Metadata.TeamSize == 0 {
			brief.Metadata.TeamSize = cfg.DefaultTeamSize
		}
		if brief.Metadata.WorkingDaysPerWeek == 0 {
			brief.Metadata.WorkingDaysPerWeek = cfg.DefaultWorkingDaysPerWeek
		}

		opts := cfg.Pipeline
		if seed != 0 {
			opts.Simulation.Seed = seed
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if withLoop {
			if llmClient == nil {
				return fmt.Errorf("--loop requires a configured LLM (set REQCAST_GEMINI_PROJECT)")
			}
			ctrl := pipeline.NewController(opts, llm.NewQualityJudge(llmClient), llm.NewRefiner(llmClient), nil)
			bundle, err := ctrl.Run(ctx, brief)
			if err != nil {
				return err
			}
			return printJSON(bundle)
		}

		analysis, err := pipeline.Analyze(ctx, brief, nil, opts)
		if err != nil {
			return err
		}
		if err := printJSON(analysis); err != nil {
			return err
		}
		if analysis.Forecast != nil {
			fmt.Println(visuals.GenerateScenarioChart(*analysis.Forecast))
		}
		fmt.Println(visuals.GenerateSeverityPie(analysis.Risks))
		return nil
	},
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	analyzeCmd.Flags().StringVar(&briefPath, "brief", "", "path to a JSON or YAML brief file")
	analyzeCmd.Flags().Int64Var(&seed, "seed", 0, "random seed for a reproducible forecast")
	analyzeCmd.Flags().BoolVar(&withLoop, "loop", false, "run the full quality-gated validation loop")
	_ = analyzeCmd.MarkFlagRequired("brief")

	rootCmd.AddCommand(analyzeCmd)
}
