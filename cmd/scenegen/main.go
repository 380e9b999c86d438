// Command scenegen generates a hierarchical scene from a narrative context
// using an AI content service, and writes the result as JSON or Markdown.
//
// Built-in scenarios:
//
//	scenegen --example ancient_study --rounds
//
// Custom scenes:
//
//	scenegen --script "..." --requirement "..." --era "Ming dynasty" --output scene.json
//
// The content service is configured through the environment:
// SCENEGEN_PROVIDER (openai|anthropic), SCENEGEN_API_KEY, SCENEGEN_BASE_URL
// and SCENEGEN_MODEL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/caarlos0/env/v11"

	"github.com/hupe1980/scenegen"
	"github.com/hupe1980/scenegen/examplescenes"
	"github.com/hupe1980/scenegen/logging"
	"github.com/hupe1980/scenegen/render"
	"github.com/hupe1980/scenegen/scene"
	"github.com/hupe1980/scenegen/service"
	anthropicsvc "github.com/hupe1980/scenegen/service/anthropic"
	openaisvc "github.com/hupe1980/scenegen/service/openai"
)

type envConfig struct {
	Provider string `env:"SCENEGEN_PROVIDER" envDefault:"openai"`
	APIKey   string `env:"SCENEGEN_API_KEY"`
	BaseURL  string `env:"SCENEGEN_BASE_URL"`
	Model    string `env:"SCENEGEN_MODEL"`
}

type cliFlags struct {
	example     string
	script      string
	requirement string
	era         string
	location    string
	atmosphere  string
	style       string

	maxDepth   int
	rounds     bool
	maxRounds  int
	threshold  int
	minNodes   int
	concurrent int
	maxNodes   int

	provider string
	model    string

	output string
	format string
	quiet  bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.example, "example", "", fmt.Sprintf("run a built-in scenario %v", examplescenes.Names()))
	flag.StringVar(&f.script, "script", "", "script content")
	flag.StringVar(&f.requirement, "requirement", "", "scene requirement description")
	flag.StringVar(&f.era, "era", "present day", "era of the scene")
	flag.StringVar(&f.location, "location", "", "location of the scene")
	flag.StringVar(&f.atmosphere, "atmosphere", "", "atmosphere of the scene")
	flag.StringVar(&f.style, "style", "", "style of the scene")

	flag.IntVar(&f.maxDepth, "max-depth", 5, "maximum expansion depth")
	flag.BoolVar(&f.rounds, "rounds", false, "enable round-based generation")
	flag.IntVar(&f.maxRounds, "max-rounds", 5, "round cap")
	flag.IntVar(&f.threshold, "threshold", 90, "completeness stop score (0-100)")
	flag.IntVar(&f.minNodes, "min-nodes", 3, "minimum new nodes expected per round")
	flag.IntVar(&f.concurrent, "concurrent", 30, "expansion concurrency limit")
	flag.IntVar(&f.maxNodes, "max-nodes", 200, "total node ceiling")

	flag.StringVar(&f.provider, "provider", "", "content service provider, overrides SCENEGEN_PROVIDER")
	flag.StringVar(&f.model, "model", "", "model name, overrides SCENEGEN_MODEL")

	flag.StringVar(&f.output, "output", "", "output file path (default stdout tree)")
	flag.StringVar(&f.format, "format", "json", "output format: json or markdown")
	flag.BoolVar(&f.quiet, "quiet", false, "suppress progress logging")
	flag.Parse()
	return f
}

func main() {
	if err := run(parseFlags()); err != nil {
		fmt.Fprintln(os.Stderr, "scenegen:", err)
		os.Exit(1)
	}
}

func run(f cliFlags) error {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if f.provider != "" {
		cfg.Provider = f.provider
	}
	if f.model != "" {
		cfg.Model = f.model
	}

	narrative, name, err := resolveScene(f)
	if err != nil {
		return err
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	logger := logging.Logger(logging.NoOpLogger{})
	if !f.quiet {
		logger = logging.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	gen, err := scenegen.New(svc, func(o *scenegen.Options) {
		o.MaxDepth = f.maxDepth
		o.MaxTotalNodes = f.maxNodes
		o.Concurrency = f.concurrent
		o.MaxRounds = f.maxRounds
		o.CompletenessThreshold = f.threshold
		o.MinNewNodesPerRound = f.minNodes
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	start := time.Now()

	var sc *scene.Scene
	if f.rounds {
		result, summary, runErr := gen.GenerateWithRounds(ctx, name, narrative)
		sc = result
		if runErr != nil {
			logger.Warn("generation ended early", "err", runErr)
		}
		logger.Info("done",
			"rounds", summary.Rounds,
			"score", summary.FinalScore,
			"stopped_by", string(summary.StoppedBy),
			"elapsed", time.Since(start))
	} else {
		result, runErr := gen.Generate(ctx, name, narrative)
		sc = result
		if runErr != nil {
			logger.Warn("generation ended early", "err", runErr)
		}
		logger.Info("done", "elapsed", time.Since(start))
	}

	return writeOutput(sc, f)
}

func resolveScene(f cliFlags) (scene.Context, string, error) {
	if f.example != "" {
		ctx, err := examplescenes.Get(f.example)
		if err != nil {
			return scene.Context{}, "", err
		}
		return ctx, f.example, nil
	}
	if f.script == "" || f.requirement == "" {
		return scene.Context{}, "", fmt.Errorf("either --example or both --script and --requirement are required")
	}
	return scene.Context{
		Script:      f.script,
		Requirement: f.requirement,
		Era:         f.era,
		Location:    f.location,
		Atmosphere:  f.atmosphere,
		Style:       f.style,
	}, "scene_" + time.Now().Format("20060102_150405"), nil
}

func buildService(cfg envConfig) (service.Service, error) {
	switch cfg.Provider {
	case "openai":
		return openaisvc.New(func(o *openaisvc.Options) {
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case "anthropic":
		return anthropicsvc.New(func(o *anthropicsvc.Options) {
			o.APIKey = cfg.APIKey
			if cfg.Model != "" {
				o.Model = anthropic.Model(cfg.Model)
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (openai, anthropic)", cfg.Provider)
	}
}

func writeOutput(sc *scene.Scene, f cliFlags) error {
	if f.output == "" {
		render.Tree(os.Stdout, sc)
		return nil
	}

	var data []byte
	switch f.format {
	case "json":
		var err error
		data, err = render.JSON(sc)
		if err != nil {
			return fmt.Errorf("render json: %w", err)
		}
	case "markdown":
		data = []byte(render.Markdown(sc))
	default:
		return fmt.Errorf("unsupported format %q (json, markdown)", f.format)
	}

	if err := os.WriteFile(f.output, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintln(os.Stderr, "scene written to", f.output)
	return nil
}
