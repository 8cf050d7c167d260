package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/persona/internal/cache"
	"github.com/ppiankov/persona/internal/llm"
	"github.com/ppiankov/persona/internal/logger"
	"github.com/ppiankov/persona/internal/metrics"
	"github.com/ppiankov/persona/internal/model"
	"github.com/ppiankov/persona/internal/pipeline"
	"github.com/ppiankov/persona/internal/render"
	"github.com/ppiankov/persona/internal/source"
	"github.com/ppiankov/persona/internal/util"
	"github.com/ppiankov/persona/internal/validate"
	"github.com/ppiankov/persona/internal/worker"
	"github.com/spf13/cobra"
)

var (
	maxPosts      int
	outputDir     string
	outputFormat  string
	timeout       time.Duration
	userAgent     string
	noCache       bool
	respectRobots bool
	httpProxy     string
	httpsProxy    string
	llmProvider   string
	llmModel      string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <profile-url|username>",
	Short: "Generate a persona for one Reddit user",
	Long: `Analyze fetches a user's recent posts and comments and writes a persona:
- Normalize submissions and comments into content items
- Ask the configured text generator for ten persona attributes
- Fall back to neutral values when the generator is unavailable
- Cite the items that mention each attribute value
- Save the persona as text, JSON or YAML

Example:
  persona analyze https://www.reddit.com/user/kojied/
  persona analyze kojied --format json --output-dir ./personas
  persona analyze u/kojied --llm-provider ollama --llm-model llama3`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addRunFlags(analyzeCmd)
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")
}

// addRunFlags registers the flags shared by analyze and batch
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&maxPosts, "max-posts", 100, "maximum posts and comments to analyze")
	cmd.Flags().StringVar(&outputDir, "output-dir", "output", "directory for persona files")
	cmd.Flags().StringVar(&outputFormat, "format", render.FormatText, "output format (txt, json, yaml)")
	cmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	cmd.Flags().BoolVar(&respectRobots, "respect-robots", false, "honor robots.txt and its crawl delay")
	cmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "text generator (openai, anthropic, ollama, none)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "text generator model name (default depends on provider)")
}

// resolveConfig layers changed flags over the loaded configuration
func resolveConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-posts") {
		cfg.Source.MaxItems = maxPosts
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("format") {
		cfg.Output.Format = outputFormat
	}
	if flags.Changed("ua") {
		cfg.HTTP.UserAgent = userAgent
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("respect-robots") {
		cfg.HTTP.RespectRobots = respectRobots
	}
	if flags.Changed("http-proxy") {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if flags.Changed("https-proxy") {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if verbose {
		cfg.Output.Verbose = true
	}

	applyProviderEnv(cfg)

	if cfg.Source.MaxItems <= 0 {
		return nil, fmt.Errorf("max-posts must be positive, got %d", cfg.Source.MaxItems)
	}
	if _, err := render.ParseFormat(cfg.Output.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildPipeline wires the Reddit source, cache, limiter and generator described by cfg
func buildPipeline(cfg *model.Config, log logger.Logger, rec *metrics.Recorder) (*pipeline.Pipeline, error) {
	var robots *util.RobotsChecker
	if cfg.HTTP.RespectRobots {
		proxy := util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout, proxy)
	}

	src := source.NewRedditFetcher(source.Options{
		BaseURL:    cfg.Source.BaseURL,
		MaxItems:   cfg.Source.MaxItems,
		Timeout:    cfg.HTTP.Timeout,
		UserAgent:  cfg.HTTP.UserAgent,
		MaxBytes:   cfg.HTTP.MaxBodyBytes,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
		Cache:      cache.FromConfig(cfg.Cache),
		Limiter:    worker.NewLimiterFromConfig(cfg.RateLimiting),
		Robots:     robots,
		Logger:     log,
		Metrics:    rec,
	})

	analyzer, err := llm.NewAnalyzer(llm.ConfigFromModel(cfg), log)
	if err != nil {
		return nil, fmt.Errorf("configure generator: %w (set the provider's API key or use --llm-provider none)", err)
	}

	opts := pipeline.Options{
		MaxItems: cfg.Source.MaxItems,
		BaseURL:  cfg.Source.BaseURL,
	}
	return pipeline.New(src, analyzer, opts, log, rec), nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ref := args[0]
	out := cmd.ErrOrStderr()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	p, err := buildPipeline(cfg, log, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	fmt.Fprintf(out, "Analyzing Reddit user: %s\n", ref)
	if cfg.Output.Verbose {
		fmt.Fprintf(out, "Timeout: %v\n", timeout)
		fmt.Fprintf(out, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintf(out, "Generator: %s\n", generatorLabel(cfg))
	}

	result, err := p.Run(ctx, ref)
	if err != nil {
		if errors.Is(err, validate.ErrInvalidSubject) {
			return fmt.Errorf("invalid Reddit profile: %w", err)
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Fprintf(out, "Found %d posts and comments\n", result.ItemCount())
	reportOutcome(out, result.Outcome)

	path, err := render.NewRenderer().Save(result.Persona, cfg.Output.Dir, cfg.Output.Format)
	if err != nil {
		return fmt.Errorf("save persona: %w", err)
	}

	fmt.Fprintf(out, "✓ Persona saved to: %s\n", path)
	fmt.Fprintf(out, "✓ Analysis complete for user: %s\n", result.Subject.Username)
	return nil
}

func generatorLabel(cfg *model.Config) string {
	if cfg.LLM.Provider == "" {
		return "disabled"
	}
	name := cfg.LLM.Model
	if name == "" {
		name = llm.DefaultModel(cfg.LLM.Provider)
	}
	return cfg.LLM.Provider + "/" + name
}

// reportOutcome tells the user when the persona was built from fallback values
func reportOutcome(out io.Writer, outcome llm.Outcome) {
	if !outcome.Fallback {
		fmt.Fprintf(out, "✓ Generated persona using %s/%s\n", outcome.Provider, outcome.Model)
		return
	}
	switch outcome.Reason {
	case llm.ReasonDisabled:
		fmt.Fprintf(out, "⚠️  No generator configured, using fallback values\n")
	default:
		fmt.Fprintf(out, "⚠️  Generator %s (%s), using fallback values\n", outcome.Reason, outcome.Error)
	}
}
