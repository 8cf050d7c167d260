package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ppiankov/persona/internal/logger"
	"github.com/ppiankov/persona/internal/metrics"
	"github.com/ppiankov/persona/internal/render"
	"github.com/ppiankov/persona/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	batchTimeout time.Duration
	metricsAddr  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Generate personas for many Reddit users in parallel",
	Long: `Batch processes multiple Reddit users concurrently:
- Read profile URLs or usernames from a file (one per line, # for comments)
- Skip duplicates and blank lines
- Run the persona pipeline for each user with a shared rate limiter
- Write one persona file per user

Example:
  persona batch users.txt
  persona batch users.txt --concurrency 8 --output-dir ./personas
  persona batch users.txt --metrics-addr :9090`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addRunFlags(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running (e.g. :9090)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	out := cmd.ErrOrStderr()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	rec := metrics.NewRecorder()
	if metricsAddr != "" {
		_, stop, err := serveMetrics(metricsAddr, rec, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	p, err := buildPipeline(cfg, log, rec)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "  Persona Batch Processing\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "  Input file:   %s\n", file)
	fmt.Fprintf(out, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(out, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(out, "  Format:       %s\n", cfg.Output.Format)
	fmt.Fprintf(out, "  Generator:    %s\n", generatorLabel(cfg))
	fmt.Fprintf(out, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(out, "\n")

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, log)

	fmt.Fprintf(out, "⚙️  Reading users from file...\n")
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := render.NewRenderer()
	var success, fallback, failure int

	for _, r := range results {
		if r.Error != nil {
			failure++
			fmt.Fprintf(out, "✗ %s: %v\n", r.Ref, r.Error)
			continue
		}

		path, err := renderer.Save(r.Result.Persona, cfg.Output.Dir, cfg.Output.Format)
		if err != nil {
			failure++
			fmt.Fprintf(out, "✗ %s: failed to save persona: %v\n", r.Ref, err)
			continue
		}

		success++
		if r.Result.Outcome.Fallback {
			fallback++
		}
		fmt.Fprintf(out, "✓ %s (%d items) -> %s\n", r.Result.Subject.Username, r.Result.ItemCount(), path)
	}

	writeBatchSummary(out, len(results), success, fallback, failure, cfg.Output.Dir)

	if failure > 0 && success == 0 {
		return fmt.Errorf("all %d subjects failed", failure)
	}
	return nil
}

func writeBatchSummary(out io.Writer, total, success, fallback, failure int, dir string) {
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "  Batch Complete\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "  Total:     %d users\n", total)
	fmt.Fprintf(out, "  Success:   %d (%d from fallback values)\n", success, fallback)
	fmt.Fprintf(out, "  Failures:  %d\n", failure)
	fmt.Fprintf(out, "  Output:    %s\n", dir)
	fmt.Fprintf(out, "\n")
}

// serveMetrics exposes rec on addr until the returned stop func is called.
// It returns the bound address, which differs from addr when the port is 0.
func serveMetrics(addr string, rec *metrics.Recorder, log logger.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", logger.Error(err))
		}
	}()
	log.Info("serving metrics", logger.String("addr", ln.Addr().String()))

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
