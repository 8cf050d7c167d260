package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/persona/internal/logger"
	"github.com/ppiankov/persona/internal/pipeline"
	"github.com/ppiankov/persona/internal/validate"
)

// Runner runs the persona pipeline for one subject reference
type Runner interface {
	Run(ctx context.Context, ref string) (*pipeline.Result, error)
}

// SubjectJob analyzes one subject
type SubjectJob struct {
	Index  int
	Ref    string
	Runner Runner
}

// Execute executes the subject job
func (j *SubjectJob) Execute(ctx context.Context) Result {
	start := time.Now()
	result, err := j.Runner.Run(ctx, j.Ref)
	return &SubjectResult{
		Index:    j.Index,
		Ref:      j.Ref,
		Result:   result,
		Error:    err,
		Duration: time.Since(start),
	}
}

// SubjectResult represents the result of a subject job
type SubjectResult struct {
	Index    int
	Ref      string
	Result   *pipeline.Result
	Error    error
	Duration time.Duration
}

// GetError returns the error from the subject result
func (r *SubjectResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple subjects concurrently
type BatchProcessor struct {
	runner      Runner
	concurrency int
	log         logger.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int, log logger.Logger) *BatchProcessor {
	if log == nil {
		log = logger.NewNop()
	}
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
		log:         log,
	}
}

// ProcessSubjects analyzes refs concurrently and returns results in input order
func (b *BatchProcessor) ProcessSubjects(ctx context.Context, refs []string) []*SubjectResult {
	if len(refs) == 0 {
		return []*SubjectResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, ref := range refs {
		pool.Submit(&SubjectJob{
			Index:  i,
			Ref:    ref,
			Runner: b.runner,
		})
	}

	results := pool.Wait()

	ordered := make([]*SubjectResult, len(refs))
	for _, result := range results {
		r := result.(*SubjectResult)
		ordered[r.Index] = r
	}

	// Jobs never started because ctx was cancelled
	for i, r := range ordered {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("job not run")
			}
			ordered[i] = &SubjectResult{Index: i, Ref: refs[i], Error: err}
		}
	}

	failed := 0
	for _, r := range ordered {
		if r.Error != nil {
			failed++
			b.log.Warn("subject failed", logger.String("subject", r.Ref), logger.Error(r.Error))
		}
	}
	b.log.Info("batch complete",
		logger.Int("subjects", len(refs)),
		logger.Int("failed", failed),
		logger.Int("concurrency", b.concurrency),
	)

	return ordered
}

// ProcessFile reads subjects from a file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*SubjectResult, error) {
	refs, err := ReadSubjectsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read subjects: %w", err)
	}

	return b.ProcessSubjects(ctx, refs), nil
}

// ReadSubjectsFromFile reads subject references (profile URLs or usernames),
// one per line. Blank lines and # comments are skipped. References naming the
// same Reddit user are dropped after the first; Reddit names are case-insensitive.
// Unparseable lines are kept so the batch reports them.
func ReadSubjectsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var refs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := line
		if subject, err := validate.ParseSubject(line); err == nil {
			key = strings.ToLower(subject.Username)
		}
		if !seen[key] {
			seen[key] = true
			refs = append(refs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return refs, nil
}
