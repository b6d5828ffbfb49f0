package extract

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cityatlas/eventpipe/internal/logger"
)

// DefaultConcurrency bounds in-flight extraction calls across sources.
const DefaultConcurrency = 5

// maxRetries caps attempts for one chunk before the source degrades to an
// empty table.
const maxRetries = 3

// Runner fans extraction out across sources with bounded concurrency.
// Sources are independent and unordered relative to each other; rows within
// one source keep their order because chunks are processed sequentially.
type Runner struct {
	ext         Extractor
	concurrency int
	chunkSize   int
	now         func() time.Time
}

// NewRunner creates a runner around the given extractor. Non-positive
// concurrency falls back to DefaultConcurrency.
func NewRunner(ext Extractor, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Runner{
		ext:         ext,
		concurrency: concurrency,
		chunkSize:   DefaultChunkSize,
		now:         time.Now,
	}
}

// Run extracts every source and returns table text keyed by source name. A
// failed source yields the empty table; it never fails the batch.
func (r *Runner) Run(ctx context.Context, sources []Source) map[string]string {
	results := make([]string, len(sources))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			text, err := r.ExtractSource(ctx, src)
			if err != nil {
				logger.Error("extraction failed, writing empty table", logger.Fields{"source": src.Name}, err)
				text = EmptyTable()
			}
			results[i] = text
		}(i, src)
	}
	wg.Wait()

	out := make(map[string]string, len(sources))
	for i, src := range sources {
		out[src.Name] = results[i]
	}
	return out
}

// ExtractSource runs the chunked extraction for one source, sequentially so
// row order within the source is preserved.
func (r *Runner) ExtractSource(ctx context.Context, src Source) (string, error) {
	chunks := Chunk(src.Content, r.chunkSize)
	today := r.now()

	responses := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		logger.Debug("extracting chunk", logger.Fields{
			"source": src.Name,
			"chunk":  i + 1,
			"total":  len(chunks),
			"bytes":  len(chunk),
		})
		resp, err := r.extractChunk(ctx, Prompt(src, chunk, today))
		if err != nil {
			return "", err
		}
		responses = append(responses, resp)
	}

	combined := strings.TrimSpace(Combine(responses))
	if combined == "" {
		return EmptyTable(), nil
	}
	return combined, nil
}

func (r *Runner) extractChunk(ctx context.Context, prompt string) (string, error) {
	var out string
	operation := func() error {
		resp, err := r.ext.Extract(ctx, prompt)
		if err != nil {
			return err
		}
		out = resp
		return nil
	}
	policy := backoff.WithMaxRetries(backoff.WithContext(backoff.NewExponentialBackOff(), ctx), maxRetries)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return out, nil
}
