package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cetine/goodrx/internal/catalog"
	"github.com/cetine/goodrx/internal/infer"
)

// MessageJob classifies and prices one message against a shared catalog.
type MessageJob struct {
	Message    string
	Catalog    *catalog.Catalog
	Inferencer *infer.Inferencer
}

// Execute executes the job
func (j *MessageJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &MessageResult{Message: j.Message, Error: err}
	}

	ictx, err := j.Inferencer.Infer(j.Catalog, j.Message, "")
	if err != nil {
		return &MessageResult{Message: j.Message, Error: err}
	}
	return &MessageResult{Message: j.Message, Context: ictx}
}

// MessageResult is the outcome of one message evaluation.
type MessageResult struct {
	Message string         `json:"message"`
	Context *infer.Context `json:"context,omitempty"`
	Error   error          `json:"-"`
}

// GetError returns the error from the result
func (r *MessageResult) GetError() error {
	return r.Error
}

// BatchProcessor evaluates many messages concurrently against one shared
// catalog. Each job only reads the catalog; the read lock on the workforce
// baseline makes that safe even while a baseline update runs.
type BatchProcessor struct {
	cat         *catalog.Catalog
	inferencer  *infer.Inferencer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(cat *catalog.Catalog, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		cat:         cat,
		inferencer:  infer.NewInferencer(),
		concurrency: concurrency,
	}
}

// ProcessMessages evaluates messages concurrently
func (b *BatchProcessor) ProcessMessages(ctx context.Context, messages []string) []*MessageResult {
	if len(messages) == 0 {
		return []*MessageResult{}
	}

	pool := NewPool(b.concurrency).WithContext(ctx)
	pool.Start()

	for _, msg := range messages {
		pool.Submit(&MessageJob{
			Message:    msg,
			Catalog:    b.cat,
			Inferencer: b.inferencer,
		})
	}

	results := pool.Wait()

	out := make([]*MessageResult, len(results))
	for i, result := range results {
		out[i] = result.(*MessageResult)
	}
	return out
}

// ProcessFile reads messages from a file and evaluates them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*MessageResult, error) {
	messages, err := ReadMessagesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}

	return b.ProcessMessages(ctx, messages), nil
}

// ReadMessagesFromFile reads messages from a file (one per line). Blank
// lines and '#' comments are skipped.
func ReadMessagesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var messages []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		messages = append(messages, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return messages, nil
}
