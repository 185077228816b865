// Package worker runs the CV parsing pipeline: load the stored file, extract
// and clean its text, split it into a structured document, validate the
// document against its schema and score it, then persist the results.
package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shahramhal/ai-career-coach/internal/ats"
	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/ingestion"
	"github.com/shahramhal/ai-career-coach/internal/logger"
	"github.com/shahramhal/ai-career-coach/internal/parsing"
	"github.com/shahramhal/ai-career-coach/internal/queue"
	"github.com/shahramhal/ai-career-coach/internal/schemas"
	"github.com/shahramhal/ai-career-coach/internal/storage"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

// CVStore is the subset of database operations the pipeline needs.
type CVStore interface {
	GetCV(ctx context.Context, id uuid.UUID) (*db.CV, error)
	MarkCVParsing(ctx context.Context, id uuid.UUID) error
	SaveCVParseResult(ctx context.Context, id uuid.UUID, parsed, atsReport []byte, contentHash string) error
	MarkCVFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

// PermanentError marks a failure that retrying cannot fix, such as an
// unreadable document. The pipeline fails the CV immediately instead of
// burning the remaining attempts.
type PermanentError struct {
	Cause error
}

func (e *PermanentError) Error() string {
	return e.Cause.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Cause
}

func permanent(err error) error {
	return &PermanentError{Cause: err}
}

// Pipeline processes parse jobs for uploaded CVs.
type Pipeline struct {
	store       CVStore
	files       storage.Store
	maxAttempts int
	logger      *zap.Logger

	// sleep is replaced in tests
	sleep func(time.Duration)
}

// New creates a pipeline. maxAttempts values below 1 are treated as 1.
func New(store CVStore, files storage.Store, maxAttempts int, logger *zap.Logger) *Pipeline {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Pipeline{
		store:       store,
		files:       files,
		maxAttempts: maxAttempts,
		logger:      logger,
		sleep:       time.Sleep,
	}
}

// Process parses one CV, retrying transient failures with exponential
// backoff. After the final attempt, or on the first permanent failure, the
// CV is marked failed with the error message.
func (p *Pipeline) Process(ctx context.Context, cvID uuid.UUID) error {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = p.runOnce(ctx, cvID)
		if lastErr == nil {
			return nil
		}

		var perm *PermanentError
		if errors.As(lastErr, &perm) {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		p.logger.Warn("parse attempt failed",
			zap.String("cv_id", cvID.String()),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		if attempt < p.maxAttempts {
			p.sleep(queue.Backoff(attempt))
		}
	}

	if err := p.store.MarkCVFailed(ctx, cvID, lastErr.Error()); err != nil {
		p.logger.Error("failed to record parse failure",
			zap.String("cv_id", cvID.String()),
			zap.Error(err))
	}
	return lastErr
}

func (p *Pipeline) runOnce(ctx context.Context, cvID uuid.UUID) error {
	cv, err := p.store.GetCV(ctx, cvID)
	if err != nil {
		return fmt.Errorf("failed to load cv: %w", err)
	}
	if cv == nil {
		return permanent(fmt.Errorf("cv %s not found", cvID))
	}

	if err := p.store.MarkCVParsing(ctx, cvID); err != nil {
		return fmt.Errorf("failed to mark cv parsing: %w", err)
	}

	reader, err := p.files.Open(ctx, cv.StorageKey)
	if err != nil {
		return fmt.Errorf("failed to open stored file: %w", err)
	}
	data, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		return fmt.Errorf("failed to read stored file: %w", err)
	}

	parsed, report, err := ParseDocument(cv.ContentType, data)
	if err != nil {
		return err
	}

	parsedJSON, err := json.Marshal(parsed)
	if err != nil {
		return permanent(fmt.Errorf("failed to marshal parsed cv: %w", err))
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return permanent(fmt.Errorf("failed to marshal ats report: %w", err))
	}

	hash := sha256.Sum256(data)
	contentHash := hex.EncodeToString(hash[:])

	if err := p.store.SaveCVParseResult(ctx, cvID, parsedJSON, reportJSON, contentHash); err != nil {
		return fmt.Errorf("failed to save parse result: %w", err)
	}

	p.logger.Info("cv parsed",
		zap.String("cv_id", cvID.String()),
		zap.Int("ats_score", report.OverallScore),
		zap.Int("word_count", parsed.WordCount),
		zap.String("summary", logger.Truncate(parsed.Summary, 80)))
	return nil
}

// ParseDocument runs the extract, clean, parse, validate and score stages
// over raw file bytes. It is shared by the queue worker and the synchronous
// upload path. Document-level failures are permanent.
func ParseDocument(contentType string, data []byte) (*types.ParsedCV, *types.ATSReport, error) {
	text, err := ingestion.ExtractText(contentType, data)
	if err != nil {
		return nil, nil, permanent(fmt.Errorf("failed to extract text: %w", err))
	}

	cleaned := ingestion.CleanText(text)
	parsed, err := parsing.ParseCV(cleaned)
	if err != nil {
		return nil, nil, permanent(fmt.Errorf("failed to parse cv: %w", err))
	}

	if err := schemas.ValidateParsedCV(parsed); err != nil {
		return nil, nil, permanent(fmt.Errorf("parsed cv failed schema validation: %w", err))
	}

	return parsed, ats.Score(parsed), nil
}
