package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"volunteerhub/internal/worker"
)

const noDataMessage = "no structured data could be extracted from the document"

// Lifecycle is the slice of the uploaded-file store the processor needs: the
// single writer of terminal states. Satisfied by
// repository.UploadedFileRepository.
type Lifecycle interface {
	RecordAttempt(ctx context.Context, id int64) error
	MarkCompleted(ctx context.Context, id int64, rawPayload []byte) error
	MarkNoData(ctx context.Context, id int64, message string) error
	MarkError(ctx context.Context, id int64, message string) error
}

// Processor runs one file through extract → classify → persist and resolves
// the row's lifecycle state. It implements worker.Processor; the pool owns
// scheduling and retry counting.
type Processor struct {
	extractor Extractor
	classify  *Classifier
	files     Lifecycle
	log       zerolog.Logger
}

func NewProcessor(extractor Extractor, classifier *Classifier, files Lifecycle, log zerolog.Logger) *Processor {
	return &Processor{
		extractor: extractor,
		classify:  classifier,
		files:     files,
		log:       log.With().Str("component", "processor").Logger(),
	}
}

// Attempt processes the job once. Content judgments (nothing usable in the
// document) resolve the row immediately; transport and persistence faults
// are returned to the pool so it can retry before finalizing.
func (p *Processor) Attempt(ctx context.Context, job worker.Job) error {
	if err := p.files.RecordAttempt(ctx, job.FileID); err != nil {
		p.log.Warn().Int64("file_id", job.FileID).Err(err).Msg("record attempt failed")
	}

	payload, raw, err := p.extractor.Extract(ctx, job.Data, job.ContentType)
	if errors.Is(err, ErrNoData) {
		if merr := p.files.MarkNoData(ctx, job.FileID, noDataMessage); merr != nil {
			p.log.Error().Int64("file_id", job.FileID).Err(merr).Msg("mark no_data_found failed")
		}
		p.log.Info().Int64("file_id", job.FileID).Str("trace_id", job.TraceID).Msg("no data found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("extraction: %w", err)
	}

	sinkID, err := p.classify.Classify(ctx, job.FileID, payload)
	if err != nil {
		return err
	}

	if err := p.files.MarkCompleted(ctx, job.FileID, raw); err != nil {
		p.log.Error().Int64("file_id", job.FileID).Err(err).Msg("mark completed failed")
		return fmt.Errorf("finalize completed: %w", err)
	}

	p.log.Info().
		Int64("file_id", job.FileID).
		Str("trace_id", job.TraceID).
		Str("kind", payload.Kind).
		Int64("record_id", sinkID).
		Msg("file processed")
	return nil
}

// Fail finalizes the row as error once the pool has exhausted retries.
func (p *Processor) Fail(ctx context.Context, job worker.Job, cause error) {
	if err := p.files.MarkError(ctx, job.FileID, cause.Error()); err != nil {
		p.log.Error().Int64("file_id", job.FileID).Err(err).Msg("mark error failed")
		return
	}
	p.log.Warn().
		Int64("file_id", job.FileID).
		Str("trace_id", job.TraceID).
		Err(cause).
		Msg("file failed permanently")
}
