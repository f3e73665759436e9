package analysis

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"parley/internal/logging"
	"parley/internal/services"
	"parley/internal/services/llm"
	"parley/internal/store"
)

// runTimeout bounds one background analysis run end to end.
const runTimeout = 2 * time.Minute

// TranscriptStore is the slice of the store the runner needs.
type TranscriptStore interface {
	Transcript(ctx context.Context, sessionID string) ([]store.Message, error)
	UpsertAnalysis(ctx context.Context, sessionID, payload string) error
}

// JSONCompleter is the slice of the model client the runner needs.
type JSONCompleter interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Runner evaluates session transcripts in the background. Triggering is
// fire-and-forget: failures are logged and the run simply ends, leaving any
// previous analysis row untouched. Re-triggering is always safe because the
// store write is an upsert.
type Runner struct {
	store     TranscriptStore
	completer JSONCompleter
	logger    *slog.Logger

	wg sync.WaitGroup
}

// NewRunner constructs an analysis runner.
func NewRunner(ts TranscriptStore, completer JSONCompleter, logger *slog.Logger) *Runner {
	return &Runner{
		store:     ts,
		completer: completer,
		logger:    logging.NewComponentLogger(logger, "analysis"),
	}
}

// Run schedules a background evaluation of the session and returns
// immediately. The goroutine carries its own context so it outlives the
// triggering HTTP request.
func (r *Runner) Run(sessionID string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("analysis run panicked",
					logging.String(logging.FieldSessionID, sessionID),
					logging.Any("panic", rec))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		r.runOnce(services.WithSessionID(ctx, sessionID), sessionID)
	}()
}

// Wait blocks until all scheduled runs have finished. Used by shutdown and
// tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) runOnce(ctx context.Context, sessionID string) {
	logger := logging.WithContext(ctx, r.logger)

	messages, err := r.store.Transcript(ctx, sessionID)
	if err != nil {
		logger.Error("analysis aborted: read transcript", logging.Error(err))
		return
	}

	raw, err := r.completer.CompleteJSON(ctx, rubricPrompt, buildTranscriptPrompt(messages))
	if err != nil {
		logger.Error("analysis aborted: model call failed", logging.Error(err))
		return
	}

	payload, parsed := encodeResult(raw)
	if !parsed {
		logger.Warn("analysis response did not parse, storing raw fallback")
	}

	if err := r.store.UpsertAnalysis(ctx, sessionID, payload); err != nil {
		logger.Error("analysis aborted: persist result", logging.Error(err))
		return
	}
	logger.Info("analysis stored", logging.Bool("parsed", parsed))
}

// encodeResult parses the model reply into a Result, or wraps the raw text in
// a fallback record when it does not decode. It reports whether the parse
// succeeded.
func encodeResult(raw string) (string, bool) {
	var result Result
	if err := llm.DecodeLLMJSON(raw, &result); err == nil {
		result.clampScores()
		if encoded, err := json.Marshal(result); err == nil {
			return string(encoded), true
		}
	}
	fallback, err := json.Marshal(Fallback{RawResponse: raw})
	if err != nil {
		// Marshalling a single string field cannot realistically fail; keep a
		// hand-built object as the terminal fallback.
		return `{"raw_response":""}`, false
	}
	return string(fallback), false
}
