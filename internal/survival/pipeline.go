// SPDX-License-Identifier: Apache-2.0

// Package survival runs one prediction request end to end: raw record,
// encoded feature vector, model code, survival label.
package survival

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oncoform/survival-mcp/internal/encoder"
	"github.com/oncoform/survival-mcp/internal/metrics"
	"github.com/oncoform/survival-mcp/internal/predictor"
	"github.com/oncoform/survival-mcp/internal/record"
	"github.com/oncoform/survival-mcp/internal/record/parsers"
	"github.com/oncoform/survival-mcp/internal/schema"
)

type Pipeline struct {
	encoder   *encoder.Encoder
	predictor predictor.Predictor
	parsers   *record.Registry
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithParsers replaces the default record parsers.
func WithParsers(r *record.Registry) Option {
	return func(p *Pipeline) { p.parsers = r }
}

// NewPipeline creates a Pipeline over reg and model. The caller is expected
// to have loaded model against reg.
func NewPipeline(reg *schema.Registry, model predictor.Predictor, opts ...Option) *Pipeline {
	p := &Pipeline{
		encoder:   encoder.New(reg),
		predictor: model,
		parsers:   parsers.Default(),
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Schema returns the registry the pipeline encodes against.
func (p *Pipeline) Schema() *schema.Registry {
	return p.encoder.Registry()
}

// RegisteredParsers returns the names of the record parsers in selection order.
func (p *Pipeline) RegisteredParsers() []string {
	return p.parsers.RegisteredParsers()
}

// Predict validates, encodes and classifies rec. Every failure is reported in
// the returned Result.
func (p *Pipeline) Predict(ctx context.Context, rec encoder.PatientRecord) Result {
	return p.run(ctx, uuid.NewString(), "", rec)
}

// PredictSource parses source into a record and predicts it.
func (p *Pipeline) PredictSource(ctx context.Context, source record.Source) Result {
	id := uuid.NewString()
	rec, parser, err := p.parsers.Parse(ctx, source)
	if err != nil {
		return p.fail(id, time.Now(), StatusValidationFailed, &ErrorDetail{Kind: KindInvalidInput, Message: err.Error()}, err)
	}
	return p.run(ctx, id, parser, rec)
}

func (p *Pipeline) run(ctx context.Context, id, parser string, rec encoder.PatientRecord) Result {
	start := time.Now()

	encoded, err := p.encoder.Encode(rec)
	if err != nil {
		res := p.fail(id, start, StatusValidationFailed, classify(err), err)
		res.Parser = parser
		return res
	}

	code, err := p.predict(ctx, encoded)
	if err != nil {
		res := p.fail(id, start, StatusPredictionFailed, classify(err), err)
		res.Parser = parser
		return res
	}

	outcome := predictor.OutcomeFromCode(code)
	p.metrics.ObservePredicted(outcome.String(), time.Since(start))
	p.logger.Info("prediction made",
		zap.String("request_id", id),
		zap.String("outcome", outcome.String()),
		zap.Int("code", code),
		zap.Duration("elapsed", time.Since(start)))

	return Result{
		RequestID: id,
		Status:    StatusPredicted,
		Outcome:   outcome.String(),
		Code:      &code,
		Features:  encoded.Map(),
		Parser:    parser,
	}
}

// predict calls the predictor and reports every failure, panics included, as
// a *predictor.PredictionError.
func (p *Pipeline) predict(ctx context.Context, rec encoder.EncodedRecord) (code int, err error) {
	defer func() {
		if r := recover(); r != nil {
			code, err = 0, &predictor.PredictionError{Err: fmt.Errorf("predictor panicked: %v", r)}
		}
	}()

	code, err = p.predictor.Predict(ctx, rec)
	if err != nil {
		var predErr *predictor.PredictionError
		if !errors.As(err, &predErr) {
			err = &predictor.PredictionError{Err: err}
		}
	}
	return code, err
}

func (p *Pipeline) fail(id string, start time.Time, status Status, detail *ErrorDetail, cause error) Result {
	p.metrics.ObserveFailed(string(status), string(detail.Kind), time.Since(start))

	fields := []zap.Field{
		zap.String("request_id", id),
		zap.String("status", string(status)),
		zap.String("kind", string(detail.Kind)),
	}
	if status == StatusPredictionFailed {
		// The predictor's diagnostics stay in the log; callers only see
		// the generic message.
		if inner := errors.Unwrap(cause); inner != nil {
			cause = inner
		}
		p.logger.Error("prediction failed", append(fields, zap.Error(cause))...)
	} else {
		p.logger.Info("request rejected", append(fields, zap.Error(cause))...)
	}

	return Result{
		RequestID: id,
		Status:    status,
		Error:     detail,
	}
}
