// SPDX-License-Identifier: Apache-2.0

package survival_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oncoform/survival-mcp/internal/encoder"
	"github.com/oncoform/survival-mcp/internal/metrics"
	"github.com/oncoform/survival-mcp/internal/predictor"
	"github.com/oncoform/survival-mcp/internal/record"
	"github.com/oncoform/survival-mcp/internal/schema"
	"github.com/oncoform/survival-mcp/internal/survival"
)

// stubPredictor returns a fixed code or error and remembers the last record.
type stubPredictor struct {
	mu       sync.Mutex
	code     int
	err      error
	features []string
	last     encoder.EncodedRecord
}

func (s *stubPredictor) Predict(_ context.Context, rec encoder.EncodedRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = rec
	return s.code, s.err
}

func (s *stubPredictor) Features() []string { return s.features }

func patient() encoder.PatientRecord {
	return encoder.PatientRecord{
		"AgeAtDiagnosis":             45,
		"TypeOfBreastSurgery":        "Mastectomy",
		"Cellularity":                "High",
		"Chemotherapy":               "0",
		"ERStatus":                   "Positive",
		"PRStatus":                   "Positive",
		"HER2Status":                 "Negative",
		"Pam50Subtype":               "LumA",
		"NeoplasmHistologicGrade":    2,
		"TumorSize":                  30.0,
		"TumorStage":                 "II",
		"LymphNodesExaminedPositive": 3,
		"MutationCount":              100,
		"NottinghamPrognosticIndex":  4.5,
		"RelapseFreeStatus":          "Yes",
	}
}

func newPipeline(t *testing.T, model predictor.Predictor, opts ...survival.Option) *survival.Pipeline {
	t.Helper()
	reg, err := schema.Default()
	require.NoError(t, err)
	return survival.NewPipeline(reg, model, opts...)
}

func TestPredict_OutcomeMapping(t *testing.T) {
	tests := []struct {
		name        string
		code        int
		wantOutcome string
	}{
		{name: "code 0 is alive", code: 0, wantOutcome: "Alive"},
		{name: "code 1 is dead", code: 1, wantOutcome: "Dead"},
		{name: "any non-zero code is dead", code: 3, wantOutcome: "Dead"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPredictor{code: tt.code}
			p := newPipeline(t, stub)

			res := p.Predict(context.Background(), patient())
			require.True(t, res.OK(), "unexpected error: %+v", res.Error)
			assert.Equal(t, survival.StatusPredicted, res.Status)
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			require.NotNil(t, res.Code)
			assert.Equal(t, tt.code, *res.Code)
			assert.NotEmpty(t, res.RequestID)
			assert.Nil(t, res.Error)

			assert.Equal(t, p.Schema().Names(), stub.last.Names, "predictor receives schema order")
			assert.Equal(t, 1.0, res.Features["HER2Status"])
		})
	}
}

func TestPredict_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rec encoder.PatientRecord)
		check  func(t *testing.T, detail *survival.ErrorDetail)
	}{
		{
			name:   "unknown category",
			mutate: func(rec encoder.PatientRecord) { rec["TumorStage"] = "V" },
			check: func(t *testing.T, d *survival.ErrorDetail) {
				assert.Equal(t, survival.KindUnknownCategory, d.Kind)
				assert.Equal(t, "TumorStage", d.Field)
				assert.Equal(t, "V", d.Value)
				assert.Equal(t, []string{"I", "II", "III", "IV"}, d.Allowed)
			},
		},
		{
			name:   "out of range",
			mutate: func(rec encoder.PatientRecord) { rec["AgeAtDiagnosis"] = 150 },
			check: func(t *testing.T, d *survival.ErrorDetail) {
				assert.Equal(t, survival.KindOutOfRange, d.Kind)
				assert.Equal(t, "AgeAtDiagnosis", d.Field)
				assert.Equal(t, "max", d.Bound)
				require.NotNil(t, d.Limit)
				assert.Equal(t, 120.0, *d.Limit)
			},
		},
		{
			name:   "missing field",
			mutate: func(rec encoder.PatientRecord) { delete(rec, "MutationCount") },
			check: func(t *testing.T, d *survival.ErrorDetail) {
				assert.Equal(t, survival.KindMissingField, d.Kind)
				assert.Equal(t, []string{"MutationCount"}, d.Missing)
			},
		},
		{
			name:   "unknown field",
			mutate: func(rec encoder.PatientRecord) { rec["Smoker"] = "No" },
			check: func(t *testing.T, d *survival.ErrorDetail) {
				assert.Equal(t, survival.KindUnknownField, d.Kind)
				assert.Equal(t, "Smoker", d.Field)
			},
		},
		{
			name:   "invalid value",
			mutate: func(rec encoder.PatientRecord) { rec["TumorSize"] = "large" },
			check: func(t *testing.T, d *survival.ErrorDetail) {
				assert.Equal(t, survival.KindInvalidValue, d.Kind)
				assert.Equal(t, "TumorSize", d.Field)
			},
		},
		{
			name:   "duplicate field",
			mutate: func(rec encoder.PatientRecord) { rec["Tumor Stage"] = "I" },
			check: func(t *testing.T, d *survival.ErrorDetail) {
				assert.Equal(t, survival.KindDuplicateField, d.Kind)
				assert.Equal(t, "TumorStage", d.Field)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPredictor{}
			p := newPipeline(t, stub)
			rec := patient()
			tt.mutate(rec)

			res := p.Predict(context.Background(), rec)
			assert.False(t, res.OK())
			assert.Equal(t, survival.StatusValidationFailed, res.Status)
			assert.Empty(t, res.Outcome)
			assert.Nil(t, res.Code)
			assert.Nil(t, res.Features)
			require.NotNil(t, res.Error)
			assert.NotEmpty(t, res.Error.Message)
			tt.check(t, res.Error)

			assert.Zero(t, stub.last.Len(), "predictor must not be called")
		})
	}
}

func TestPredict_PredictionFailureIsOpaque(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	stub := &stubPredictor{err: errors.New("shape mismatch: got (1, 15) want (1, 16)")}
	p := newPipeline(t, stub, survival.WithLogger(zap.New(core)))

	res := p.Predict(context.Background(), patient())
	assert.Equal(t, survival.StatusPredictionFailed, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, survival.KindPrediction, res.Error.Kind)
	assert.Equal(t, "prediction failed", res.Error.Message)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "shape mismatch")

	entries := logs.FilterMessage("prediction failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Contains(t, entries[0].ContextMap()["error"], "shape mismatch")
}

type panickingPredictor struct{ features []string }

func (p panickingPredictor) Predict(context.Context, encoder.EncodedRecord) (int, error) {
	panic("index out of range [15] with length 15")
}

func (p panickingPredictor) Features() []string { return p.features }

func TestPredict_PredictorPanicIsPredictionFailed(t *testing.T) {
	reg, err := schema.Default()
	require.NoError(t, err)
	core, logs := observer.New(zapcore.DebugLevel)
	p := survival.NewPipeline(reg, panickingPredictor{features: reg.Names()}, survival.WithLogger(zap.New(core)))

	tests := []struct {
		name string
		run  func() survival.Result
	}{
		{
			name: "record",
			run:  func() survival.Result { return p.Predict(context.Background(), patient()) },
		},
		{
			name: "source",
			run: func() survival.Result {
				return p.PredictSource(context.Background(), record.Source{
					Content: []byte(`{"fields": {"AgeAtDiagnosis": 45, "TypeOfBreastSurgery": "Mastectomy",
"Cellularity": "High", "Chemotherapy": "0", "ERStatus": "Positive", "PRStatus": "Positive",
"HER2Status": "Negative", "Pam50Subtype": "LumA", "NeoplasmHistologicGrade": 2, "TumorSize": 30,
"TumorStage": "II", "LymphNodesExaminedPositive": 3, "MutationCount": 100,
"NottinghamPrognosticIndex": 4.5, "RelapseFreeStatus": "Yes"}}`),
					Format: "json",
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res survival.Result
			require.NotPanics(t, func() { res = tt.run() })

			assert.Equal(t, survival.StatusPredictionFailed, res.Status)
			assert.Empty(t, res.Outcome)
			assert.Nil(t, res.Code)
			require.NotNil(t, res.Error)
			assert.Equal(t, survival.KindPrediction, res.Error.Kind)
			assert.Equal(t, "prediction failed", res.Error.Message)
		})
	}

	entries := logs.FilterMessage("prediction failed").All()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].ContextMap()["error"], "predictor panicked")
}

func TestPredict_WithLogisticModel(t *testing.T) {
	reg, err := schema.Default()
	require.NoError(t, err)
	names := reg.Names()
	weights := make([]float64, len(names))
	weights[0] = 0.1   // AgeAtDiagnosis
	weights[10] = 1.0  // TumorStage
	weights[14] = 1.5  // RelapseFreeStatus
	model, err := predictor.NewLogistic(names, weights, -7, 0.5)
	require.NoError(t, err)
	p := survival.NewPipeline(reg, model)

	young := patient()
	res := p.Predict(context.Background(), young)
	require.True(t, res.OK())
	assert.Equal(t, "Alive", res.Outcome)

	old := patient()
	old["AgeAtDiagnosis"] = 70
	old["TumorStage"] = "IV"
	old["RelapseFreeStatus"] = "No"
	res = p.Predict(context.Background(), old)
	require.True(t, res.OK())
	assert.Equal(t, "Dead", res.Outcome)
}

func TestPredictSource(t *testing.T) {
	p := newPipeline(t, &stubPredictor{code: 0})

	tests := []struct {
		name       string
		source     record.Source
		wantStatus survival.Status
		wantParser string
		wantKind   survival.ErrorKind
	}{
		{
			name: "json document",
			source: record.Source{Format: "json", Content: []byte(`{"fields": {
				"Age at Diagnosis": 45, "Type of Breast Surgery": "Mastectomy", "Cellularity": "High",
				"Chemotherapy": 0, "ER Status": "Positive", "PR Status": "Positive", "HER2 Status": "Negative",
				"Pam50 + Claudin-low subtype": "LumA", "Neoplasm Histologic Grade": 2, "Tumor Size": 30.0,
				"Tumor Stage": "II", "Lymph nodes examined positive": 3, "Mutation Count": 100,
				"Nottingham prognostic index": 4.5, "Relapse Free Status": "Yes"}}`)},
			wantStatus: survival.StatusPredicted,
			wantParser: "yaml",
		},
		{
			name: "form submission",
			source: record.Source{Content: []byte("AgeAtDiagnosis=45&TypeOfBreastSurgery=Lumpectomy&Cellularity=Low" +
				"&Chemotherapy=1&ERStatus=Negative&PRStatus=Negative&HER2Status=Indeterminate&Pam50Subtype=Her2" +
				"&NeoplasmHistologicGrade=3&TumorSize=55.5&TumorStage=III&LymphNodesExaminedPositive=9" +
				"&MutationCount=20&NottinghamPrognosticIndex=6.3&RelapseFreeStatus=No")},
			wantStatus: survival.StatusPredicted,
			wantParser: "form",
		},
		{
			name:       "incomplete form",
			source:     record.Source{Format: "form", Content: []byte("AgeAtDiagnosis=150")},
			wantStatus: survival.StatusValidationFailed,
			wantParser: "form",
			wantKind:   survival.KindMissingField,
		},
		{
			name:       "unsupported format",
			source:     record.Source{Format: "pdf", Content: []byte("%PDF-1.4")},
			wantStatus: survival.StatusValidationFailed,
			wantKind:   survival.KindInvalidInput,
		},
		{
			name:       "malformed yaml",
			source:     record.Source{Format: "yaml", Content: []byte("fields: [unclosed")},
			wantStatus: survival.StatusValidationFailed,
			wantKind:   survival.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.PredictSource(context.Background(), tt.source)
			assert.Equal(t, tt.wantStatus, res.Status, "error: %+v", res.Error)
			if tt.wantParser != "" {
				assert.Equal(t, tt.wantParser, res.Parser)
			}
			if tt.wantKind != "" {
				require.NotNil(t, res.Error)
				assert.Equal(t, tt.wantKind, res.Error.Kind)
			}
		})
	}
}

func TestPredict_Metrics(t *testing.T) {
	m := metrics.New()
	p := newPipeline(t, &stubPredictor{code: 1}, survival.WithMetrics(m))

	p.Predict(context.Background(), patient())
	bad := patient()
	bad["TumorStage"] = "V"
	p.Predict(context.Background(), bad)

	expected := `
# HELP survival_requests_total Prediction requests by terminal status.
# TYPE survival_requests_total counter
survival_requests_total{status="Predicted"} 1
survival_requests_total{status="ValidationFailed"} 1
# HELP survival_predictions_total Successful predictions by outcome.
# TYPE survival_predictions_total counter
survival_predictions_total{outcome="Dead"} 1
# HELP survival_failures_total Rejected or failed requests by error kind.
# TYPE survival_failures_total counter
survival_failures_total{kind="unknown_category"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"survival_requests_total", "survival_predictions_total", "survival_failures_total"))
}

func TestPredict_ConcurrentRequestsAreIndependent(t *testing.T) {
	reg, err := schema.Default()
	require.NoError(t, err)
	names := reg.Names()
	weights := make([]float64, len(names))
	weights[0] = 0.1
	model, err := predictor.NewLogistic(names, weights, -6, 0.5)
	require.NoError(t, err)
	p := survival.NewPipeline(reg, model)

	var wg sync.WaitGroup
	results := make([]survival.Result, 40)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := patient()
			if i%2 == 1 {
				rec["AgeAtDiagnosis"] = 90
			}
			results[i] = p.Predict(context.Background(), rec)
		}(i)
	}
	wg.Wait()

	ids := map[string]bool{}
	for i, res := range results {
		require.True(t, res.OK())
		want := "Alive"
		if i%2 == 1 {
			want = "Dead"
		}
		assert.Equal(t, want, res.Outcome)
		ids[res.RequestID] = true
	}
	assert.Len(t, ids, len(results), "request ids are unique")
}

func TestRegisteredParsers(t *testing.T) {
	p := newPipeline(t, &stubPredictor{})
	assert.Equal(t, []string{"form", "yaml"}, p.RegisteredParsers())
}
