// SPDX-License-Identifier: Apache-2.0

package predictor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/oncoform/survival-mcp/internal/encoder"
)

// Rule is a model expressed as a CEL expression over the encoded features,
// for example `features.TumorStage >= 2.0 && features.RelapseFreeStatus == 1.0`.
// The expression yields a bool (true -> code 1) or an int code.
type Rule struct {
	features   []string
	expression string
	program    cel.Program
}

// NewRule compiles expression against the map variable `features`.
func NewRule(features []string, expression string) (*Rule, error) {
	if len(features) == 0 {
		return nil, errors.New("rule: no features")
	}
	if expression == "" {
		return nil, errors.New("rule: expression can't be empty")
	}

	env, err := cel.NewEnv(
		cel.Variable("features", cel.MapType(cel.StringType, cel.DoubleType)),
	)
	if err != nil {
		return nil, fmt.Errorf("rule: error creating CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("rule: error compiling CEL expression: %w", issues.Err())
	}
	switch ast.OutputType().String() {
	case cel.BoolType.String(), cel.IntType.String(), cel.DynType.String():
	default:
		return nil, fmt.Errorf("rule: expression yields %s, want bool or int", ast.OutputType())
	}

	p, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("rule: error creating program: %w", err)
	}
	return &Rule{
		features:   append([]string(nil), features...),
		expression: expression,
		program:    p,
	}, nil
}

func (r *Rule) Features() []string {
	return append([]string(nil), r.features...)
}

// Expression returns the source of the rule.
func (r *Rule) Expression() string {
	return r.expression
}

func (r *Rule) Predict(ctx context.Context, rec encoder.EncodedRecord) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, &PredictionError{Err: err}
	}
	if err := checkFeatures(r.features, rec); err != nil {
		return 0, &PredictionError{Err: err}
	}

	out, _, err := r.program.ContextEval(ctx, map[string]any{
		"features": rec.Map(),
	})
	if err != nil {
		return 0, &PredictionError{Err: fmt.Errorf("error evaluating CEL expression: %w", err)}
	}

	switch v := out.Value().(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	}
	return 0, &PredictionError{Err: fmt.Errorf("expression produced %T, want bool or int", out.Value())}
}
