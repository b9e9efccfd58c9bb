// SPDX-License-Identifier: Apache-2.0

package main

import (
	"go.uber.org/zap"

	"github.com/oncoform/survival-mcp/internal/config"
	"github.com/oncoform/survival-mcp/internal/logging"
	"github.com/oncoform/survival-mcp/internal/metrics"
	"github.com/oncoform/survival-mcp/internal/predictor"
	"github.com/oncoform/survival-mcp/internal/schema"
	"github.com/oncoform/survival-mcp/internal/survival"
)

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	config    *config.Config
	logger    *zap.Logger
	newLogger func(level string, development bool) (*zap.Logger, error)
}

func newApp() *app {
	return &app{logger: zap.NewNop(), newLogger: logging.New}
}

func (a *app) registry() (*schema.Registry, error) {
	if a.config.SchemaPath == "" {
		return schema.Default()
	}
	return schema.Load(a.config.SchemaPath)
}

// pipeline loads the schema and model. A model that fails to load is fatal
// for every command that predicts.
func (a *app) pipeline(m *metrics.Metrics) (*survival.Pipeline, error) {
	if err := a.config.Validate(); err != nil {
		return nil, err
	}

	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	model, err := predictor.Load(a.config.ModelPath, reg)
	if err != nil {
		return nil, err
	}

	a.logger.Info("model loaded",
		zap.String("model_path", a.config.ModelPath),
		zap.String("schema_path", a.config.SchemaPath),
		zap.Int("features", reg.Len()))

	opts := []survival.Option{survival.WithLogger(a.logger)}
	if m != nil {
		opts = append(opts, survival.WithMetrics(m))
	}
	return survival.NewPipeline(reg, model, opts...), nil
}
