package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"segmap/internal/domain/entity"
	"segmap/internal/domain/port"
)

// Predictor runs the full transform pipeline around the model for one image.
type Predictor struct {
	pre    *Preprocessor
	model  port.Segmenter
	post   *Postprocessor
	logger *zap.Logger
}

// NewPredictor wires the stages together. The model is shared read-only.
func NewPredictor(pre *Preprocessor, model port.Segmenter, post *Postprocessor, logger *zap.Logger) *Predictor {
	return &Predictor{
		pre:    pre,
		model:  model,
		post:   post,
		logger: logger,
	}
}

// Predict segments raw and returns the output image at raw's resolution.
// The result's Stage tracks how far the image got.
func (p *Predictor) Predict(ctx context.Context, raw *entity.Image, result *entity.FileResult) (*entity.Image, error) {
	if p.model == nil {
		return nil, errors.New("model is not configured")
	}

	input, err := p.pre.Preprocess(raw)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	result.SetStage(entity.StagePreprocessed)

	start := time.Now()
	logits, err := p.model.Forward(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	p.logger.Debug("model forward",
		zap.Ints("input_shape", input.Shape()),
		zap.Ints("output_shape", logits.Shape()),
		zap.Duration("elapsed", time.Since(start)),
	)
	result.SetStage(entity.StageInferred)

	out, err := p.post.Postprocess(logits, raw)
	if err != nil {
		return nil, fmt.Errorf("postprocess: %w", err)
	}
	result.SetStage(entity.StagePostprocessed)

	return out, nil
}
