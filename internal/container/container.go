package container

import (
	"fmt"

	"go.uber.org/zap"

	"segmap/config"
	telegram "segmap/internal/api"
	app "segmap/internal/application"
	"segmap/internal/domain/entity"
	"segmap/internal/domain/port"
	"segmap/internal/infrastructure/onnx"
	"segmap/internal/infrastructure/storage"
	"segmap/internal/infrastructure/vision"
	"segmap/internal/registry"
)

// Session holds the compute context, the loaded model and the services built
// on them. It is created once and shared read-only by every pipeline call.
type Session struct {
	Device  entity.Device
	Palette entity.Palette
	Model   port.Segmenter

	Store     *storage.FileResultStore
	Predictor *app.Predictor
	Batch     *app.BatchRunner
	Validator *app.Validator
}

// New builds a session with the ONNX backend and the built-in palettes.
func New(cfg *config.Config, logger *zap.Logger) (*Session, error) {
	return NewWithRegistries(cfg, registry.NewModels(newONNXModel), registry.NewPalettes(), logger)
}

// NewWithRegistries builds a session resolving names through the given registries.
func NewWithRegistries(cfg *config.Config, models *registry.Models, palettes *registry.Palettes, logger *zap.Logger) (*Session, error) {
	device, err := entity.ParseDevice(cfg.Device)
	if err != nil {
		return nil, err
	}

	palette, err := resolvePalette(cfg.Dataset, palettes)
	if err != nil {
		return nil, err
	}

	model, err := models.Build(registry.ModelSpec{
		Name:        cfg.Model.Name,
		Backbone:    cfg.Model.Backbone,
		NumClasses:  palette.Len(),
		WeightsPath: cfg.Test.ModelPath,
		LibraryPath: cfg.OnnxRuntimeLib,
		InputName:   cfg.Model.InputName,
		OutputName:  cfg.Model.OutputName,
		Device:      device,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		model.Close()
		return nil, err
	}

	codec := vision.NewCodec()
	store := storage.NewFileResultStore(cfg.SaveDir, codec)
	predictor := app.NewPredictor(
		app.NewPreprocessor(cfg.Test.ShortSide(), vision.NewResizer()),
		model,
		app.NewPostprocessor(palette, cfg.Test.Overlay),
		logger,
	)
	batch := app.NewBatchRunner(predictor, codec, store, app.BatchOptions{
		Glob:            cfg.Test.Glob,
		ContinueOnError: cfg.Test.ContinueOnError,
	}, logger)

	return &Session{
		Device:    device,
		Palette:   palette,
		Model:     model,
		Store:     store,
		Predictor: predictor,
		Batch:     batch,
		Validator: app.NewValidator(store, notifier, logger),
	}, nil
}

// NewValidation builds only what re-validating existing outputs needs: no
// model is loaded. Batch can discover inputs but not run them.
func NewValidation(cfg *config.Config, logger *zap.Logger) (*Session, error) {
	device, err := entity.ParseDevice(cfg.Device)
	if err != nil {
		return nil, err
	}
	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	codec := vision.NewCodec()
	store := storage.NewFileResultStore(cfg.SaveDir, codec)
	return &Session{
		Device: device,
		Store:  store,
		Batch: app.NewBatchRunner(nil, codec, store, app.BatchOptions{
			Glob:            cfg.Test.Glob,
			ContinueOnError: cfg.Test.ContinueOnError,
		}, logger),
		Validator: app.NewValidator(store, notifier, logger),
	}, nil
}

// newNotifier returns nil when no chat is configured.
func newNotifier(cfg *config.Config, logger *zap.Logger) (port.ReportNotifier, error) {
	if cfg.Notify.TelegramChatID == 0 {
		return nil, nil
	}
	n, err := telegram.NewNotifier(cfg.TelegramToken, cfg.Notify.TelegramChatID, logger)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func resolvePalette(ds config.Dataset, palettes *registry.Palettes) (entity.Palette, error) {
	if ds.Palette != "" {
		return registry.LoadPaletteFile(ds.Palette)
	}
	return palettes.Lookup(ds.Name)
}

func newONNXModel(spec registry.ModelSpec, logger *zap.Logger) (port.Segmenter, error) {
	seg, err := onnx.NewSegmenter(onnx.Options{
		ModelPath:   spec.WeightsPath,
		LibraryPath: spec.LibraryPath,
		InputName:   spec.InputName,
		OutputName:  spec.OutputName,
		NumClasses:  spec.NumClasses,
		Device:      spec.Device,
	}, logger)
	if err != nil {
		return nil, err
	}
	return seg, nil
}

// Close releases the model.
func (s *Session) Close() error {
	if s.Model == nil {
		return nil
	}
	return s.Model.Close()
}
