package container

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorgonia.org/tensor"

	"segmap/config"
	"segmap/internal/domain/entity"
	"segmap/internal/domain/port"
	"segmap/internal/registry"
)

type fakeSegmenter struct {
	classes int
	closed  bool
}

func (s *fakeSegmenter) Forward(_ context.Context, input *tensor.Dense) (*tensor.Dense, error) {
	shape := input.Shape()
	out := make([]float32, s.classes*shape[2]*shape[3])
	return tensor.New(tensor.WithShape(1, s.classes, shape[2], shape[3]), tensor.WithBacking(out)), nil
}

func (s *fakeSegmenter) NumClasses() int { return s.classes }

func (s *fakeSegmenter) Close() error {
	s.closed = true
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Device:  "cpu",
		SaveDir: t.TempDir(),
		Model:   config.Model{Name: "SegFormer", Backbone: "MiT-B0"},
		Dataset: config.Dataset{Name: "CamVid"},
		Test: config.Test{
			ModelPath: "segformer.onnx",
			File:      "assets",
			ImageSize: []int{64, 64},
		},
	}
}

func TestNewWithRegistries(t *testing.T) {
	var spec registry.ModelSpec
	seg := &fakeSegmenter{}
	models := registry.NewModels(func(s registry.ModelSpec, _ *zap.Logger) (port.Segmenter, error) {
		spec = s
		seg.classes = s.NumClasses
		return seg, nil
	})

	cfg := testConfig(t)
	session, err := NewWithRegistries(cfg, models, registry.NewPalettes(), zap.NewNop())
	require.NoError(t, err)

	require.Equal(t, entity.Device{Kind: entity.DeviceCPU}, session.Device)
	require.Equal(t, 11, session.Palette.Len())
	require.Equal(t, 11, spec.NumClasses)
	require.Equal(t, "segformer.onnx", spec.WeightsPath)
	require.Equal(t, filepath.Join(cfg.SaveDir, "test_results"), session.Store.ResultDir())
	require.NotNil(t, session.Batch)
	require.NotNil(t, session.Validator)

	require.NoError(t, session.Close())
	require.True(t, seg.closed)
}

func TestNewWithRegistries_PaletteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.yaml")
	require.NoError(t, os.WriteFile(path, []byte("PALETTE:\n  - [0, 0, 0]\n  - [255, 255, 255]\n"), 0o644))

	models := registry.NewModels(func(s registry.ModelSpec, _ *zap.Logger) (port.Segmenter, error) {
		return &fakeSegmenter{classes: s.NumClasses}, nil
	})

	cfg := testConfig(t)
	cfg.Dataset = config.Dataset{Palette: path}
	session, err := NewWithRegistries(cfg, models, registry.NewPalettes(), zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 2, session.Palette.Len())
	require.Equal(t, 2, session.Model.NumClasses())
}

func TestNewWithRegistries_Errors(t *testing.T) {
	models := registry.NewModels(func(registry.ModelSpec, *zap.Logger) (port.Segmenter, error) {
		return nil, errors.New("no weights")
	})

	cfg := testConfig(t)
	cfg.Device = "tpu"
	_, err := NewWithRegistries(cfg, models, registry.NewPalettes(), zap.NewNop())
	require.Error(t, err)

	cfg = testConfig(t)
	cfg.Dataset.Name = "Mars"
	_, err = NewWithRegistries(cfg, models, registry.NewPalettes(), zap.NewNop())
	require.ErrorIs(t, err, registry.ErrUnknownDataset)

	cfg = testConfig(t)
	cfg.Model.Name = "UNet"
	_, err = NewWithRegistries(cfg, models, registry.NewPalettes(), zap.NewNop())
	require.ErrorIs(t, err, registry.ErrUnknownModel)

	cfg = testConfig(t)
	_, err = NewWithRegistries(cfg, models, registry.NewPalettes(), zap.NewNop())
	require.ErrorContains(t, err, "no weights")
}

func TestNewValidation(t *testing.T) {
	cfg := testConfig(t)
	input := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(input, "a.png"), []byte("x"), 0o644))
	cfg.Test.File = input

	session, err := NewValidation(cfg, zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, session.Model)

	files, err := session.Batch.Discover(cfg.Test.File)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(input, "a.png")}, files)
	require.NoError(t, session.Close())
}
