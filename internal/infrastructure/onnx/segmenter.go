package onnx

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
	"gorgonia.org/tensor"

	"segmap/internal/domain/entity"
	"segmap/internal/domain/port"
)

// Default tensor names of exported segmentation graphs.
const (
	DefaultInputName  = "input"
	DefaultOutputName = "output"
)

// Options describe an exported model file and where it runs.
type Options struct {
	ModelPath   string
	LibraryPath string // onnxruntime shared library, empty uses the platform default
	InputName   string
	OutputName  string
	NumClasses  int
	Device      entity.Device
}

// Segmenter runs an ONNX segmentation graph through onnxruntime.
// Input and output spatial sizes are dynamic, so one session serves every image.
type Segmenter struct {
	session    *ort.DynamicAdvancedSession
	numClasses int
	logger     *zap.Logger
}

// NewSegmenter loads the model and creates the inference session on the configured device.
func NewSegmenter(opts Options, logger *zap.Logger) (*Segmenter, error) {
	if opts.InputName == "" {
		opts.InputName = DefaultInputName
	}
	if opts.OutputName == "" {
		opts.OutputName = DefaultOutputName
	}
	if opts.NumClasses <= 0 {
		return nil, fmt.Errorf("model needs a positive class count, got %d", opts.NumClasses)
	}

	if !ort.IsInitialized() {
		if opts.LibraryPath != "" {
			ort.SetSharedLibraryPath(opts.LibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	if err := checkOutputClasses(opts); err != nil {
		ort.DestroyEnvironment()
		return nil, err
	}

	sessionOpts, err := newSessionOptions(opts.Device)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, err
	}
	defer sessionOpts.Destroy()

	session, err := ort.NewDynamicAdvancedSession(opts.ModelPath,
		[]string{opts.InputName}, []string{opts.OutputName}, sessionOpts)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	logger.Info("model loaded",
		zap.String("path", opts.ModelPath),
		zap.Stringer("device", opts.Device),
		zap.Int("classes", opts.NumClasses),
	)

	return &Segmenter{
		session:    session,
		numClasses: opts.NumClasses,
		logger:     logger,
	}, nil
}

// checkOutputClasses compares a fixed class dimension in the graph with the palette size.
func checkOutputClasses(opts Options) error {
	_, outputs, err := ort.GetInputOutputInfo(opts.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to read model info: %w", err)
	}
	for _, out := range outputs {
		if out.Name != opts.OutputName {
			continue
		}
		dims := out.Dimensions
		if len(dims) != 4 {
			return &entity.ShapeError{Op: "model output", Want: "(1,K,H,W)"}
		}
		if k := dims[1]; k > 0 && int(k) != opts.NumClasses {
			return fmt.Errorf("model has %d classes, palette has %d: %w", k, opts.NumClasses, entity.ErrClassMismatch)
		}
		return nil
	}
	return fmt.Errorf("model has no output named %q", opts.OutputName)
}

func newSessionOptions(device entity.Device) (*ort.SessionOptions, error) {
	sessionOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	if device.Kind != entity.DeviceCUDA {
		return sessionOpts, nil
	}

	cudaOpts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		sessionOpts.Destroy()
		return nil, fmt.Errorf("failed to create CUDA options: %w", err)
	}
	defer cudaOpts.Destroy()

	if err := cudaOpts.Update(map[string]string{"device_id": strconv.Itoa(device.Index)}); err != nil {
		sessionOpts.Destroy()
		return nil, fmt.Errorf("failed to select %s: %w", device, err)
	}
	if err := sessionOpts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
		sessionOpts.Destroy()
		return nil, fmt.Errorf("failed to enable CUDA: %w", err)
	}
	return sessionOpts, nil
}

// Forward runs one inference pass; the output is copied out of onnxruntime memory.
func (s *Segmenter) Forward(ctx context.Context, input *tensor.Dense) (*tensor.Dense, error) {
	_ = ctx

	data, ok := input.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("input must be float32, got %v", input.Dtype())
	}
	shape := input.Shape()
	dims := make([]int64, len(shape))
	for i, d := range shape {
		dims[i] = int64(d)
	}

	in, err := ort.NewTensor(ort.NewShape(dims...), data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer in.Destroy()

	outputs := []ort.Value{nil}
	if err := s.session.Run([]ort.Value{in}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.New("model output is not a float32 tensor")
	}

	outShape := out.GetShape()
	if len(outShape) != 4 || int(outShape[1]) != s.numClasses {
		return nil, fmt.Errorf("model output shape %v for %d classes: %w", outShape, s.numClasses, entity.ErrClassMismatch)
	}
	intShape := make([]int, len(outShape))
	for i, d := range outShape {
		intShape[i] = int(d)
	}
	logits := make([]float32, len(out.GetData()))
	copy(logits, out.GetData())

	return tensor.New(tensor.WithShape(intShape...), tensor.WithBacking(logits)), nil
}

// NumClasses returns the class count the session was opened for.
func (s *Segmenter) NumClasses() int {
	return s.numClasses
}

// Close destroys the session and the onnxruntime environment.
func (s *Segmenter) Close() error {
	var err error
	if s.session != nil {
		err = s.session.Destroy()
		s.session = nil
	}
	if destroyErr := ort.DestroyEnvironment(); err == nil {
		err = destroyErr
	}
	return err
}

var _ port.Segmenter = (*Segmenter)(nil)
