// Package registry resolves model and dataset names from the configuration
// into constructors and palettes at startup.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"segmap/internal/domain/entity"
	"segmap/internal/domain/port"
)

var (
	ErrUnknownModel    = errors.New("unknown model")
	ErrUnknownBackbone = errors.New("unknown backbone")
)

// ModelSpec is everything a factory needs to build a model variant.
type ModelSpec struct {
	Name        string
	Backbone    string
	NumClasses  int
	WeightsPath string
	LibraryPath string
	InputName   string
	OutputName  string
	Device      entity.Device
}

// ModelFactory builds a loaded, ready-to-run model.
type ModelFactory func(spec ModelSpec, logger *zap.Logger) (port.Segmenter, error)

type architecture struct {
	backbones []string // empty accepts any backbone
	factory   ModelFactory
}

// Architectures lists the supported model families and their backbone variants.
var Architectures = map[string][]string{
	"SegFormer": {"MiT-B0", "MiT-B1", "MiT-B2", "MiT-B3", "MiT-B4", "MiT-B5"},
	"Lawin":     {"MiT-B0", "MiT-B1", "MiT-B2", "MiT-B3", "MiT-B4", "MiT-B5"},
	"SFNet":     {"ResNetD-18", "ResNetD-34", "ResNetD-50", "ResNetD-101"},
	"FaPN":      {"ResNet-50", "ResNet-101"},
	"FCHarDNet": {"HarDNet-70"},
	"DDRNet":    {"DDRNet-23slim", "DDRNet-23"},
	"BiSeNetv1": {"ResNet-18", "ResNet-50", "ResNet-101"},
	"BiSeNetv2": nil,
	"ONNX":      nil,
}

// Models maps architecture names to factories.
type Models struct {
	archs map[string]architecture
}

// NewModels registers every entry of Architectures with the given backend factory.
func NewModels(factory ModelFactory) *Models {
	m := &Models{archs: make(map[string]architecture, len(Architectures))}
	for name, backbones := range Architectures {
		m.Register(name, backbones, factory)
	}
	return m
}

// Register adds or replaces an architecture.
func (m *Models) Register(name string, backbones []string, factory ModelFactory) {
	m.archs[name] = architecture{backbones: backbones, factory: factory}
}

// Names returns the registered architecture names, sorted.
func (m *Models) Names() []string {
	names := make([]string, 0, len(m.archs))
	for name := range m.archs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build resolves spec.Name and spec.Backbone and calls the factory.
func (m *Models) Build(spec ModelSpec, logger *zap.Logger) (port.Segmenter, error) {
	arch, ok := m.archs[spec.Name]
	if !ok {
		return nil, fmt.Errorf("%w %q, available: %s", ErrUnknownModel, spec.Name, strings.Join(m.Names(), ", "))
	}
	if len(arch.backbones) > 0 && !slices.Contains(arch.backbones, spec.Backbone) {
		return nil, fmt.Errorf("%w %q for %s, available: %s",
			ErrUnknownBackbone, spec.Backbone, spec.Name, strings.Join(arch.backbones, ", "))
	}
	return arch.factory(spec, logger)
}
