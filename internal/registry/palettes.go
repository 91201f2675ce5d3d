package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"segmap/internal/domain/entity"
)

var ErrUnknownDataset = errors.New("unknown dataset")

// Palettes maps dataset names to their class color tables.
type Palettes struct {
	tables map[string]entity.Palette
	names  []string
}

// NewPalettes returns the built-in dataset palettes.
func NewPalettes() *Palettes {
	p := &Palettes{tables: make(map[string]entity.Palette)}
	p.Register("CityScapes", entity.PaletteFromTriples(cityscapes))
	p.Register("CamVid", entity.PaletteFromTriples(camvid))
	p.Register("PascalVOC", vocPalette(21))
	return p
}

// Register adds or replaces a palette. Lookup ignores case.
func (p *Palettes) Register(name string, palette entity.Palette) {
	key := strings.ToLower(name)
	if _, ok := p.tables[key]; !ok {
		p.names = append(p.names, name)
		sort.Strings(p.names)
	}
	p.tables[key] = palette
}

// Lookup returns the palette of dataset name.
func (p *Palettes) Lookup(name string) (entity.Palette, error) {
	palette, ok := p.tables[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q, available: %s", ErrUnknownDataset, name, strings.Join(p.names, ", "))
	}
	return palette, nil
}

type paletteFile struct {
	Palette [][]int `yaml:"PALETTE"`
}

// LoadPaletteFile reads a YAML file with a PALETTE list of [r, g, b] triples.
func LoadPaletteFile(path string) (entity.Palette, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read palette: %w", err)
	}

	var f paletteFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse palette: %w", err)
	}
	if len(f.Palette) == 0 {
		return nil, fmt.Errorf("palette %s is empty", path)
	}

	triples := make([][3]uint8, len(f.Palette))
	for i, rgb := range f.Palette {
		if len(rgb) != 3 {
			return nil, fmt.Errorf("palette %s: class %d has %d components, want 3", path, i, len(rgb))
		}
		for j, v := range rgb {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("palette %s: class %d component %d out of range: %d", path, i, j, v)
			}
			triples[i][j] = uint8(v)
		}
	}
	return entity.PaletteFromTriples(triples), nil
}

// vocPalette generates the PASCAL VOC color map by spreading the bits of the
// class id over the high bits of the three channels.
func vocPalette(n int) entity.Palette {
	triples := make([][3]uint8, n)
	for i := range triples {
		id := i
		var r, g, b uint8
		for j := 0; j < 8; j++ {
			r |= uint8((id>>0)&1) << (7 - j)
			g |= uint8((id>>1)&1) << (7 - j)
			b |= uint8((id>>2)&1) << (7 - j)
			id >>= 3
		}
		triples[i] = [3]uint8{r, g, b}
	}
	return entity.PaletteFromTriples(triples)
}

var cityscapes = [][3]uint8{
	{128, 64, 128}, // road
	{244, 35, 232}, // sidewalk
	{70, 70, 70},   // building
	{102, 102, 156},
	{190, 153, 153},
	{153, 153, 153},
	{250, 170, 30},
	{220, 220, 0},
	{107, 142, 35}, // vegetation
	{152, 251, 152},
	{70, 130, 180}, // sky
	{220, 20, 60},  // person
	{255, 0, 0},
	{0, 0, 142}, // car
	{0, 0, 70},
	{0, 60, 100},
	{0, 80, 100},
	{0, 0, 230},
	{119, 11, 32}, // bicycle
}

var camvid = [][3]uint8{
	{128, 128, 128}, // sky
	{128, 0, 0},
	{192, 192, 128},
	{128, 64, 128}, // road
	{0, 0, 192},
	{128, 128, 0},
	{192, 128, 128},
	{64, 64, 128},
	{64, 0, 128}, // car
	{64, 64, 0},
	{0, 128, 192},
}
