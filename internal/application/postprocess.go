package app

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"

	"segmap/internal/domain/entity"
)

// Fixed overlay blend weights.
const (
	overlayRawWeight   = 0.4
	overlayColorWeight = 0.6
)

// Postprocessor turns model logits into an output image at source resolution.
type Postprocessor struct {
	palette entity.Palette
	overlay bool
}

// NewPostprocessor colorizes with palette; overlay blends the result over the source image.
func NewPostprocessor(palette entity.Palette, overlay bool) *Postprocessor {
	return &Postprocessor{
		palette: palette,
		overlay: overlay,
	}
}

// Upsample resizes (1,K,h,w) logits to (1,K,height,width) with bilinear
// interpolation in align-corners mode: the corner samples of input and output
// coincide exactly.
func (p *Postprocessor) Upsample(logits *tensor.Dense, height, width int) (*tensor.Dense, error) {
	k, inH, inW, src, err := logitsView(logits)
	if err != nil {
		return nil, err
	}
	if height <= 0 || width <= 0 {
		return nil, &entity.ShapeError{Op: "upsample", Got: []int{height, width}, Want: "positive output size"}
	}

	ys := alignCornersTaps(inH, height)
	xs := alignCornersTaps(inW, width)

	dst := make([]float32, k*height*width)
	for c := 0; c < k; c++ {
		in := src[c*inH*inW : (c+1)*inH*inW]
		out := dst[c*height*width : (c+1)*height*width]
		for y, ty := range ys {
			row0 := in[ty.lo*inW : (ty.lo+1)*inW]
			row1 := in[ty.hi*inW : (ty.hi+1)*inW]
			for x, tx := range xs {
				top := row0[tx.lo] + (row0[tx.hi]-row0[tx.lo])*tx.frac
				bottom := row1[tx.lo] + (row1[tx.hi]-row1[tx.lo])*tx.frac
				out[y*width+x] = top + (bottom-top)*ty.frac
			}
		}
	}

	return tensor.New(tensor.WithShape(1, k, height, width), tensor.WithBacking(dst)), nil
}

type tap struct {
	lo, hi int
	frac   float32
}

// alignCornersTaps maps every output index to its two source neighbours.
func alignCornersTaps(in, out int) []tap {
	taps := make([]tap, out)
	var scale float64
	if out > 1 {
		scale = float64(in-1) / float64(out-1)
	}
	for i := range taps {
		pos := float64(i) * scale
		lo := int(math.Floor(pos))
		if lo > in-1 {
			lo = in - 1
		}
		hi := min(lo+1, in-1)
		taps[i] = tap{lo: lo, hi: hi, frac: float32(pos - float64(lo))}
	}
	return taps
}

// Classify applies softmax over the class axis and picks the arg-max class of
// every pixel. On exact ties the lowest class index wins.
func (p *Postprocessor) Classify(scores *tensor.Dense) (*entity.ClassMap, error) {
	k, h, w, src, err := logitsView(scores)
	if err != nil {
		return nil, err
	}

	plane := h * w
	cm := &entity.ClassMap{Height: h, Width: w, Classes: make([]int, plane)}
	probs := make([]float64, k)
	for i := 0; i < plane; i++ {
		for c := 0; c < k; c++ {
			probs[c] = float64(src[c*plane+i])
		}
		softmax(probs)
		cm.Classes[i] = floats.MaxIdx(probs)
	}
	return cm, nil
}

func softmax(s []float64) {
	lse := floats.LogSumExp(s)
	for i, v := range s {
		s[i] = math.Exp(v - lse)
	}
}

// Colorize maps every class id through the palette into a CHW color image.
func (p *Postprocessor) Colorize(cm *entity.ClassMap) (*entity.Image, error) {
	img, err := entity.NewImage(entity.RGBChannels, cm.Height, cm.Width)
	if err != nil {
		return nil, err
	}

	plane := cm.Height * cm.Width
	for i, id := range cm.Classes {
		col, err := p.palette.Color(id)
		if err != nil {
			return nil, err
		}
		img.Pix[i] = col.R
		img.Pix[plane+i] = col.G
		img.Pix[2*plane+i] = col.B
	}
	return img, nil
}

// Blend returns round(raw*0.4 + colorMap*0.6) per pixel value.
func Blend(raw, colorMap *entity.Image) (*entity.Image, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	if raw.Height != colorMap.Height || raw.Width != colorMap.Width || len(raw.Pix) != len(colorMap.Pix) {
		return nil, &entity.ShapeError{
			Op:   "overlay",
			Got:  colorMap.Shape(),
			Want: fmt.Sprintf("%v to match the source image", raw.Shape()),
		}
	}

	out := &entity.Image{
		Channels: raw.Channels,
		Height:   raw.Height,
		Width:    raw.Width,
		Pix:      make([]uint8, len(raw.Pix)),
	}
	for i := range raw.Pix {
		v := math.Round(float64(raw.Pix[i])*overlayRawWeight + float64(colorMap.Pix[i])*overlayColorWeight)
		out.Pix[i] = uint8(min(max(v, 0), 255))
	}
	return out, nil
}

// Postprocess upsamples logits to the raw image size, classifies, colorizes
// and, when enabled, overlays the result on raw.
func (p *Postprocessor) Postprocess(logits *tensor.Dense, raw *entity.Image) (*entity.Image, error) {
	k, _, _, _, err := logitsView(logits)
	if err != nil {
		return nil, err
	}
	if k != p.palette.Len() {
		return nil, fmt.Errorf("model produced %d classes, palette has %d: %w", k, p.palette.Len(), entity.ErrClassMismatch)
	}

	up, err := p.Upsample(logits, raw.Height, raw.Width)
	if err != nil {
		return nil, fmt.Errorf("upsample: %w", err)
	}
	cm, err := p.Classify(up)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	colorMap, err := p.Colorize(cm)
	if err != nil {
		return nil, fmt.Errorf("colorize: %w", err)
	}
	if !p.overlay {
		return colorMap, nil
	}
	return Blend(raw, colorMap)
}

// logitsView checks for a (1,K,H,W) float32 tensor and returns its dims and backing data.
func logitsView(t *tensor.Dense) (k, h, w int, data []float32, err error) {
	if t == nil {
		return 0, 0, 0, nil, &entity.ShapeError{Op: "logits", Want: "(1,K,H,W) tensor"}
	}
	shape := t.Shape()
	if len(shape) != 4 || shape[0] != 1 || shape[1] <= 0 || shape[2] <= 0 || shape[3] <= 0 {
		return 0, 0, 0, nil, &entity.ShapeError{Op: "logits", Got: []int(shape), Want: "(1,K,H,W)"}
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return 0, 0, 0, nil, fmt.Errorf("logits: want float32 data, got %v", t.Dtype())
	}
	return shape[1], shape[2], shape[3], data, nil
}
