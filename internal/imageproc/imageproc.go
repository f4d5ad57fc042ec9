package imageproc

import (
	"bytes"
	"context"
	"fmt"
	"image"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support

	"media-orchestrator/internal/logging"
	"media-orchestrator/internal/mediatype"
	"media-orchestrator/internal/processor"
)

// DefaultMaxPixels is the largest image (width * height) fully decoded
// for pixel statistics. Larger images still get dimensions from the
// header but skip full decoding to bound memory.
const DefaultMaxPixels = 20_000_000

// Capability names this processor can use.
const (
	CapObjectDetection = "object_detection"
	CapOCR             = "ocr"
	CapDescription     = "description"
)

// Processor is the built-in image analysis backend. It extracts
// dimensions and format from the header, computes basic pixel
// statistics for images within the size bound, and runs the optional
// AI-backed features through the capability executor.
type Processor struct {
	maxPixels int
	maxBytes  int
}

// New creates an image processor with default limits. Initialize
// overrides them from configuration.
func New() *Processor {
	return &Processor{maxPixels: DefaultMaxPixels}
}

// Initialize implements processor.Processor.
func (p *Processor) Initialize(cfg map[string]any) error {
	if v, ok := cfg["max_pixels"].(int); ok && v > 0 {
		p.maxPixels = v
	}
	if v, ok := cfg["max_input_bytes"].(int); ok && v > 0 {
		p.maxBytes = v
	}
	return nil
}

// Validate implements processor.Processor. It applies the shared size
// checks and requires a decodable image header.
func (p *Processor) Validate(input processor.Input) error {
	if err := processor.ValidateInput(input, p.maxBytes); err != nil {
		return err
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(input.Data)); err != nil {
		return fmt.Errorf("%w: undecodable image: %v", processor.ErrValidation, err)
	}
	return nil
}

// Process implements processor.Processor.
func (p *Processor) Process(ctx context.Context, input processor.Input, opts processor.Options, progress *processor.ProgressReporter) (*processor.Envelope, error) {
	env := processor.NewEnvelope("image", input)
	progress.Report(5, "decoding header")

	cfg, format, err := image.DecodeConfig(bytes.NewReader(input.Data))
	if err != nil {
		env.AddError(fmt.Sprintf("failed to decode image header: %v", err), "decode")
		return env.Finalize(), nil
	}

	env.AddResult("width", cfg.Width)
	env.AddResult("height", cfg.Height)
	env.AddResult("format", format)
	env.Metadata["megapixels"] = float64(cfg.Width*cfg.Height) / 1e6

	progress.Report(30, "computing pixel statistics")
	if cfg.Width*cfg.Height <= p.maxPixels {
		if err := p.pixelStats(input.Data, env); err != nil {
			env.AddWarning(fmt.Sprintf("pixel statistics unavailable: %v", err), "stats")
		}
	} else {
		logging.Debug("Skipping pixel statistics for %dx%d image (limit %d pixels)",
			cfg.Width, cfg.Height, p.maxPixels)
		env.AddWarning("pixel statistics skipped: image exceeds pixel limit", "stats")
	}

	progress.Report(60, "running optional features")
	for _, name := range p.Capabilities() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		opts.RunFeature(ctx, name, input.Data, env)
	}

	progress.Report(100, "done")
	return env.Finalize(), nil
}

// pixelStats decodes the full image and records its average color.
func (p *Processor) pixelStats(data []byte, env *processor.Envelope) error {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return err
	}

	// Resizing to a single pixel averages the whole image in one pass.
	avg := imaging.Resize(img, 1, 1, imaging.Lanczos).At(0, 0)
	r, g, b, _ := avg.RGBA()
	env.AddResult("averageColor", fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
	return nil
}

// Cleanup implements processor.Processor. The image processor holds no
// per-owner state.
func (p *Processor) Cleanup(string) error { return nil }

// SupportedTypes implements processor.Processor.
func (p *Processor) SupportedTypes() []mediatype.Type {
	return []mediatype.Type{mediatype.TypeImage}
}

// Capabilities implements processor.Processor.
func (p *Processor) Capabilities() []string {
	return []string{CapObjectDetection, CapOCR, CapDescription}
}
