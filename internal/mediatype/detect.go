package mediatype

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"media-orchestrator/internal/logging"
)

// ErrNoTypeDetected is returned when no detection stage matched the input.
// Detection never guesses a default category.
var ErrNoTypeDetected = errors.New("media type could not be detected")

// Metadata carries the caller-supplied hints used for detection.
type Metadata struct {
	// Type is an explicit category hint ("video", "audio", "image").
	Type string
	// Filename is the original file name, if known.
	Filename string
	// MimeType is the declared MIME type, if known.
	MimeType string
}

// sniffLen is the number of leading bytes inspected for signatures.
const sniffLen = 12

// Detector classifies content using per-category extension sets. The
// zero value is not usable; construct with NewDetector.
type Detector struct {
	video map[string]bool
	audio map[string]bool
	image map[string]bool
}

// NewDetector returns a Detector using the package default extension
// sets. Non-nil overrides replace the corresponding set.
func NewDetector(video, audio, image map[string]bool) *Detector {
	d := &Detector{video: VideoExtensions, audio: AudioExtensions, image: ImageExtensions}
	if video != nil {
		d.video = video
	}
	if audio != nil {
		d.audio = audio
	}
	if image != nil {
		d.image = image
	}
	return d
}

// Detect classifies content into one of the three media categories.
//
// Resolution order, first match wins:
//  1. explicit metadata type hint
//  2. filename extension
//  3. MIME type prefix
//  4. binary signature over the first 12 bytes
//
// Returns ErrNoTypeDetected if nothing matches.
func (d *Detector) Detect(buf []byte, meta Metadata) (Type, error) {
	if hint := strings.ToLower(strings.TrimSpace(meta.Type)); hint != "" {
		t := Type(hint)
		if t.Valid() {
			return t, nil
		}
		logging.Debug("Ignoring invalid media type hint %q", meta.Type)
	}

	if meta.Filename != "" {
		ext := strings.ToLower(filepath.Ext(meta.Filename))
		switch {
		case d.video[ext]:
			return TypeVideo, nil
		case d.audio[ext]:
			return TypeAudio, nil
		case d.image[ext]:
			return TypeImage, nil
		}
	}

	if t, ok := typeForMime(meta.MimeType); ok {
		return t, nil
	}

	if t, ok := Sniff(buf); ok {
		return t, nil
	}

	return "", ErrNoTypeDetected
}

// Detect classifies content using the default extension sets.
func Detect(buf []byte, meta Metadata) (Type, error) {
	return NewDetector(nil, nil, nil).Detect(buf, meta)
}

func typeForMime(mime string) (Type, bool) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "video/"):
		return TypeVideo, true
	case strings.HasPrefix(mime, "audio/"):
		return TypeAudio, true
	case strings.HasPrefix(mime, "image/"):
		return TypeImage, true
	}
	return "", false
}

// Sniff classifies content by its leading bytes against known magic
// numbers. It inspects at most the first 12 bytes.
func Sniff(buf []byte) (Type, bool) {
	if len(buf) < 4 {
		return "", false
	}
	head := buf
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}

	switch {
	// MP4 family: a size-prefixed "ftyp" box at offset 4.
	case len(head) >= 8 && bytes.Equal(head[4:8], []byte("ftyp")):
		return TypeVideo, true

	// WebM / Matroska: EBML header.
	case bytes.HasPrefix(head, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return TypeVideo, true

	// RIFF containers, disambiguated by the form type at bytes 8-12.
	case bytes.HasPrefix(head, []byte("RIFF")) && len(head) >= 12:
		switch string(head[8:12]) {
		case "AVI ":
			return TypeVideo, true
		case "WAVE":
			return TypeAudio, true
		case "WEBP":
			return TypeImage, true
		}
		return "", false

	// JPEG start-of-image marker.
	case bytes.HasPrefix(head, []byte{0xFF, 0xD8, 0xFF}):
		return TypeImage, true

	// PNG signature.
	case bytes.HasPrefix(head, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return TypeImage, true

	// GIF87a / GIF89a.
	case bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a")):
		return TypeImage, true

	// FLAC stream marker.
	case bytes.HasPrefix(head, []byte("fLaC")):
		return TypeAudio, true

	// OGG container.
	case bytes.HasPrefix(head, []byte("OggS")):
		return TypeAudio, true

	// MP3: ID3 tag or a raw MPEG audio frame sync (11 set bits).
	case bytes.HasPrefix(head, []byte("ID3")):
		return TypeAudio, true
	case head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return TypeAudio, true
	}

	return "", false
}
