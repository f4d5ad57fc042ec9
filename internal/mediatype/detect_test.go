package mediatype

import (
	"errors"
	"testing"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want Type
	}{
		{
			name: "MP4 ftyp box",
			buf:  []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'},
			want: TypeVideo,
		},
		{
			name: "WebM EBML header",
			buf:  []byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F, 0x42, 0x86, 0x81, 0x01, 0x42, 0xF7, 0x81},
			want: TypeVideo,
		},
		{
			name: "RIFF AVI",
			buf:  []byte("RIFF\x24\x00\x00\x00AVI "),
			want: TypeVideo,
		},
		{
			name: "RIFF WAVE",
			buf:  []byte("RIFF\x24\x00\x00\x00WAVE"),
			want: TypeAudio,
		},
		{
			name: "RIFF WEBP",
			buf:  []byte("RIFF\x24\x00\x00\x00WEBP"),
			want: TypeImage,
		},
		{
			name: "JPEG SOI",
			buf:  []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01},
			want: TypeImage,
		},
		{
			name: "PNG signature",
			buf:  []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D},
			want: TypeImage,
		},
		{
			name: "GIF87a",
			buf:  []byte("GIF87a\x01\x00\x01\x00\x00\x00"),
			want: TypeImage,
		},
		{
			name: "GIF89a",
			buf:  []byte("GIF89a\x01\x00\x01\x00\x00\x00"),
			want: TypeImage,
		},
		{
			name: "MP3 frame sync",
			buf:  []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: TypeAudio,
		},
		{
			name: "MP3 ID3 tag",
			buf:  []byte("ID3\x03\x00\x00\x00\x00\x00\x00\x00\x00"),
			want: TypeAudio,
		},
		{
			name: "FLAC",
			buf:  []byte("fLaC\x00\x00\x00\x22\x10\x00\x10\x00"),
			want: TypeAudio,
		},
		{
			name: "OGG",
			buf:  []byte("OggS\x00\x02\x00\x00\x00\x00\x00\x00"),
			want: TypeAudio,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Sniff(tt.buf)
			if !ok {
				t.Fatalf("Sniff() matched nothing, want %v", tt.want)
			}
			if got != tt.want {
				t.Errorf("Sniff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSniffUnrecognized(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{name: "zero bytes", buf: make([]byte, 12)},
		{name: "text", buf: []byte("hello, world")},
		{name: "too short", buf: []byte{0xFF}},
		{name: "empty", buf: nil},
		{name: "RIFF with unknown form", buf: []byte("RIFF\x24\x00\x00\x00ACON")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := Sniff(tt.buf); ok {
				t.Errorf("Sniff() = %v, want no match", got)
			}
		})
	}
}

func TestDetectResolutionOrder(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	tests := []struct {
		name    string
		buf     []byte
		meta    Metadata
		want    Type
		wantErr bool
	}{
		{
			name: "explicit hint wins over everything",
			buf:  jpeg,
			meta: Metadata{Type: "video", Filename: "x.mp3", MimeType: "image/png"},
			want: TypeVideo,
		},
		{
			name: "hint is normalized",
			buf:  nil,
			meta: Metadata{Type: " Audio "},
			want: TypeAudio,
		},
		{
			name: "invalid hint falls through to extension",
			buf:  nil,
			meta: Metadata{Type: "document", Filename: "clip.mp4"},
			want: TypeVideo,
		},
		{
			name: "extension wins over mime",
			buf:  nil,
			meta: Metadata{Filename: "song.flac", MimeType: "video/mp4"},
			want: TypeAudio,
		},
		{
			name: "mime prefix",
			buf:  nil,
			meta: Metadata{MimeType: "image/webp"},
			want: TypeImage,
		},
		{
			name: "unknown extension falls through to sniffing",
			buf:  jpeg,
			meta: Metadata{Filename: "upload.bin"},
			want: TypeImage,
		},
		{
			name: "signature only",
			buf:  jpeg,
			meta: Metadata{},
			want: TypeImage,
		},
		{
			name:    "nothing matches",
			buf:     []byte("not a media file"),
			meta:    Metadata{Filename: "notes.txt", MimeType: "text/plain"},
			wantErr: true,
		},
		{
			name:    "empty input",
			buf:     nil,
			meta:    Metadata{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.buf, tt.meta)
			if tt.wantErr {
				if !errors.Is(err, ErrNoTypeDetected) {
					t.Fatalf("Detect() error = %v, want ErrNoTypeDetected", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTypeForExtension(t *testing.T) {
	tests := []struct {
		ext    string
		want   Type
		wantOK bool
	}{
		{ext: ".jpg", want: TypeImage, wantOK: true},
		{ext: ".webm", want: TypeVideo, wantOK: true},
		{ext: ".flac", want: TypeAudio, wantOK: true},
		{ext: ".xyz", wantOK: false},
		{ext: "", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := TypeForExtension(tt.ext)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("TypeForExtension(%q) = %v, %v; want %v, %v", tt.ext, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDetectorCustomExtensions(t *testing.T) {
	d := NewDetector(nil, map[string]bool{".sound": true}, nil)

	got, err := d.Detect(nil, Metadata{Filename: "take1.sound"})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if got != TypeAudio {
		t.Errorf("Detect() = %v, want %v", got, TypeAudio)
	}

	// A replaced set drops the defaults for that category.
	if _, err := d.Detect(nil, Metadata{Filename: "song.mp3"}); err == nil {
		t.Error("Detect() matched .mp3 with a replaced audio set")
	}
}

func TestGetMimeType(t *testing.T) {
	if got := GetMimeType(".mp3"); got != "audio/mpeg" {
		t.Errorf("GetMimeType(.mp3) = %q", got)
	}
	if got := GetMimeType(".nope"); got != "application/octet-stream" {
		t.Errorf("GetMimeType(.nope) = %q", got)
	}
}
