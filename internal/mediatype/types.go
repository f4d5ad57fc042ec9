package mediatype

// Type represents the media category of a piece of content.
type Type string

const (
	// TypeVideo represents video content.
	TypeVideo Type = "video"
	// TypeAudio represents audio content.
	TypeAudio Type = "audio"
	// TypeImage represents image content.
	TypeImage Type = "image"
)

// Valid reports whether t is one of the three supported categories.
func (t Type) Valid() bool {
	switch t {
	case TypeVideo, TypeAudio, TypeImage:
		return true
	}
	return false
}

// All returns the supported media categories.
func All() []Type {
	return []Type{TypeVideo, TypeAudio, TypeImage}
}

// VideoExtensions maps file extensions to whether they are recognized video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// AudioExtensions maps file extensions to whether they are recognized audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".m4a":  true,
	".aac":  true,
	".wma":  true,
	".opus": true,
}

// ImageExtensions maps file extensions to whether they are recognized image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".svg":  true,
	".ico":  true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",

	// Audio
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wma":  "audio/x-ms-wma",
	".opus": "audio/opus",

	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
}

// TypeForExtension returns the media category for a file extension.
// The extension should be lowercase and include the leading dot
// (e.g., ".jpg"). The second return value is false if the extension
// is not recognized.
func TypeForExtension(ext string) (Type, bool) {
	if VideoExtensions[ext] {
		return TypeVideo, true
	}
	if AudioExtensions[ext] {
		return TypeAudio, true
	}
	if ImageExtensions[ext] {
		return TypeImage, true
	}
	return "", false
}

// GetMimeType returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
