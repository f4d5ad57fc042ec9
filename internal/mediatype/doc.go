// Package mediatype classifies raw content into the video, audio, and
// image categories.
//
// Detection resolves through explicit hints, filename extensions, MIME
// type prefixes, and finally binary signature sniffing over the first 12
// bytes. Absence of a match is a hard failure (ErrNoTypeDetected), never
// a default category.
package mediatype
