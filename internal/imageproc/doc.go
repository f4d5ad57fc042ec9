// Package imageproc provides the built-in image processor. It reads
// dimensions and format from the image header, computes lightweight
// pixel statistics for images within a configurable size bound, and
// delegates object detection, OCR, and description to registered
// capability providers.
package imageproc
