// Package deps resolves the external binaries (ffmpeg, ffprobe) a render
// needs and reports their availability and version banners.
package deps
