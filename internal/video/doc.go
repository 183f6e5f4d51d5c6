// Package video decodes lap recordings into raw RGBA frames. Each source is
// an ffmpeg subprocess writing fixed-size frames to a pipe, read strictly
// forward by the render loop.
package video
