// Command lapsync renders two laps of the same track side by side, aligned
// by lap distance, with telemetry HUD overlays.
//
// Subcommands:
//
//	render    compose and encode a comparison video
//	encoders  show which ffmpeg encoders will be tried and in what order
//	doctor    check directories and external tools
//	config    create, show, or validate the configuration file
//	history   list previous renders
package main
