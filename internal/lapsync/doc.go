// Package lapsync pairs every primary-lap frame with its equivalent moment in
// the secondary lap by unwrapped lap distance.
//
// Build produces a Mapping once per run in a single forward pass. The Mapping
// is read-only afterwards and is the only place downstream code looks up
// secondary frames and times; nothing re-derives the pairing per frame.
package lapsync
