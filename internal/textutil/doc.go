// Package textutil provides small text helpers shared by the CLI and the
// subprocess wrappers: filename sanitising and bounded line tails for
// captured stderr.
package textutil
