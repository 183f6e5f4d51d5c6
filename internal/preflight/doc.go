// Package preflight provides readiness checks for the files, directories,
// and external binaries a render depends on.
//
// These checks run in two contexts:
//   - The render command calls RunAll before decoding anything. If a check
//     fails the run stops before a single frame is encoded.
//   - The doctor command prints every check result as a table.
package preflight
