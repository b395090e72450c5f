// Package output renders decode results for people and for other programs.
//
// Five formats are supported:
//
//   - detailed: a header (revision, source, length, bytes consumed) and one
//     row per field in position order, followed by warnings and skipped
//     fields. Styled with lipgloss when writing to a terminal, plain text
//     otherwise.
//   - compact: one path=value line per field, for grep and shell scripts.
//   - json, yaml: the decoded mapping plus decode metadata.
//   - cbor: the same document, canonically encoded, for publishing to
//     telemetry pipelines.
//
// Only the final decode of each path is shown. A path decoded twice because
// two raw indexes mapped onto its position reports the later raw index.
package output
