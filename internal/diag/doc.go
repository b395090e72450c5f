// Package diag carries decode diagnostics from the decoder to wherever the
// caller wants them.
//
// The decoder never prints. It reports to a Sink:
//
//   - HexDump: the input buffer, once per traced decode
//   - Field: one event per decoded field, for traced decodes
//   - Warn: enum values outside their table and accessors cut off by the end
//     of the buffer, for every decode that has a sink
//
// Diagnostics are advisory. Nothing a Sink does can change a decode result.
//
// # Sinks
//
//   - Nop discards everything
//   - NewTextSink writes the plain-text trace format to an io.Writer
//   - NewLogSink routes events into a zap logger
//   - Recorder keeps events in memory, for tests and the inspect browser
//   - Tee fans events out to several sinks
//
// # Text format
//
//	Data length: 20 bytes
//	          00 01 02 03 04 05 06 07  08 09 0A 0B 0C 0D 0E 0F
//	00000000: 13 02 49 04 00 00 06 00  00 00 06 00 03 01 0C 0B  ..I.............
//	00000010: 00 00 00 00                                       ....
//	0000->0000: ConfigNumber = 19
//	WARNING: enum accessor TimeFormat out-of-range for [NA AmPm 24h]: value is 6 (raw byte: 6), position is 34
//
// TextSink and Recorder are safe for concurrent use.
package diag
