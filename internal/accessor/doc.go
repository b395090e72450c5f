// Package accessor describes how individual named values are extracted from
// a controller frame.
//
// An Accessor is a tagged variant: every accessor carries a path, a logical
// byte position and an access tag, and its Kind selects one of six decode
// rules:
//
//   - bool: one bit of the byte at the position
//   - byte: the byte itself
//   - word: big-endian 16-bit value over position and position+1
//   - enum: the byte, optionally shifted and masked, used as an index into a value table
//   - temperature: a word in units of 1/18 °C, rendered as "<value> °C"
//   - time: an hour byte and a minute byte, rendered as "HH:MM"
//
// Decoding never fails for bad data. A two-byte accessor on the last byte of
// a buffer reports ErrTruncated so the caller can skip the field, and an enum
// index outside its table returns Unknown together with a *RangeError the
// caller can log.
//
// Accessors are immutable values and safe for concurrent use.
package accessor
