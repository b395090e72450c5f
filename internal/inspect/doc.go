// Package inspect is an interactive terminal browser over one decoded frame.
//
// The browser lists every decoded field in position order with its logical
// position and raw index. Fields can be filtered by path, kind or value, and
// two panes open below the list: the selected field's details, including any
// out-of-range warning, and a scrollable hex dump of the frame.
//
// The Model follows the Bubble Tea architecture and can be driven directly
// in tests by sending it messages; Run wraps it in a program on the
// alternate screen.
package inspect
