package diag

import (
	"fmt"
	"strings"
)

const bytesPerLine = 16

// ColumnHeader labels the byte columns of HexDumpLines output.
const ColumnHeader = "          00 01 02 03 04 05 06 07  08 09 0A 0B 0C 0D 0E 0F"

// hex column width of a full line: 16 "XX " groups plus the extra gap after the eighth
const hexWidth = bytesPerLine*3 + 1

// HexDumpLines renders data 16 bytes per line as
// "OFFSET: XX XX XX XX XX XX XX XX  XX XX XX XX XX XX XX XX  ASCII".
// Non-printable bytes show as '.' in the ASCII column.
func HexDumpLines(data []byte) []string {
	lines := make([]string, 0, (len(data)+bytesPerLine-1)/bytesPerLine)

	for off := 0; off < len(data); off += bytesPerLine {
		end := off + bytesPerLine
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		var hexPart strings.Builder
		for i, b := range chunk {
			if i == 8 {
				hexPart.WriteByte(' ')
			}
			fmt.Fprintf(&hexPart, "%02X ", b)
		}

		lines = append(lines, fmt.Sprintf("%08X: %-*s %s", off, hexWidth, hexPart.String(), printable(chunk)))
	}

	return lines
}

// HexDump renders data as a single multi-line string
func HexDump(data []byte) string {
	return strings.Join(HexDumpLines(data), "\n")
}

func printable(data []byte) string {
	out := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}
