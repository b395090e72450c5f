//go:build ignore

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dccourt/esphome-gecko/internal/catalog"
	"github.com/dccourt/esphome-gecko/internal/decoder"
	"github.com/dccourt/esphome-gecko/internal/diag"
	"github.com/dccourt/esphome-gecko/internal/frame"
)

// RevisionStats tracks how one revision fares across the captures
type RevisionStats struct {
	Clean    int
	Warnings int
	Skipped  int
	Consumed map[int]int
}

// Finding records a capture that decoded with warnings or skipped fields
type Finding struct {
	File     string
	Revision catalog.Revision
	Detail   string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: validate_catalogs <directory-or-file> [header-bytes]")
		fmt.Println("Example: validate_catalogs captures/")
		fmt.Println("         validate_catalogs inyt-65-dump.hex 2")
		os.Exit(1)
	}

	path := os.Args[1]
	header := 0
	if len(os.Args) > 2 {
		if _, err := fmt.Sscanf(os.Args[2], "%d", &header); err != nil {
			fmt.Printf("Invalid header length %q: %v\n", os.Args[2], err)
			os.Exit(1)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Error accessing path: %v\n", err)
		os.Exit(1)
	}

	var files []string
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.hex"))
		if err != nil {
			fmt.Printf("Error finding hex files: %v\n", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Printf("No hex files found in %s\n", path)
			os.Exit(1)
		}
	} else {
		files = []string{path}
	}

	fmt.Printf("=== Gecko Catalog Validator ===\n")
	fmt.Printf("Files to process: %d\n\n", len(files))

	stats := make(map[catalog.Revision]*RevisionStats)
	var findings []Finding
	unreadable := 0

	for _, file := range files {
		buf, err := readCapture(file, header)
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", file, err)
			unreadable++
			continue
		}
		for _, rev := range catalog.Revisions() {
			findings = append(findings, checkRevision(file, rev, buf, stats)...)
		}
	}

	printStatistics(len(files), unreadable, stats, findings)
}

func readCapture(file string, header int) ([]byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := frame.ReadHex(f)
	if err != nil {
		return nil, err
	}
	return frame.SkipHeader(buf, header)
}

func checkRevision(file string, rev catalog.Revision, buf []byte, stats map[catalog.Revision]*RevisionStats) []Finding {
	def, err := catalog.Lookup(rev)
	if err != nil {
		fmt.Printf("Error loading %s: %v\n", rev, err)
		os.Exit(1)
	}

	st, ok := stats[rev]
	if !ok {
		st = &RevisionStats{Consumed: make(map[int]int)}
		stats[rev] = st
	}

	rec := &diag.Recorder{}
	res := decoder.DecodeResult(buf, def.Schema, def.Corrections, decoder.WithSink(rec))
	st.Consumed[res.Consumed]++

	var findings []Finding
	for _, w := range rec.Warnings() {
		findings = append(findings, Finding{File: file, Revision: rev, Detail: w.String()})
	}
	for _, f := range res.Skipped {
		findings = append(findings, Finding{
			File:     file,
			Revision: rev,
			Detail:   fmt.Sprintf("%s (%s) skipped at %s->%s", f.Accessor.Path(), f.Accessor.Kind(), diag.FormatIndex(f.RawIndex), diag.FormatIndex(f.Position)),
		})
	}

	switch {
	case len(res.Skipped) > 0:
		st.Skipped++
	case len(rec.Warnings()) > 0:
		st.Warnings++
	default:
		st.Clean++
	}
	return findings
}

func printStatistics(files, unreadable int, stats map[catalog.Revision]*RevisionStats, findings []Finding) {
	fmt.Printf("\n========================================\n")
	fmt.Printf("VALIDATION RESULTS\n")
	fmt.Printf("========================================\n\n")

	fmt.Printf("Files Processed:    %d\n", files)
	fmt.Printf("Unreadable:         %d\n", unreadable)

	for _, rev := range catalog.Revisions() {
		st, ok := stats[rev]
		if !ok {
			continue
		}
		total := st.Clean + st.Warnings + st.Skipped

		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("%s\n", rev)
		fmt.Printf("----------------------------------------\n")
		fmt.Printf("Clean:     %d (%.2f%%)\n", st.Clean, float64(st.Clean)/float64(total)*100)
		fmt.Printf("Warnings:  %d\n", st.Warnings)
		fmt.Printf("Skipped:   %d\n", st.Skipped)

		lengths := make([]int, 0, len(st.Consumed))
		for n := range st.Consumed {
			lengths = append(lengths, n)
		}
		sort.Ints(lengths)
		for _, n := range lengths {
			fmt.Printf("  consumed %d bytes: %d files\n", n, st.Consumed[n])
		}
	}

	if len(findings) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("FINDINGS (%d total)\n", len(findings))
		fmt.Printf("----------------------------------------\n")

		maxShow := 20
		if len(findings) > maxShow {
			fmt.Printf("(Showing first %d of %d findings)\n\n", maxShow, len(findings))
		}
		for i, f := range findings {
			if i >= maxShow {
				break
			}
			fmt.Printf("  %s [%s]: %s\n", filepath.Base(f.File), f.Revision, f.Detail)
		}
	}

	fmt.Printf("\n========================================\n")
	if len(findings) == 0 && unreadable == 0 {
		fmt.Printf("✅ SUCCESS: Every capture decoded cleanly against every revision\n")
	} else {
		fmt.Printf("⚠️  ISSUES FOUND: %d findings, %d unreadable files\n", len(findings), unreadable)
	}
	fmt.Printf("========================================\n")
}
