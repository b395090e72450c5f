package catalog

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"sync"
)

//go:embed catalogs/*.yaml
var builtin embed.FS

// Revision identifies a built-in structure revision.
type Revision string

// Built-in revisions
const (
	InYTConfig65  Revision = "inyt-cfg-65"
	InYTLog65     Revision = "inyt-log-65"
	InYTStatusV50 Revision = "inyt-status-v50"
	InYTStatusV51 Revision = "inyt-status-v51"
)

// ErrUnknownRevision is returned for a revision outside the registry
var ErrUnknownRevision = errors.New("unknown revision")

var builders = map[Revision]func() (*Definition, error){
	InYTConfig65:  embedded("inyt-cfg-65.yaml"),
	InYTLog65:     embedded("inyt-log-65.yaml"),
	InYTStatusV50: embedded("inyt-status-v50.yaml"),
	InYTStatusV51: embedded("inyt-status-v51.yaml"),
}

var (
	cacheMu sync.Mutex
	cache   = make(map[Revision]*Definition)
)

func embedded(name string) func() (*Definition, error) {
	return func() (*Definition, error) {
		data, err := builtin.ReadFile("catalogs/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read built-in catalog %s: %w", name, err)
		}
		c, err := Parse(data, FormatYAML)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return c.Build()
	}
}

// Revisions lists the built-in revisions in name order
func Revisions() []Revision {
	revs := make([]Revision, 0, len(builders))
	for r := range builders {
		revs = append(revs, r)
	}
	sort.Slice(revs, func(i, j int) bool { return revs[i] < revs[j] })
	return revs
}

// ParseRevision checks that s names a built-in revision
func ParseRevision(s string) (Revision, error) {
	r := Revision(s)
	if _, ok := builders[r]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownRevision, s)
	}
	return r, nil
}

// Lookup returns the definition for a built-in revision. Definitions are
// built on first use and shared afterwards; they are immutable.
func Lookup(rev Revision) (*Definition, error) {
	build, ok := builders[rev]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownRevision, string(rev))
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if def, ok := cache[rev]; ok {
		return def, nil
	}
	def, err := build()
	if err != nil {
		return nil, err
	}
	cache[rev] = def
	return def, nil
}
