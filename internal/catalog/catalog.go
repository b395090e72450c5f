package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dccourt/esphome-gecko/internal/accessor"
	"github.com/dccourt/esphome-gecko/internal/offset"
	"github.com/dccourt/esphome-gecko/internal/schema"
)

// Format selects the catalog file syntax
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// String returns the format name
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// FormatForPath picks a format from a file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("unsupported catalog extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// Catalog is the on-disk description of one structure revision.
type Catalog struct {
	Revision    string       `yaml:"revision" toml:"revision"`
	Structure   string       `yaml:"structure" toml:"structure"` // config, log, ...
	Description string       `yaml:"description,omitempty" toml:"description"`
	Corrections offset.Table `yaml:"corrections,omitempty" toml:"corrections"`
	Fields      []FieldDef   `yaml:"fields" toml:"fields"`
}

// FieldDef is one accessor entry. Pointer fields distinguish "absent" from zero.
type FieldDef struct {
	Path      string   `yaml:"path" toml:"path"`
	Kind      string   `yaml:"kind" toml:"kind"`
	Position  *int     `yaml:"position" toml:"position"`
	Access    string   `yaml:"access,omitempty" toml:"access"`
	Bit       *int     `yaml:"bit,omitempty" toml:"bit"`
	BitShift  *int     `yaml:"bit_shift,omitempty" toml:"bit_shift"`
	MaskWidth *int     `yaml:"mask_width,omitempty" toml:"mask_width"`
	Values    []string `yaml:"values,omitempty" toml:"values"`
}

// Definition is a built catalog: a ready schema and its correction table.
type Definition struct {
	Revision    string
	Structure   string
	Description string
	Schema      *schema.Schema
	Corrections offset.Table
}

// Parse decodes catalog data in the given format
func Parse(data []byte, format Format) (*Catalog, error) {
	var c Catalog
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse YAML catalog: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &c); err != nil {
			return nil, fmt.Errorf("failed to parse TOML catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %v", format)
	}
	return &c, nil
}

// LoadFile reads, parses and builds a catalog file. The format follows the
// file extension.
func LoadFile(path string) (*Definition, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c.Build()
}

// Build validates the catalog and constructs its schema. Any failure is a
// *schema.Error.
func (c *Catalog) Build() (*Definition, error) {
	if c.Revision == "" {
		return nil, schema.NewError(schema.ErrTypeMissingParameter, "", "revision", errors.New("catalog has no revision"))
	}

	accessors := make([]accessor.Accessor, 0, len(c.Fields))
	for i, f := range c.Fields {
		a, err := f.accessor()
		if err != nil {
			var schemaErr *schema.Error
			if errors.As(err, &schemaErr) {
				schemaErr.Schema = c.Revision
				if schemaErr.Path == "" {
					schemaErr.Path = fmt.Sprintf("fields[%d]", i)
				}
			}
			return nil, err
		}
		accessors = append(accessors, a)
	}

	if err := c.Corrections.Validate(); err != nil {
		return nil, schema.NewError(schema.ErrTypeInvalidParameter, c.Revision, "corrections", err)
	}

	s, err := schema.New(c.Revision, accessors)
	if err != nil {
		return nil, err
	}

	return &Definition{
		Revision:    c.Revision,
		Structure:   c.Structure,
		Description: c.Description,
		Schema:      s,
		Corrections: append(offset.Table(nil), c.Corrections...),
	}, nil
}

func (f FieldDef) accessor() (accessor.Accessor, error) {
	missing := func(param string) error {
		return schema.NewError(schema.ErrTypeMissingParameter, "", f.Path, fmt.Errorf("%s requires %s", f.Kind, param))
	}
	invalid := func(err error) error {
		return schema.NewError(schema.ErrTypeInvalidParameter, "", f.Path, err)
	}

	if f.Path == "" {
		return accessor.Accessor{}, schema.NewError(schema.ErrTypeMissingParameter, "", "", errors.New("field has no path"))
	}
	kind, err := accessor.ParseKind(f.Kind)
	if err != nil {
		return accessor.Accessor{}, schema.NewError(schema.ErrTypeUnknownKind, "", f.Path, err)
	}
	if f.Position == nil {
		return accessor.Accessor{}, missing("position")
	}
	access, err := accessor.ParseAccess(f.Access)
	if err != nil {
		return accessor.Accessor{}, invalid(err)
	}
	pos := *f.Position

	switch kind {
	case accessor.KindBool:
		if f.Bit == nil {
			return accessor.Accessor{}, missing("bit")
		}
		if *f.Bit < 0 || *f.Bit > 7 {
			return accessor.Accessor{}, invalid(fmt.Errorf("bit %d out of range 0-7", *f.Bit))
		}
		return accessor.Bool(f.Path, pos, uint8(*f.Bit), access), nil
	case accessor.KindEnum:
		if len(f.Values) == 0 {
			return accessor.Accessor{}, missing("values")
		}
		var shift, width int
		if f.BitShift != nil {
			shift = *f.BitShift
		}
		if f.MaskWidth != nil {
			width = *f.MaskWidth
		}
		if shift < 0 || shift > 7 {
			return accessor.Accessor{}, invalid(fmt.Errorf("bit_shift %d out of range 0-7", shift))
		}
		return accessor.Enum(f.Path, pos, uint8(shift), width, f.Values, access), nil
	case accessor.KindByte:
		return accessor.Byte(f.Path, pos, access), nil
	case accessor.KindWord:
		return accessor.Word(f.Path, pos, access), nil
	case accessor.KindTemperature:
		return accessor.Temperature(f.Path, pos, access), nil
	case accessor.KindTime:
		return accessor.Time(f.Path, pos, access), nil
	default:
		return accessor.Accessor{}, schema.NewError(schema.ErrTypeUnknownKind, "", f.Path, fmt.Errorf("kind %v", kind))
	}
}
