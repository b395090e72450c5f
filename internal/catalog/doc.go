// Package catalog loads controller field catalogs and keeps the registry of
// built-in structure revisions.
//
// A catalog is versioned data describing one structure revision: its
// accessors (path, position, kind and kind parameters) and the offset
// correction table that lines a captured frame up with the positions. The
// decoder never sees catalogs; Build turns one into a schema.Schema and an
// offset.Table.
//
// # Catalog Files
//
// Catalogs are YAML or TOML with the same shape:
//
//	revision: inyt-cfg-65
//	structure: config
//	corrections:
//	  - {threshold: 64, delta: -3}
//	fields:
//	  - {path: SetpointG, kind: temperature, position: 1, access: rw}
//	  - {path: UdP2, kind: enum, position: 259, bit_shift: 2, mask_width: 4, values: ["OFF", LO, HI]}
//	  - {path: CP, kind: bool, position: 260, bit: 2}
//
// Kinds are bool, byte, word, enum, temperature and time. bool requires bit,
// enum requires values; bit_shift and mask_width are optional. A missing or
// malformed parameter, an unknown kind, a duplicate path or an unordered
// correction table fails Build with a *schema.Error.
//
// # Registry
//
// The built-in revisions are a closed set of Revision constants, each bound
// to an embedded catalog. Lookup builds a revision once and returns the same
// immutable Definition on every later call:
//
//	def, err := catalog.Lookup(catalog.InYTConfig65)
//	if err != nil {
//	    return err
//	}
//	values := decoder.Decode(buf, def.Schema, def.Corrections)
//
// Catalogs outside the registry load with LoadFile.
package catalog
