package config

import "time"

// Registry represents the entire user configuration file.
// It stores decode defaults and per-controller metadata.
type Registry struct {
	Version     int                    `yaml:"version"`
	Defaults    *Defaults              `yaml:"defaults,omitempty"`
	Controllers map[string]*Controller `yaml:"controllers,omitempty"` // Keyed by controller id

	path string // File the registry was loaded from; empty means the default location
}

// Defaults are applied to every decode unless a flag overrides them.
type Defaults struct {
	Revision   string `yaml:"revision,omitempty"`    // Built-in revision used when none is given
	Format     string `yaml:"format,omitempty"`      // Output format (detailed, compact, json, yaml, cbor)
	Trace      bool   `yaml:"trace,omitempty"`       // Print hex dump and per-field trace
	LogLevel   string `yaml:"log_level,omitempty"`   // Used when --log-level and GECKO_LOG_LEVEL are unset
	CatalogDir string `yaml:"catalog_dir,omitempty"` // Directory searched for catalog files named <revision>.yaml/.toml
	SkipHeader int    `yaml:"skip_header,omitempty"` // Bytes dropped from the front of every frame
}

// Controller represents user-defined metadata for a single spa controller.
type Controller struct {
	Nickname     string    `yaml:"nickname,omitempty"`      // User-friendly name
	Revision     string    `yaml:"revision,omitempty"`      // Pinned structure revision
	Catalog      string    `yaml:"catalog,omitempty"`       // Catalog file overriding Revision
	LastDecoded  time.Time `yaml:"last_decoded,omitempty"`  // Last successful decode
	LastConsumed int       `yaml:"last_consumed,omitempty"` // Bytes consumed by that decode
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Defaults:    newDefaults(),
		Controllers: make(map[string]*Controller),
	}
}

func newDefaults() *Defaults {
	return &Defaults{
		Format: "detailed",
	}
}

// Path returns the file the registry is saved to, or "" for the default location.
func (r *Registry) Path() string {
	return r.path
}

// GetController retrieves controller metadata by id.
// Returns nil if the controller doesn't exist in the registry.
func (r *Registry) GetController(id string) *Controller {
	return r.Controllers[id]
}

// EnsureController ensures a controller entry exists in the registry.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureController(id string) *Controller {
	if r.Controllers == nil {
		r.Controllers = make(map[string]*Controller)
	}

	if c, exists := r.Controllers[id]; exists {
		return c
	}

	c := &Controller{}
	r.Controllers[id] = c
	return c
}

// SetControllerRevision pins a structure revision to a controller.
func (r *Registry) SetControllerRevision(id, revision string) {
	r.EnsureController(id).Revision = revision
}

// SetControllerCatalog points a controller at a catalog file.
func (r *Registry) SetControllerCatalog(id, path string) {
	r.EnsureController(id).Catalog = path
}

// SetControllerNickname sets a user-friendly nickname for a controller.
func (r *Registry) SetControllerNickname(id, nickname string) {
	r.EnsureController(id).Nickname = nickname
}

// MarkDecoded records a successful decode for a controller.
func (r *Registry) MarkDecoded(id string, consumed int) {
	c := r.EnsureController(id)
	c.LastDecoded = time.Now()
	c.LastConsumed = consumed
}

// ResolveRevision picks the revision for a decode: the controller's pin
// first, then the configured default. Returns "" when neither is set.
func (r *Registry) ResolveRevision(controllerID string) string {
	if c := r.GetController(controllerID); controllerID != "" && c != nil && c.Revision != "" {
		return c.Revision
	}
	if r.Defaults != nil {
		return r.Defaults.Revision
	}
	return ""
}
