package core

// Converter turns a raw string value from an external config source into its
// typed representation.
type Converter func(raw string) (any, error)

// Conf is a declared configuration key owned by a plugin, carrying a default
// value and an optional converter. The config registry does not enforce key
// uniqueness; duplicate registrations shadow earlier ones at read time.
type Conf struct {
	// Plugin is the declared name of the owning plugin.
	Plugin string
	// Key is the configuration key name.
	Key string
	// Default is returned when no raw value is available.
	Default any
	// Converter is applied to raw string input; nil means the raw string is
	// used unchanged.
	Converter Converter
}

// Value resolves a raw string through the converter, or returns it unchanged
// when no converter is set.
func (c *Conf) Value(raw string) (any, error) {
	if c.Converter == nil {
		return raw, nil
	}
	return c.Converter(raw)
}

// Resolve returns the typed value for raw, falling back to the declared
// default when raw is absent.
func (c *Conf) Resolve(raw string, present bool) (any, error) {
	if !present {
		return c.Default, nil
	}
	return c.Value(raw)
}
