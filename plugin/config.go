package plugin

import "github.com/hupe1980/pluginmesh/core"

// RegisterConfig declares a configuration key with a default value and an
// optional converter (nil means raw string values are used unchanged). Keys
// are deliberately not unique within a plugin; a duplicate registration
// shadows earlier ones at read time and is reported as a warning rather than
// an error.
func (b *Base) RegisterConfig(key string, def any, converter core.Converter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.confs {
		if c.Key == key {
			b.logger.Warn("duplicate config key registration",
				"plugin", b.identity.Name, "key", key)
			break
		}
	}
	b.confs = append(b.confs, &core.Conf{
		Plugin:    b.identity.Name,
		Key:       key,
		Default:   def,
		Converter: converter,
	})
}

// Conf returns the registered entry for key, or nil when the key was never
// declared. The most recent registration wins.
func (b *Base) Conf(key string) *core.Conf {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.confs) - 1; i >= 0; i-- {
		if b.confs[i].Key == key {
			return b.confs[i]
		}
	}
	return nil
}

// Confs returns a snapshot of the declared configuration entries.
func (b *Base) Confs() []*core.Conf {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*core.Conf, len(b.confs))
	copy(out, b.confs)
	return out
}
