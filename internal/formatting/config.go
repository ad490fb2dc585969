package formatting

import (
	"storesync/internal/config"
)

// Config renders a pulled store configuration, YAML unless JSON is
// requested. The table format has no sensible shape for a full nested
// configuration, so it falls back to YAML as well.
func (p *Printer) Config(cfg *config.StoreConfig) error {
	if p.opts.Format == FormatJSON {
		return p.printJSON(cfg)
	}
	return p.printYAML(cfg)
}
