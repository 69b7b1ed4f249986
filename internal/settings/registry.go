package settings

import (
	"github.com/1broseidon/imgoverlay/internal/platform"
	"github.com/1broseidon/imgoverlay/internal/window"
)

// Registry keeps at most one live panel per target window.
type Registry struct {
	backend platform.Backend
	opts    Options
	panels  map[*window.Controller]*Panel
}

func NewRegistry(backend platform.Backend, opts Options) *Registry {
	return &Registry{
		backend: backend,
		opts:    opts.withDefaults(),
		panels:  make(map[*window.Controller]*Panel),
	}
}

// Open returns the panel for target, focusing it if it is already open and
// creating it beside target otherwise.
func (r *Registry) Open(target *window.Controller) (*Panel, error) {
	if p, ok := r.panels[target]; ok && !p.Closed() {
		p.ctrl.Focus()
		return p, nil
	}
	p, err := newPanel(r, target)
	if err != nil {
		return nil, err
	}
	r.panels[target] = p
	return p, nil
}

// Lookup returns the open panel for target.
func (r *Registry) Lookup(target *window.Controller) (*Panel, bool) {
	p, ok := r.panels[target]
	return p, ok
}

// Len returns the number of open panels.
func (r *Registry) Len() int {
	return len(r.panels)
}

// CloseAll closes every open panel.
func (r *Registry) CloseAll() {
	for _, p := range r.panels {
		p.Close()
	}
}

func (r *Registry) remove(p *Panel) {
	if cur, ok := r.panels[p.target]; ok && cur == p {
		delete(r.panels, p.target)
	}
}
