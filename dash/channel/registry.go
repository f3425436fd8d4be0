package channel

import (
	"fmt"
	"sort"
)

// Template describes a family of channels keyed by hardware index, e.g. one per CPU core.
type Template struct {
	Name string
	// KeyFormat contains a single %d verb for the index.
	KeyFormat string
	// LabelFormat contains a single %d verb for the index.
	LabelFormat string
	Unit        string
	Format      Format
	Precision   int
	Limits      Limits
	// Count names the HardwareCounts entry that sizes this family.
	Count string
}

// Expand instantiates n concrete descriptors.
func (t Template) Expand(n int) []*Descriptor {
	out := make([]*Descriptor, 0, n)
	for i := 0; i < n; i++ {
		key := fmt.Sprintf(t.KeyFormat, i)
		out = append(out, &Descriptor{
			ID:        ID(key),
			Key:       key,
			Label:     fmt.Sprintf(t.LabelFormat, i),
			Unit:      t.Unit,
			Format:    t.Format,
			Precision: t.Precision,
			Limits:    t.Limits,
		})
	}
	return out
}

// HardwareCounts sizes the indexed channel families.
type HardwareCounts map[string]int

// Override replaces parts of a descriptor; zero values keep the default.
type Override struct {
	Label   string
	Unit    string
	Min     *float64
	Max     *float64
	Caution *float64
	Warn    *float64
}

func (o Override) apply(d *Descriptor) {
	if o.Label != "" {
		d.Label = o.Label
	}
	if o.Unit != "" {
		d.Unit = o.Unit
	}
	if o.Min != nil {
		d.Limits.Min = *o.Min
	}
	if o.Max != nil {
		d.Limits.Max = *o.Max
	}
	if o.Caution != nil {
		d.Limits.Caution = At(*o.Caution)
	}
	if o.Warn != nil {
		d.Limits.Warn = At(*o.Warn)
	}
}

// Registry is the immutable set of channels for one dashboard configuration.
type Registry struct {
	byID    map[ID]*Descriptor
	indexed map[string][]*Descriptor
}

// NewRegistry expands templates against counts and applies overrides. An
// override key is either a channel key or a template name (applies to the
// whole family). Unknown keys are an error.
func NewRegistry(scalars []Descriptor, templates []Template, counts HardwareCounts, overrides map[string]Override) (*Registry, error) {
	r := &Registry{
		byID:    make(map[ID]*Descriptor, len(scalars)),
		indexed: make(map[string][]*Descriptor, len(templates)),
	}
	add := func(d *Descriptor) error {
		if d.Key == "" {
			return fmt.Errorf("channel with empty key")
		}
		if d.ID == "" {
			d.ID = ID(d.Key)
		}
		if _, dup := r.byID[d.ID]; dup {
			return fmt.Errorf("duplicate channel %q", d.ID)
		}
		r.byID[d.ID] = d
		return nil
	}

	for i := range scalars {
		d := scalars[i]
		if err := add(&d); err != nil {
			return nil, err
		}
	}
	for _, t := range templates {
		n := counts[t.Count]
		if n < 0 {
			return nil, fmt.Errorf("template %q: negative count %d", t.Name, n)
		}
		family := t.Expand(n)
		for _, d := range family {
			if err := add(d); err != nil {
				return nil, fmt.Errorf("template %q: %w", t.Name, err)
			}
		}
		r.indexed[t.Name] = family
	}

	for key, o := range overrides {
		if family, ok := r.indexed[key]; ok {
			for _, d := range family {
				o.apply(d)
			}
			continue
		}
		d, ok := r.byID[ID(key)]
		if !ok {
			return nil, fmt.Errorf("override for unknown channel %q", key)
		}
		o.apply(d)
	}
	return r, nil
}

// Lookup returns the descriptor for id.
func (r *Registry) Lookup(id ID) (*Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Indexed returns the expanded family for a template name.
func (r *Registry) Indexed(name string) ([]*Descriptor, bool) {
	ds, ok := r.indexed[name]
	return ds, ok
}

// IDs returns every channel ID in sorted order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len reports the number of channels.
func (r *Registry) Len() int { return len(r.byID) }
