// Package profile defines the buyer profile collected by Sam and the
// bilingual field knowledge shared by extraction and rendering.
package profile

import (
	"encoding/json"
	"strings"
)

// VehicleProfile is a sparse record of buyer requirements. A field is either
// a non-empty trimmed string or absent; placeholders are never stored.
type VehicleProfile struct {
	values map[Field]string
}

// New returns an empty profile.
func New() VehicleProfile {
	return VehicleProfile{values: make(map[Field]string)}
}

// Get returns the value of f, or "" when absent.
func (p VehicleProfile) Get(f Field) string {
	return p.values[f]
}

// Has reports whether f is set.
func (p VehicleProfile) Has(f Field) bool {
	_, ok := p.values[f]
	return ok
}

// Set stores v under f after trimming. Placeholder values and pseudo fields
// are refused; the return value reports whether anything was stored.
func (p *VehicleProfile) Set(f Field, v string) bool {
	v = strings.TrimSpace(v)
	if !f.Storable() || IsPlaceholder(v) {
		return false
	}
	if p.values == nil {
		p.values = make(map[Field]string)
	}
	p.values[f] = v
	return true
}

// Fill stores v only when f is absent.
func (p *VehicleProfile) Fill(f Field, v string) bool {
	if p.Has(f) {
		return false
	}
	return p.Set(f, v)
}

// Delete removes f.
func (p *VehicleProfile) Delete(f Field) {
	delete(p.values, f)
}

// Merge copies every field of other that p does not already hold and returns
// the fields it filled.
func (p *VehicleProfile) Merge(other VehicleProfile) []Field {
	var filled []Field
	for _, f := range storable {
		if v, ok := other.values[f]; ok && p.Fill(f, v) {
			filled = append(filled, f)
		}
	}
	return filled
}

// Fields returns the set fields in display order.
func (p VehicleProfile) Fields() []Field {
	var out []Field
	for _, f := range storable {
		if p.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of set fields.
func (p VehicleProfile) Len() int {
	return len(p.values)
}

// Clone returns an independent copy.
func (p VehicleProfile) Clone() VehicleProfile {
	out := New()
	for f, v := range p.values {
		out.values[f] = v
	}
	return out
}

// HasExtended reports whether any extended-flow field is set.
func (p VehicleProfile) HasExtended() bool {
	for f := range p.values {
		if f.IsExtended() {
			return true
		}
	}
	return false
}

// ContactLine renders email and phone in the canonical "email, phone" form.
func (p VehicleProfile) ContactLine() string {
	var parts []string
	for _, f := range []Field{Email, Phone} {
		if v := p.Get(f); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// Map returns the profile as a plain map keyed by field name.
func (p VehicleProfile) Map() map[string]string {
	out := make(map[string]string, len(p.values))
	for f, v := range p.values {
		out[string(f)] = v
	}
	return out
}

func (p VehicleProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Map())
}

func (p *VehicleProfile) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = New()
	for k, v := range raw {
		p.Set(Field(k), v)
	}
	return nil
}
