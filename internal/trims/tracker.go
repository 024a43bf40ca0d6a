// Package trims records buyer requests for make/model combinations that have
// no trim data yet, so the catalogue can be filled in by demand.
package trims

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"
)

// DefaultTop is the number of entries Top returns for a non-positive n.
const DefaultTop = 10

// Request is the aggregated demand for one make and model.
type Request struct {
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	RequestedBy string    `json:"requestedBy,omitempty"`
	Count       int       `json:"count"`
	FirstSeen   time.Time `json:"firstSeen"`
	LastSeen    time.Time `json:"lastSeen"`
}

// Tracker is an in-memory, process-lifetime request counter. Keys are
// case-insensitive; the spelling of the first request is kept for display.
type Tracker struct {
	mu       sync.Mutex
	requests map[vehicleKey]*Request
	order    []vehicleKey
	now      func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		requests: make(map[vehicleKey]*Request),
		now:      time.Now,
	}
}

type vehicleKey struct {
	brand, model string
}

func key(brand, model string) vehicleKey {
	return vehicleKey{
		brand: strings.ToLower(strings.TrimSpace(brand)),
		model: strings.ToLower(strings.TrimSpace(model)),
	}
}

// Request records one request and returns the updated entry.
func (t *Tracker) Request(brand, model, requestedBy string) Request {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	k := key(brand, model)
	r, ok := t.requests[k]
	if !ok {
		r = &Request{
			Make:        strings.TrimSpace(brand),
			Model:       strings.TrimSpace(model),
			RequestedBy: requestedBy,
			FirstSeen:   now,
		}
		t.requests[k] = r
		t.order = append(t.order, k)
	}
	r.Count++
	r.LastSeen = now
	return *r
}

// All returns every entry, most requested first. Ties keep first-request
// order.
func (t *Tracker) All() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Request, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, *t.requests[k])
	}
	slices.SortStableFunc(out, func(a, b Request) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

// Top returns the n most requested entries.
func (t *Tracker) Top(n int) []Request {
	if n <= 0 {
		n = DefaultTop
	}
	all := t.All()
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// Len is the number of distinct make/model entries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}

// Clear drops every entry.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = make(map[vehicleKey]*Request)
	t.order = nil
}

var (
	luxuryMakes = []string{"bmw", "mercedes-benz", "audi", "lexus", "infiniti", "cadillac", "lincoln", "genesis"}
	truckModels = []string{"f-150", "silverado", "ram", "sierra"}
	suvModels   = []string{"suv", "cx-", "cr-v", "rav4"}
)

// Suggest proposes generic trim names for a model without catalogue data.
func Suggest(brand, model string) []string {
	mk, md := strings.ToLower(strings.TrimSpace(brand)), strings.ToLower(model)
	containsAny := func(subs []string) bool {
		return slices.ContainsFunc(subs, func(s string) bool { return strings.Contains(md, s) })
	}
	switch {
	case slices.Contains(luxuryMakes, mk):
		return []string{"Base", "Premium", "Luxury", "Sport", "Ultimate"}
	case containsAny(truckModels):
		return []string{"Regular Cab", "Extended Cab", "Crew Cab", "Work Truck", "LT", "LTZ", "High Country"}
	case containsAny(suvModels):
		return []string{"Base", "S", "SE", "SEL", "Limited", "Premium"}
	default:
		return []string{"Base", "S", "SE", "SEL", "SL", "Limited", "Premium"}
	}
}
