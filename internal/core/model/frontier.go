package model

type EntryState int

const (
	// StatePending marks an id that was discovered but not fetched yet.
	StatePending EntryState = iota
	StateResolved
	// StateFailed marks an id whose fetch failed permanently. Failed ids are
	// never fetched again and never reach the output graph.
	StateFailed
	// StateRedirected marks an id Wikidata answered with a different
	// canonical entity; Alias holds that entity's id.
	StateRedirected
)

func (s EntryState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	case StateRedirected:
		return "redirected"
	default:
		return "unknown"
	}
}

type Entry struct {
	State  EntryState
	Person *Person
	Alias  string
	Err    error
}

// Frontier is the working set of a single crawl. Keys are only ever added,
// in discovery order, and never beyond Cap.
type Frontier struct {
	cap     int
	order   []string
	entries map[string]*Entry
}

// NewFrontier seeds a frontier with one pending id. A cap below one is
// raised to one so the seed always fits.
func NewFrontier(seed string, cap int) *Frontier {
	if cap < 1 {
		cap = 1
	}
	f := &Frontier{
		cap:     cap,
		entries: make(map[string]*Entry),
	}
	f.Discover(seed)
	return f
}

func (f *Frontier) Len() int { return len(f.order) }

func (f *Frontier) Cap() int { return f.cap }

func (f *Frontier) Full() bool { return len(f.order) >= f.cap }

func (f *Frontier) Has(id string) bool {
	_, ok := f.entries[id]
	return ok
}

// Discover inserts id as pending. It reports whether id is a key after the
// call; false means the frontier is full and id was not present.
func (f *Frontier) Discover(id string) bool {
	if _, ok := f.entries[id]; ok {
		return true
	}
	if f.Full() {
		return false
	}
	f.entries[id] = &Entry{State: StatePending}
	f.order = append(f.order, id)
	return true
}

// Pending lists unresolved ids in discovery order.
func (f *Frontier) Pending() []string {
	var ids []string
	for _, id := range f.order {
		if f.entries[id].State == StatePending {
			ids = append(ids, id)
		}
	}
	return ids
}

func (f *Frontier) HasPending() bool {
	for _, e := range f.entries {
		if e.State == StatePending {
			return true
		}
	}
	return false
}

// Resolve stores p under id, inserting id if there is room. It reports
// false when id is absent and the frontier is full.
func (f *Frontier) Resolve(id string, p *Person) bool {
	if !f.Discover(id) {
		return false
	}
	e := f.entries[id]
	e.State = StateResolved
	e.Person = p
	e.Err = nil
	return true
}

func (f *Frontier) Fail(id string, err error) {
	if e, ok := f.entries[id]; ok {
		e.State = StateFailed
		e.Err = err
	}
}

func (f *Frontier) Redirect(id, canonical string) {
	if e, ok := f.entries[id]; ok {
		e.State = StateRedirected
		e.Alias = canonical
	}
}

func (f *Frontier) Entry(id string) (Entry, bool) {
	e, ok := f.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Canonical follows redirects from id. Chains are bounded by the frontier
// size, so a redirect cycle ends rather than looping.
func (f *Frontier) Canonical(id string) string {
	for hops := 0; hops <= len(f.order); hops++ {
		e, ok := f.entries[id]
		if !ok || e.State != StateRedirected {
			return id
		}
		id = e.Alias
	}
	return id
}

// Person returns the resolved person behind id, following redirects.
func (f *Frontier) Person(id string) (*Person, bool) {
	e, ok := f.entries[f.Canonical(id)]
	if !ok || e.State != StateResolved {
		return nil, false
	}
	return e.Person, true
}

// IDs returns every key in discovery order.
func (f *Frontier) IDs() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Count tallies entries by state.
func (f *Frontier) Count() map[EntryState]int {
	counts := make(map[EntryState]int)
	for _, e := range f.entries {
		counts[e.State]++
	}
	return counts
}
