package qtable

import "sort"

// Action is one member of an agent's fixed action set.
type Action string

type key struct {
	state  string
	action Action
}

type cell struct {
	state State
	value float64
}

// Entry is one stored (state, action) value.
type Entry struct {
	State  State
	Action Action
	Value  float64
}

// Table maps (state, action) pairs to value estimates. Missing pairs read as
// zero; entries are only removed by Replace.
type Table struct {
	cells map[key]cell
}

func New() *Table {
	return &Table{cells: make(map[key]cell)}
}

// Get returns the stored value or 0 when the pair has never been set.
func (t *Table) Get(state State, action Action) float64 {
	v, _ := t.Lookup(state, action)
	return v
}

func (t *Table) Lookup(state State, action Action) (float64, bool) {
	c, ok := t.cells[key{state: state.Key(), action: action}]
	if !ok {
		return 0, false
	}
	return c.value, true
}

func (t *Table) Set(state State, action Action, value float64) {
	t.cells[key{state: state.Key(), action: action}] = cell{state: state, value: value}
}

func (t *Table) Len() int { return len(t.cells) }

// Max returns the largest value over actions for state. It returns 0 for an
// empty action list.
func (t *Table) Max(state State, actions []Action) float64 {
	if len(actions) == 0 {
		return 0
	}
	best := t.Get(state, actions[0])
	for _, a := range actions[1:] {
		if v := t.Get(state, a); v > best {
			best = v
		}
	}
	return best
}

// Entries returns a snapshot ordered by state key then action.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.cells))
	for k, c := range t.cells {
		out = append(out, Entry{State: c.state, Action: k.action, Value: c.value})
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := out[i].State.Key(), out[j].State.Key()
		if ki != kj {
			return ki < kj
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// Replace discards every entry and installs entries in their place.
func (t *Table) Replace(entries []Entry) {
	cells := make(map[key]cell, len(entries))
	for _, e := range entries {
		cells[key{state: e.State.Key(), action: e.Action}] = cell{state: e.State, value: e.Value}
	}
	t.cells = cells
}
