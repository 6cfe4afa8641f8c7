package qtable

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"qlearn/internal/model"
)

type Kind uint8

const (
	KindInt Kind = iota + 1
	KindFloat
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

func kindFromName(name string) (Kind, bool) {
	switch name {
	case "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	case "string":
		return KindString, true
	case "bool":
		return KindBool, true
	default:
		return 0, false
	}
}

// Component is one typed element of a State.
type Component struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

func Int(v int) Component { return Component{kind: KindInt, i: int64(v)} }
func Int64(v int64) Component { return Component{kind: KindInt, i: v} }
func Float(v float64) Component { return Component{kind: KindFloat, f: v} }
func String(v string) Component { return Component{kind: KindString, s: v} }
func Bool(v bool) Component { return Component{kind: KindBool, b: v} }
func (c Component) Kind() Kind { return c.kind }
func (c Component) IsInt() bool { return c.kind == KindInt }
func (c Component) Int() int64 { return c.i }
func (c Component) Float() float64 { return c.f }
func (c Component) Str() string { return c.s }
func (c Component) Bool() bool { return c.b }

func (c Component) String() string {
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindFloat:
		return strconv.FormatFloat(c.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(c.s)
	case KindBool:
		return strconv.FormatBool(c.b)
	default:
		return "?"
	}
}

func (c Component) appendKey(sb *strings.Builder) {
	switch c.kind {
	case KindInt:
		sb.WriteString("i:")
		sb.WriteString(strconv.FormatInt(c.i, 10))
	case KindFloat:
		f := c.f
		if f == 0 {
			// -0 and +0 name the same state.
			f = 0
		}
		sb.WriteString("f:")
		sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case KindString:
		sb.WriteString("s:")
		sb.WriteString(strconv.Quote(c.s))
	case KindBool:
		sb.WriteString("b:")
		sb.WriteString(strconv.FormatBool(c.b))
	}
}

// State is an immutable, structurally compared tuple of components. The zero
// value is the empty state.
type State struct {
	comps []Component
	key   string
}

func NewState(components ...Component) State {
	comps := append([]Component(nil), components...)
	var sb strings.Builder
	sb.WriteByte('(')
	for i, c := range comps {
		if i > 0 {
			sb.WriteByte('|')
		}
		c.appendKey(&sb)
	}
	sb.WriteByte(')')
	return State{comps: comps, key: sb.String()}
}

// Ints builds a state made only of integer components.
func Ints(values ...int) State {
	comps := make([]Component, len(values))
	for i, v := range values {
		comps[i] = Int(v)
	}
	return NewState(comps...)
}

// Strings builds a state made only of string components.
func Strings(values ...string) State {
	comps := make([]Component, len(values))
	for i, v := range values {
		comps[i] = String(v)
	}
	return NewState(comps...)
}

func (s State) Len() int { return len(s.comps) }

func (s State) At(i int) Component { return s.comps[i] }

// Key is the canonical encoding used for equality and hashing.
func (s State) Key() string {
	if s.key == "" {
		return "()"
	}
	return s.key
}

func (s State) Equal(other State) bool { return s.Key() == other.Key() }

// IntCount reports how many components are integer typed.
func (s State) IntCount() int {
	n := 0
	for _, c := range s.comps {
		if c.IsInt() {
			n++
		}
	}
	return n
}

// AllIntegers reports whether every component is integer typed. The empty
// state satisfies it.
func (s State) AllIntegers() bool { return s.IntCount() == len(s.comps) }

func (s State) String() string {
	parts := make([]string, len(s.comps))
	for i, c := range s.comps {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ParseState reads a comma separated state. Each token becomes an Int when it
// parses as an integer, a Float when it parses as a finite float, a Bool for the
// literals true/false, and a String otherwise. Surrounding double quotes force
// a String.
func ParseState(text string) State {
	text = strings.TrimSpace(text)
	if text == "" {
		return NewState()
	}
	tokens := strings.Split(text, ",")
	comps := make([]Component, 0, len(tokens))
	for _, tok := range tokens {
		comps = append(comps, parseComponent(strings.TrimSpace(tok)))
	}
	return NewState(comps...)
}

func parseComponent(tok string) Component {
	if len(tok) >= 2 && strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`) {
		if unq, err := strconv.Unquote(tok); err == nil {
			return String(unq)
		}
	}
	if v, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Int64(v)
	}
	if v, err := strconv.ParseFloat(tok, 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
		return Float(v)
	}
	switch tok {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	return String(tok)
}

// Record converts the state to its persisted form.
func (s State) Record() []model.StateComponent {
	out := make([]model.StateComponent, len(s.comps))
	for i, c := range s.comps {
		rec := model.StateComponent{Kind: c.kind.String()}
		switch c.kind {
		case KindInt:
			rec.Int = c.i
		case KindFloat:
			rec.Float = strconv.FormatFloat(c.f, 'g', -1, 64)
		case KindString:
			rec.Str = c.s
		case KindBool:
			rec.Bool = c.b
		}
		out[i] = rec
	}
	return out
}

// StateFromRecord rebuilds a state from its persisted form.
func StateFromRecord(records []model.StateComponent) (State, error) {
	comps := make([]Component, len(records))
	for i, rec := range records {
		kind, ok := kindFromName(rec.Kind)
		if !ok {
			return State{}, fmt.Errorf("state component %d: unknown kind %q", i, rec.Kind)
		}
		switch kind {
		case KindInt:
			comps[i] = Int64(rec.Int)
		case KindFloat:
			f, err := strconv.ParseFloat(rec.Float, 64)
			if err != nil {
				return State{}, fmt.Errorf("state component %d: bad float %q", i, rec.Float)
			}
			comps[i] = Float(f)
		case KindString:
			comps[i] = String(rec.Str)
		case KindBool:
			comps[i] = Bool(rec.Bool)
		}
	}
	return NewState(comps...), nil
}
