package score

import (
	"errors"
	"fmt"
)

// Fragment is an ordered container of nodes. A phrase fragment is rendered
// under a single slur.
type Fragment struct {
	Nodes  []Node
	Phrase bool
}

// NewFragment returns a fragment holding nodes.
func NewFragment(nodes ...Node) *Fragment {
	f := &Fragment{}
	f.Append(nodes...)
	return f
}

// NewPhrase returns a phrase fragment holding nodes.
func NewPhrase(nodes ...Node) *Fragment {
	f := &Fragment{Phrase: true}
	f.Append(nodes...)
	return f
}

// Append adds nodes at the end. Plain nested fragments are flattened, phrase
// fragments are kept as a unit.
func (f *Fragment) Append(nodes ...Node) {
	f.Nodes = append(f.Nodes, flatten(nodes)...)
}

// Prepend adds nodes at the start.
func (f *Fragment) Prepend(nodes ...Node) {
	f.Nodes = append(flatten(nodes), f.Nodes...)
}

func flatten(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if sub, ok := n.(*Fragment); ok && !sub.Phrase {
			out = append(out, flatten(sub.Nodes)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// RealDuration implements Node.
func (f *Fragment) RealDuration() Duration {
	var sum Duration
	for _, n := range f.Nodes {
		sum += n.RealDuration()
	}
	return sum
}

// Transpose implements Node.
func (f *Fragment) Transpose(delta int) {
	for _, n := range f.Nodes {
		n.Transpose(delta)
	}
}

func (f *Fragment) leaves(dst []*Note) []*Note {
	for _, n := range f.Nodes {
		dst = n.leaves(dst)
	}
	return dst
}

// Notes returns every leaf note and rest in order, tuplet members included.
func (f *Fragment) Notes() []*Note {
	return f.leaves(nil)
}

// Sounding returns the leaves that are not rests.
func (f *Fragment) Sounding() []*Note {
	var out []*Note
	for _, n := range f.Notes() {
		if !n.Rest {
			out = append(out, n)
		}
	}
	return out
}

// Pitches returns the pitch of every sounding note in order.
func (f *Fragment) Pitches() []int {
	var out []int
	for _, n := range f.Sounding() {
		out = append(out, n.Pitch)
	}
	return out
}

// Validate checks that every leaf carries a known token and every tuplet is a
// complete group.
func (f *Fragment) Validate() error {
	var errs []error
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			switch v := n.(type) {
			case *Note:
				if !v.Token.Valid() {
					errs = append(errs, fmt.Errorf("%w: duration token %q", ErrLookupMiss, v.Token))
				}
			case *Tuplet:
				for _, m := range v.Notes {
					if !m.Token.Valid() {
						errs = append(errs, fmt.Errorf("%w: duration token %q", ErrLookupMiss, m.Token))
					}
				}
				if err := v.Validate(); err != nil {
					errs = append(errs, err)
				}
			case *Fragment:
				walk(v.Nodes)
			}
		}
	}
	walk(f.Nodes)
	return errors.Join(errs...)
}

// Event is a leaf placed on the fragment's timeline.
type Event struct {
	Note   *Note
	Start  Duration
	Length Duration
}

// Timeline returns every leaf with its real start offset and length.
func (f *Fragment) Timeline() []Event {
	var out []Event
	var pos Duration
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			switch v := n.(type) {
			case *Note:
				out = append(out, Event{Note: v, Start: pos, Length: v.RealDuration()})
				pos += v.RealDuration()
			case *Tuplet:
				for _, m := range v.Notes {
					l := m.RealDuration() * Duration(v.Ratio.Den) / Duration(v.Ratio.Num)
					out = append(out, Event{Note: m, Start: pos, Length: l})
					pos += l
				}
			case *Fragment:
				walk(v.Nodes)
			}
		}
	}
	walk(f.Nodes)
	return out
}
