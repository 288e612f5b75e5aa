package score

import "fmt"

// Tuplet holds one group of notes whose written durations are scaled by
// Ratio.Den/Ratio.Num. A complete group always lasts Group.
type Tuplet struct {
	Ratio Ratio
	Group Duration
	Notes []*Note
}

// NewTuplet returns an empty group laid out after spec.
func NewTuplet(spec TupletSpec) *Tuplet {
	return &Tuplet{Ratio: spec.Ratio, Group: spec.GroupDuration()}
}

// Append adds notes to the group.
func (t *Tuplet) Append(notes ...*Note) {
	t.Notes = append(t.Notes, notes...)
}

// Written is the unscaled sum of the member tokens.
func (t *Tuplet) Written() Duration {
	var sum Duration
	for _, n := range t.Notes {
		sum += n.RealDuration()
	}
	return sum
}

// RealDuration implements Node.
func (t *Tuplet) RealDuration() Duration {
	return t.Written() * Duration(t.Ratio.Den) / Duration(t.Ratio.Num)
}

// Transpose implements Node.
func (t *Tuplet) Transpose(delta int) {
	for _, n := range t.Notes {
		n.Transpose(delta)
	}
}

func (t *Tuplet) leaves(dst []*Note) []*Note {
	return append(dst, t.Notes...)
}

// Validate checks that the group is complete.
func (t *Tuplet) Validate() error {
	written := t.Written()
	if written*Duration(t.Ratio.Den)%Duration(t.Ratio.Num) != 0 {
		return fmt.Errorf("tuplet %d:%d: written length %s does not scale exactly", t.Ratio.Num, t.Ratio.Den, written)
	}
	if got := t.RealDuration(); got != t.Group {
		return fmt.Errorf("tuplet %d:%d: group lasts %s beats, want %s", t.Ratio.Num, t.Ratio.Den, got, t.Group)
	}
	return nil
}
