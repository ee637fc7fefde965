package chip8

import (
	"fmt"
	"sort"
	"strings"
)

// Quirks selects between the behaviours of historical interpreters for
// the few instructions they disagree on. The zero value is the most common
// behaviour.
type Quirks struct {
	// ShiftVY makes 8XY6 and 8XYE shift VY into VX instead of shifting VX.
	ShiftVY bool
	// JumpVX makes BNNN jump to VX+NNN, where X is the top nibble of NNN.
	JumpVX bool
	// LoadStoreI makes FX55 and FX65 leave I pointing past the last
	// register stored or loaded.
	LoadStoreI bool
	// ClipSprites clips sprite pixels at the right and bottom edges
	// instead of wrapping them. The sprite origin always wraps.
	ClipSprites bool
	// ResetVF makes 8XY1, 8XY2 and 8XY3 clear VF.
	ResetVF bool
}

var quirkPresets = map[string]Quirks{
	"chip8": {},
	"vip":   {ShiftVY: true, LoadStoreI: true, ClipSprites: true, ResetVF: true},
	"schip": {JumpVX: true, ClipSprites: true},
}

var quirkNames = map[string]func(*Quirks){
	"shift":     func(q *Quirks) { q.ShiftVY = true },
	"jump":      func(q *Quirks) { q.JumpVX = true },
	"loadstore": func(q *Quirks) { q.LoadStoreI = true },
	"clip":      func(q *Quirks) { q.ClipSprites = true },
	"vf":        func(q *Quirks) { q.ResetVF = true },
}

// ParseQuirks parses either a preset name ("chip8", "vip", "schip") or a
// comma-separated list of quirk names ("shift", "jump", "loadstore",
// "clip", "vf"). The empty string yields the zero Quirks.
func ParseQuirks(s string) (Quirks, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quirks{}, nil
	}
	if q, ok := quirkPresets[s]; ok {
		return q, nil
	}
	var q Quirks
	for _, name := range strings.Split(s, ",") {
		set, ok := quirkNames[strings.TrimSpace(name)]
		if !ok {
			return Quirks{}, fmt.Errorf("unknown quirk %q (want one of %s)", name, quirkList())
		}
		set(&q)
	}
	return q, nil
}

func quirkList() string {
	var names []string
	for n := range quirkPresets {
		names = append(names, n)
	}
	for n := range quirkNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (q Quirks) String() string {
	for _, name := range []string{"chip8", "vip", "schip"} {
		if quirkPresets[name] == q {
			return name
		}
	}
	var names []string
	for _, n := range []struct {
		name string
		on   bool
	}{
		{"shift", q.ShiftVY},
		{"jump", q.JumpVX},
		{"loadstore", q.LoadStoreI},
		{"clip", q.ClipSprites},
		{"vf", q.ResetVF},
	} {
		if n.on {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}
