package agent

import "reflect"

// Filter selects Definitions during listing. Absent criteria always match;
// set criteria are combined conjunctively. Tags match any-of, attribute
// equalities must all hold. A Filter is stateless and reusable.
type Filter struct {
	Tags        []string
	Enabled     *bool
	Source      *Source
	PriorityMin *int
	PriorityMax *int
	Attributes  map[string]any
}

// Bool is a convenience for building Enabled criteria inline.
func Bool(v bool) *bool { return &v }

// Int is a convenience for building priority range criteria inline.
func Int(v int) *int { return &v }

// Matches reports whether the definition satisfies every configured
// criterion. It is a pure function with no side effects.
func (f *Filter) Matches(def *Definition) bool {
	if f == nil {
		return true
	}
	md := def.Metadata

	if f.Enabled != nil && md.Enabled != *f.Enabled {
		return false
	}
	if f.Source != nil && md.Source != *f.Source {
		return false
	}
	if f.PriorityMin != nil && md.Priority < *f.PriorityMin {
		return false
	}
	if f.PriorityMax != nil && md.Priority > *f.PriorityMax {
		return false
	}
	if len(f.Tags) > 0 {
		any := false
		for _, tag := range f.Tags {
			if md.HasTag(tag) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	for key, want := range f.Attributes {
		got, ok := md.Attributes[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
