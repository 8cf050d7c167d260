package model

import (
	"encoding/json"
	"fmt"
)

// Attribute names one persona field produced by the generator
type Attribute string

const (
	AttrAgeRange             Attribute = "age_range"
	AttrOccupation           Attribute = "occupation"
	AttrInterests            Attribute = "interests"
	AttrPersonalityTraits    Attribute = "personality_traits"
	AttrValues               Attribute = "values"
	AttrGoals                Attribute = "goals"
	AttrPainPoints           Attribute = "pain_points"
	AttrCommunicationStyle   Attribute = "communication_style"
	AttrActivityLevel        Attribute = "activity_level"
	AttrTechnicalProficiency Attribute = "technical_proficiency"
)

// Attributes lists every required attribute in canonical order
var Attributes = []Attribute{
	AttrAgeRange,
	AttrOccupation,
	AttrInterests,
	AttrPersonalityTraits,
	AttrValues,
	AttrGoals,
	AttrPainPoints,
	AttrCommunicationStyle,
	AttrActivityLevel,
	AttrTechnicalProficiency,
}

// IsList reports whether the attribute holds a sequence of strings
func (a Attribute) IsList() bool {
	switch a {
	case AttrInterests, AttrPersonalityTraits, AttrValues, AttrGoals, AttrPainPoints:
		return true
	default:
		return false
	}
}

// Value holds either a single string or an ordered list of strings
type Value struct {
	text  string
	items []string
	list  bool
}

// Scalar returns a single-string value
func Scalar(s string) Value {
	return Value{text: s}
}

// List returns a list value. The items are copied.
func List(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{items: cp, list: true}
}

// IsList reports whether the value is a list
func (v Value) IsList() bool { return v.list }

// Text returns the scalar string (empty for list values)
func (v Value) Text() string { return v.text }

// Items returns a copy of the list items (nil for scalar values)
func (v Value) Items() []string {
	if !v.list {
		return nil
	}
	cp := make([]string, len(v.items))
	copy(cp, v.items)
	return cp
}

// MarshalJSON encodes scalars as strings and lists as arrays
func (v Value) MarshalJSON() ([]byte, error) {
	if v.list {
		return json.Marshal(v.Items())
	}
	return json.Marshal(v.text)
}

// MarshalYAML encodes scalars as strings and lists as sequences
func (v Value) MarshalYAML() (interface{}, error) {
	if v.list {
		return v.Items(), nil
	}
	return v.text, nil
}

func (v Value) String() string {
	if v.list {
		return fmt.Sprintf("%q", v.items)
	}
	return v.text
}

// AttributeMap maps each required attribute to its generated value
type AttributeMap map[Attribute]Value

// Clone returns a deep copy of the map
func (m AttributeMap) Clone() AttributeMap {
	out := make(AttributeMap, len(m))
	for k, v := range m {
		if v.list {
			out[k] = List(v.items...)
		} else {
			out[k] = v
		}
	}
	return out
}

// Missing returns the required attributes absent from the map, in canonical order
func (m AttributeMap) Missing() []Attribute {
	var missing []Attribute
	for _, attr := range Attributes {
		if _, ok := m[attr]; !ok {
			missing = append(missing, attr)
		}
	}
	return missing
}
