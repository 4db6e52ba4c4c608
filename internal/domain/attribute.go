package domain

import (
	"fmt"
	"strings"
)

// Attribute names one of the four categorical perfume attributes.
type Attribute int

const (
	Personality Attribute = iota
	Occasion
	Notes
	Intensity
)

// AttributeCount is the number of categorical attributes per record.
const AttributeCount = 4

// Attributes returns all attributes in composition order.
func Attributes() [AttributeCount]Attribute {
	return [AttributeCount]Attribute{Personality, Occasion, Notes, Intensity}
}

func (a Attribute) String() string {
	switch a {
	case Personality:
		return "personality"
	case Occasion:
		return "occasion"
	case Notes:
		return "notes"
	case Intensity:
		return "intensity"
	}
	return fmt.Sprintf("attribute(%d)", int(a))
}

// Label is the human readable name used in user interfaces.
func (a Attribute) Label() string {
	switch a {
	case Personality:
		return "Personality"
	case Occasion:
		return "Occasion"
	case Notes:
		return "Dominant notes"
	case Intensity:
		return "Intensity"
	}
	return a.String()
}

// ParseAttribute resolves an attribute from its String form.
func ParseAttribute(s string) (Attribute, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "personality":
		return Personality, nil
	case "occasion":
		return Occasion, nil
	case "notes", "dominant_notes":
		return Notes, nil
	case "intensity":
		return Intensity, nil
	}
	return 0, fmt.Errorf("unknown attribute %q", s)
}
