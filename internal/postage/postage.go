// Package postage defines the physical mail service tiers and the file
// naming conventions shared with the print provider.
package postage

import "fmt"

// Class is a tier of physical mail service.
type Class string

const (
	FirstClass  Class = "first"
	SecondClass Class = "second"
	Europe      Class = "europe"
	RestOfWorld Class = "rest-of-world"
)

// All lists every class in dispatch order. Collation iterates this order so
// archive sequence numbers are stable run to run.
func All() []Class {
	return []Class{FirstClass, SecondClass, Europe, RestOfWorld}
}

// FileCode returns the single-character code used in provider filenames.
func (c Class) FileCode() string {
	switch c {
	case FirstClass:
		return "1"
	case SecondClass:
		return "2"
	case Europe:
		return "E"
	case RestOfWorld:
		return "N"
	}
	return ""
}

// International reports whether the class is an overseas tier.
func (c Class) International() bool {
	return c == Europe || c == RestOfWorld
}

// Valid reports whether c is a known class.
func (c Class) Valid() bool {
	return c.FileCode() != ""
}

// Parse converts a stored postage string into a Class.
func Parse(raw string) (Class, error) {
	c := Class(raw)
	if !c.Valid() {
		return "", fmt.Errorf("unknown postage class %q", raw)
	}
	return c, nil
}
