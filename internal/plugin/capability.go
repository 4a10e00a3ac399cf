package plugin

import "strings"

// Capability names a permission checked by the solution sheet plugin.
type Capability string

const (
	CapViewSolutionAnytime Capability = "assignfeedback/solutionsheet:viewsolutionanytime"
	CapViewSolution        Capability = "assignfeedback/solutionsheet:viewsolution"
	CapReleaseSolution     Capability = "assignfeedback/solutionsheet:releasesolution"
)

// CapabilitySet is the set of capabilities held by a user in an assignment.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from the given capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	if s == nil {
		return false
	}
	_, ok := s[c]
	return ok
}

// RoleCapabilities maps a platform role to its solution sheet capabilities.
func RoleCapabilities(role string) CapabilitySet {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin", "teacher":
		return NewCapabilitySet(CapViewSolutionAnytime, CapViewSolution, CapReleaseSolution)
	case "student":
		return NewCapabilitySet(CapViewSolution)
	default:
		return NewCapabilitySet()
	}
}
