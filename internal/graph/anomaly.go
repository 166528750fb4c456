// Package graph builds the inheritance graph over the descriptor arena and
// resolves transitive ancestor chains. Edges are recomputed wholesale on
// every build; nothing in this package mutates a descriptor outside Build.
package graph

import "fmt"

// AnomalyKind classifies a structural defect found while building the
// graph. Anomalies are hints for the consumer, never hard failures: no
// single defect prevents other shaders from resolving.
type AnomalyKind string

const (
	// MissingBase: a declared base name has no registry entry. No edge is
	// created for it.
	MissingBase AnomalyKind = "missing_base"

	// DuplicateName: two discovered units normalize to the same shader
	// name. The later one is excluded from resolution.
	DuplicateName AnomalyKind = "duplicate_name"

	// CycleDetected: the base declarations close a cycle. Chain queries
	// still terminate; the cycle is surfaced here.
	CycleDetected AnomalyKind = "cycle_detected"

	// MalformedUnit: the external parser failed for one source unit. The
	// unit is excluded from edges and lookups.
	MalformedUnit AnomalyKind = "malformed_unit"
)

// Anomaly is one reportable structural defect.
type Anomaly struct {
	Kind AnomalyKind

	// Shader is the descriptor the anomaly is attached to.
	Shader string

	// Subject is the name the anomaly is about: the unresolved base, the
	// colliding unit's file identity, or the edge target closing a cycle.
	Subject string

	Detail string
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s: %s (%s): %s", a.Kind, a.Shader, a.Subject, a.Detail)
}
