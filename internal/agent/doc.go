// Package agent defines the value types shared by the registration and
// discovery layers: Metadata describing a registrable agent, the finalized
// Definition, the Filter predicate used for querying, and the error taxonomy
// that crosses package boundaries.
//
// Why a leaf package?
//
// Both the registry and the manager need these types, and the discovery
// engine produces them from manifest files. Keeping them dependency-free
// avoids import cycles and keeps validation in exactly one place: a Metadata
// or Definition that exists has already passed its invariants.
package agent
