// Package manager is the public facade over the agent registry and the
// discovery engine.
//
// Every method is a thin delegation: queries are read projections over the
// registry's sorted listing, lifecycle calls pass through, and the
// instantiation calls are the only place factory errors are allowed to
// cross back to the caller, always wrapped, never raw. The registry itself
// assumes a single writer, so the manager doubles as the concurrency
// boundary: a RWMutex serializes discovery and lifecycle writes against
// the read projections.
package manager
