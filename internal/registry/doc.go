// Package registry provides the central store for the agent plugin system.
//
// The Registry holds three tables: the compiled factory table (Go symbol ->
// factory, so manifest files can reference compiled code by name), the
// pending table (candidate registrations collected from markers and
// manifests before conflict resolution), and the definition table (accepted
// registrations, exactly one per agent name).
//
// During application startup the provider modules populate the factory and
// pending tables; the discovery engine then promotes pending entries into
// definitions, applying the priority conflict rule. The registry is a plain
// struct handed to collaborators by the app: one logical instance per
// process, but nothing global.
package registry
