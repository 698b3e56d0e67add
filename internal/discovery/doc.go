// Package discovery turns configured filesystem paths into accepted agent
// definitions.
//
// A discovery path is a directory holding .hcl agent manifests. Each
// manifest binds an agent name to a compiled factory symbol and carries the
// metadata the provider did not hard-code. Scanning is non-recursive, skips
// private (underscore-prefixed) and reserved filenames, and isolates
// failures per file: one malformed manifest never prevents discovery of its
// siblings.
//
// After the scan, every pending registration without a definition is
// promoted through the registry's conflict rule and the discovery latch is
// set, making repeat calls a no-op until forced.
package discovery
