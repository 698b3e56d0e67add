// Package app wires the agent discovery system into a runnable service:
// isolated logger, registry, compiled-in provider modules, discovery,
// bulk instantiation, optional manifest watching and the HTTP API.
package app
