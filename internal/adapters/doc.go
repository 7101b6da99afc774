// Package adapters bridges bounded contexts. Each adapter implements an
// interface declared by the consuming module while wrapping the
// providing module's service, so modules never import each other.
package adapters
