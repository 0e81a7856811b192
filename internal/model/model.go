// Package model holds the pure domain types shared across layers.
// No database tags, no transport coupling; every layer (HTTP, service,
// sheets, repository) maps to and from these types.
package model
