// Package repository defines the persistence contracts used by the
// service layer. Implementations live in subpackages.
package repository
