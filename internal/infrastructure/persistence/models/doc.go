// Package models contains the GORM persistence models for aggregates
// whose domain shape does not map one-to-one onto a table row, along
// with the converters between both representations. Aggregates that are
// flat enough to persist directly carry their GORM tags in the domain
// package instead.
package models
