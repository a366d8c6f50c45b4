// Package models defines domain entities and persistence interfaces for the trackdex library-index service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs crossing the catalog and matching boundaries
//   - [CatalogTrack] : Raw track metadata from the external media catalog, with optional fields
//   - [IndexedTrack] : Normalized track tuple stored in the reference index
//   - [MatchVerdict] : Transient outcome of a match-engine call with method provenance
//   - [Verification] : Aggregated verdict of index matching plus the filesystem fallback
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [MissingTrack] : Playlist-referenced tracks absent from the local library, with a resolution lifecycle
//
// Persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
