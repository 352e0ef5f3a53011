// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Sessions support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [SessionRepository] : Session occurrence persistence with sequence-based lookups
//   - [PillRepository] : Tune-log rows with fractional order tokens kept in sync with legacy order numbers
//
// Pill rows are ordered by a fractional order_position token compared in raw
// byte order. [PillRepository.LoadDocument] validates the stored token
// sequence and fails on duplicates or ordering violations;
// [PillRepository.Repair] is the explicit recovery path.
package repositories
