// Package models defines domain entities and persistence interfaces for the tunelog session service.
//
// The package contains two categories of types:
//
// 1. Editing value types: the in-memory document edited during one session
//   - [TunePill] : One played-tune record, the atomic editable unit
//   - [TuneSet] : A maximal run of pills played back-to-back without a break
//   - [Document] : The ordered tune sets of one session occurrence
//   - [Position] : A navigational reference targeting an insertion point
//   - [RawTune] : The persisted tuple shape the document is loaded from
//
// 2. Persistent entities: database-backed models with full lifecycle management
//   - [Session] : A recurring-session occurrence whose tune log is edited
//   - [PersistedPill] : A pill row with its fractional order_position token
//
// All persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
