// Package document implements the in-memory tune-log editing model.
//
// A [Manager] owns the [models.Document] for one open editing session along
// with its undo/redo history. All structural mutations go through Manager
// primitives: each is atomic, records exactly one undo snapshot, and fires
// the registered change callback exactly once after the mutation is fully
// applied. The Manager is scoped to a single logical writer; it performs no
// locking of its own.
//
// Rendering is a collaborator concern: the package exposes only the document
// and change notifications.
package document
