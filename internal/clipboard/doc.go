// Package clipboard implements copy, cut and paste of tune sets.
//
// A [Reconciler] moves whole tune sets (or sub-ranges) between positions in
// the document, interoperating with an OS text clipboard that may hold this
// system's own structured payload or arbitrary user-typed text. Structured
// payloads splice in fully resolved; free text produces placeholder pills
// that are reconciled against the tune-matching service as one concurrent
// batch, with a single re-render once every result has settled.
//
// Selection, cursor, OS clipboard and matching are collaborator interfaces;
// the reconciler owns only the splice rules and the batch reconciliation.
package clipboard
