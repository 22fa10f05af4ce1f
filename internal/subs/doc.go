// Package subs maintains per-path subscriber sets and computes the
// notification fan-out for a change.
//
// Only the exact changed path and its strict ancestors are notified; there
// are no wildcard or descendant subscriptions. Ancestor callbacks receive
// the ancestor's current value, recomputed through a tree reader at
// delivery time, paired with the changed leaf's old value. The leaf-old-
// value pairing is a compatibility quirk carried over from deployed
// consumers - see DESIGN.md before changing it.
//
// Callback identity for Unsubscribe and immediate-callback deduplication is
// the function's code pointer. Two distinct closures built from the same
// function literal therefore compare equal; callers who need precise
// removal should use the handle returned by Subscribe, which removes
// exactly its own registration.
package subs
