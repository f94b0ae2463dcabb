// Package internalcheck holds static-analysis tests that enforce project
// invariants across the whole module, such as keeping the FFI machinery
// confined to the packages built for it.
package internalcheck
