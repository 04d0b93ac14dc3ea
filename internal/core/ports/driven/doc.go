// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding generation, the vector index,
// answer generation, document extraction, blob storage, and the
// uploaded-file ledger.
package driven
