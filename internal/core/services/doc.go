// Package services contains the core pipeline orchestration: ingestion
// of uploaded documents into the vector index, and grounded answering
// of questions over the indexed chunks. Services depend only on the
// driven ports and are wired with concrete adapters at startup.
package services
