// Package domain contains the core business types for the grounder
// ingestion and retrieval pipeline. Types here are free of infrastructure
// concerns; adapters translate them to and from external representations.
package domain
