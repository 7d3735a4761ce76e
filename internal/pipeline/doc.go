// Package pipeline implements the three-stage bulk document load: a reader
// that slices the persisted document into fixed-size batches, a normalizer
// that upgrades legacy records, and a sink that accumulates results and
// surfaces early partial views. Stages run concurrently, joined by bounded
// channels so a slow consumer stalls the producer instead of dropping data.
package pipeline
