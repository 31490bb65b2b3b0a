// Package registry holds the attachment batch shown to the user.
//
// Every mutation copies the current snapshot, changes one element and
// publishes the copy with a compare-and-swap, so readers always see a
// consistent batch and concurrent pipelines never block each other.
// Pipelines address attachments by (generation, index): once a new batch
// replaces the old one, late results from the old batch are dropped.
package registry
