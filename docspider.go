// Package docspider crawls a documentation site with a headless browser,
// extracts page content and outbound links, deduplicates URLs against a
// durable state store, and feeds extracted documents into a Meilisearch
// index in retried batches. It also enumerates community articles by
// numeric ID over plain HTTP.
//
// This package contains domain types and interfaces following the Standard
// Package Layout. Implementations live in subdirectories named after their
// primary dependency (e.g., meili/, rod/, goquery/).
package docspider
