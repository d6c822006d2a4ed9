// Package filter implements the xRegistry attribute query language over
// in-memory entity collections: a lenient filter-expression parser, a
// per-operator comparator, a name-indexed fast path backed by roaring
// bitmaps, a capped two-step evaluator that enriches candidates with
// fetched metadata, a generation-keyed result cache, and stable sorting
// plus offset/limit pagination with RFC 5988 continuation links.
//
// Collections can reach millions of entries, so evaluation never fetches
// metadata for more than a configured number of candidates: step one
// narrows by name using the index, step two refines the survivors.
package filter
