// Package match implements the sequence-pattern-matching engine: a
// backtracking scan over a scrolling window of items, resolved against
// per-pattern overlap and deduplication policy, with extractor callbacks
// that can transform results and steer the scan.
//
// A Matcher is generic over the item type and exposes two execution
// models. The batch entry points (FindMatches, FindNamed) scan an
// explicit slice with fresh run state. The streaming entry points
// (ProcessItem, ProcessItems) push items through the scrolling window
// and report matches as they complete at the newest item, with overlap
// and dedup state persisted across pushes and pruned as the window
// slides.
package match
