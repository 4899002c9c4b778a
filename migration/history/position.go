package history

// Position derives the current applied-through version from history ordered
// newest first.
//
// An empty history yields 0. If the newest record is StatusDown, that
// version has been reverted and the previous one is the highest applied,
// so the result is version-1. Any other status yields the version itself.
//
// Note that a newest record with a dirty status still contributes its
// version: "position" means "last touched", not "safe to build on". Callers
// that plan new work must run the dirty check independently.
func Position(records []Record) int {
	if len(records) == 0 {
		return 0
	}
	newest := records[0]
	if newest.Status == StatusDown {
		return newest.Version - 1
	}
	return newest.Version
}
