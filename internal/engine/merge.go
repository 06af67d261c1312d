package engine

import (
	"sort"

	"github.com/kmrtax/kmr-leads/internal/lead"
)

// Merge unifies two collections into one canonical collection.
//
// Candidates are scanned existing first, then incoming. For each id the
// candidate with the latest createdAt is kept; on equal timestamps the later
// candidate wins, so incoming replaces existing. Missing or unparseable
// timestamps count as the Unix epoch.
//
// The result is sorted newest first. Records with equal timestamps keep the
// order in which their ids first appeared. Neither input is modified.
func Merge(existing, incoming []lead.Lead) []lead.Lead {
	type entry struct {
		lead    lead.Lead
		created int64
	}

	index := make(map[string]int, len(existing)+len(incoming))
	merged := make([]entry, 0, len(existing)+len(incoming))

	scan := func(list []lead.Lead) {
		for _, l := range list {
			e := entry{lead: l, created: l.CreatedMillis()}
			i, seen := index[l.ID]
			if !seen {
				index[l.ID] = len(merged)
				merged = append(merged, e)
				continue
			}
			if e.created >= merged[i].created {
				merged[i] = e
			}
		}
	}
	scan(existing)
	scan(incoming)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].created > merged[j].created
	})

	out := make([]lead.Lead, len(merged))
	for i, e := range merged {
		out[i] = e.lead
	}
	return out
}
