package recommenders

import (
	"slices"

	"github.com/XiaoConstantine/baydesign-go/pkg/searchspace"
)

// MatchDiscrete locates each query row inside the candidate table by exact
// equality on the columns the two tables share, returning candidate row
// indices in query order. Query rows with no match are skipped silently, so
// the result may be shorter than the query table. Ties resolve to the first
// matching candidate row.
func MatchDiscrete(candidates, queries *searchspace.Table) []int {
	if candidates == nil || queries == nil {
		return nil
	}

	var candCols, queryCols []int
	for qc, name := range queries.Columns {
		if cc := slices.Index(candidates.Columns, name); cc >= 0 {
			candCols = append(candCols, cc)
			queryCols = append(queryCols, qc)
		}
	}
	if len(candCols) == 0 {
		return nil
	}

	matches := make([]int, 0, len(queries.Rows))
	for _, qrow := range queries.Rows {
		for i, crow := range candidates.Rows {
			equal := true
			for j := range candCols {
				if crow[candCols[j]] != qrow[queryCols[j]] {
					equal = false
					break
				}
			}
			if equal {
				matches = append(matches, i)
				break
			}
		}
	}
	return matches
}
