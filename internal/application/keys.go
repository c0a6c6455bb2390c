package application

import (
	"sort"
	"strconv"
	"strings"

	"zotsync/internal/ports"
)

// extractCreatedKey pulls the new item key out of a creation response.
// The remote API returns the key three different ways depending on
// version and mood, so the strategies are tried in priority order, each
// total (match-or-none, never an error):
//
//  1. the "successful" map keyed by submission index,
//  2. the first element of a list-shaped response body,
//  3. the trailing path segment of a Location-style header.
func extractCreatedKey(res *ports.CreateResult) (string, bool) {
	if res == nil {
		return "", false
	}

	if len(res.Successful) > 0 {
		// Lowest submission index first, for determinism. Indexes are
		// numeric strings, so "10" must sort after "2".
		indexes := make([]string, 0, len(res.Successful))
		for idx := range res.Successful {
			indexes = append(indexes, idx)
		}
		sort.Slice(indexes, func(i, j int) bool {
			a, aerr := strconv.Atoi(indexes[i])
			b, berr := strconv.Atoi(indexes[j])
			if aerr != nil || berr != nil {
				return indexes[i] < indexes[j]
			}
			return a < b
		})
		for _, idx := range indexes {
			if key := res.Successful[idx]; key != "" {
				return key, true
			}
		}
	}

	if len(res.Records) > 0 && res.Records[0].Key != "" {
		return res.Records[0].Key, true
	}

	if loc := res.Location; loc != "" {
		if i := strings.LastIndex(loc, "/items/"); i >= 0 {
			key := strings.Trim(loc[i+len("/items/"):], "/ ")
			if key != "" {
				return key, true
			}
		}
	}

	return "", false
}
