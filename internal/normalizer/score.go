package normalizer

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// TokenSetRatio computes an order-independent similarity score between two
// strings on a 0-100 scale.
//
// Each string is reduced to its set of whitespace-delimited tokens. The score
// compares the sorted shared-token string against each side's shared+remainder
// string and takes the best edit-distance similarity of the three pairings,
// so full containment of one token set in the other scores 100 regardless of
// word order or repetition.
func TokenSetRatio(a, b string) int {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var shared, onlyA, onlyB []string
	for tok := range setA {
		if setB[tok] {
			shared = append(shared, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if !setA[tok] {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(shared)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(shared, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	lev := metrics.NewLevenshtein()
	best := strutil.Similarity(base, combinedA, lev)
	if s := strutil.Similarity(base, combinedB, lev); s > best {
		best = s
	}
	if s := strutil.Similarity(combinedA, combinedB, lev); s > best {
		best = s
	}

	return int(best*100 + 0.5)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}
