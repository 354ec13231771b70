// internal/pipeline/prioritizer.go
package pipeline

import (
	"sort"
	"strings"

	"macromaps/internal/common/config"
)

// prioritizeImages orders candidate URLs by the configured substring
// patterns: lower rank first, URLs matching no pattern last. The sort is
// stable so ties keep their scraped order.
func prioritizeImages(urls []string, patterns []config.ImagePriorityPattern) []string {
	if len(urls) == 0 {
		return nil
	}

	ranked := make([]string, len(urls))
	copy(ranked, urls)

	sort.SliceStable(ranked, func(i, j int) bool {
		return patternRank(ranked[i], patterns) < patternRank(ranked[j], patterns)
	})
	return ranked
}

func patternRank(url string, patterns []config.ImagePriorityPattern) int {
	best := len(patterns) + 1
	for _, p := range patterns {
		if p.Rank < best && strings.Contains(url, p.Pattern) {
			best = p.Rank
		}
	}
	return best
}
