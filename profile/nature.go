package profile

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/pthm-cable/drowse/config"
	"github.com/pthm-cable/drowse/simerr"
)

// neutral is used when a profile names no nature.
var neutral = config.NatureConfig{Name: "neutral", Speed: 1, Recovery: 1}

// LookupNature resolves a nature name case-insensitively. Unknown names fail
// with the closest configured names as suggestions.
func LookupNature(cfg *config.Config, name string) (config.NatureConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return neutral, nil
	}
	if n, ok := cfg.Nature(name); ok {
		return n, nil
	}

	suggestions := suggest(strings.ToLower(name), cfg.NatureNames())
	if len(suggestions) == 0 {
		return config.NatureConfig{}, simerr.InvalidParameter("nature", "unknown nature %q", name)
	}
	return config.NatureConfig{}, simerr.InvalidParameter("nature", "unknown nature %q, did you mean %s?",
		name, strings.Join(quoteAll(suggestions), " or "))
}

type scored struct {
	val  string
	dist int
}

// suggest returns up to two candidates within the edit-distance limit,
// closest first.
func suggest(token string, candidates []string) []string {
	var results []scored
	for _, cand := range candidates {
		lower := strings.ToLower(cand)
		dist := levenshtein.ComputeDistance(token, lower)
		if dist > levenshteinLimit(len(lower)) {
			continue
		}
		results = append(results, scored{val: cand, dist: dist})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].dist == results[j].dist {
			return results[i].val < results[j].val
		}
		return results[i].dist < results[j].dist
	})

	out := make([]string, 0, 2)
	for _, r := range results {
		if len(out) == 2 {
			break
		}
		out = append(out, r.val)
	}
	return out
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = `"` + v + `"`
	}
	return out
}
