// Package search finds nodes by display name. Exact, prefix and
// substring matches rank ahead of fuzzy matches, which are bounded by
// a configurable edit distance.
package search

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/terramesa/uplinkmap/internal/hierarchy"
)

// maxFuzzyDistance caps the configured edit distance; anything higher
// turns the scan into noise.
const maxFuzzyDistance = 3

// maxQueryLen truncates pathological queries before edit distances are
// computed.
const maxQueryLen = 100

// DefaultLimit bounds result counts when callers pass none.
const DefaultLimit = 20

const (
	rankExact = iota
	rankPrefix
	rankSubstring
	rankFuzzy
)

// Index holds the searchable nodes in a stable order.
type Index struct {
	nodes     []hierarchy.Node
	fuzziness int
}

// New builds a search index. fuzziness is the maximum edit distance
// for fuzzy hits, capped at 3; zero disables fuzzy matching entirely.
func New(nodes []hierarchy.Node, fuzziness int) *Index {
	if fuzziness < 0 {
		fuzziness = 0
	}
	if fuzziness > maxFuzzyDistance {
		fuzziness = maxFuzzyDistance
	}
	return &Index{nodes: append([]hierarchy.Node(nil), nodes...), fuzziness: fuzziness}
}

// Search returns nodes matching the query, best first: exact name
// matches, then prefixes, then substrings, then fuzzy matches ordered
// by edit distance. kind narrows the scan when set. limit <= 0 falls
// back to DefaultLimit.
func (ix *Index) Search(query string, kind hierarchy.Kind, limit int) []hierarchy.Node {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if runes := []rune(query); len(runes) > maxQueryLen {
		query = string(runes[:maxQueryLen])
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := strings.ToLower(query)

	type scored struct {
		node hierarchy.Node
		rank int
		dist int
	}
	var hits []scored
	for _, n := range ix.nodes {
		if kind != "" && n.Kind != kind {
			continue
		}
		name := strings.ToLower(n.Name)
		switch {
		case name == q:
			hits = append(hits, scored{node: n, rank: rankExact})
		case strings.HasPrefix(name, q):
			hits = append(hits, scored{node: n, rank: rankPrefix})
		case strings.Contains(name, q):
			hits = append(hits, scored{node: n, rank: rankSubstring})
		case ix.fuzziness > 0:
			if d := levenshtein.ComputeDistance(q, name); d <= ix.fuzziness {
				hits = append(hits, scored{node: n, rank: rankFuzzy, dist: d})
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		if a.node.Kind != b.node.Kind {
			return kindRank(a.node.Kind) < kindRank(b.node.Kind)
		}
		if a.node.Name != b.node.Name {
			return a.node.Name < b.node.Name
		}
		return a.node.ID < b.node.ID
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]hierarchy.Node, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.node)
	}
	return out
}

func kindRank(k hierarchy.Kind) int {
	switch k {
	case hierarchy.KindProvince:
		return 0
	case hierarchy.KindCity:
		return 1
	default:
		return 2
	}
}
