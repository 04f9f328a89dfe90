package provider

import (
	"sort"

	"github.com/adampisula/musicdl-server/model"
)

// Similarity scoring for alternative-source candidates. Two weighted
// components, duration and title, combine into one score. Title comparison is
// a known limitation: it is a constant 1 until a real text metric lands.
const (
	similarityThreshold = 0.5
	autoMatchThreshold  = 0.98
)

// calculateSimilarity scores a candidate duration against the target
// metadata. The duration term is intentionally not clamped: a candidate whose
// duration differs by more than the target duration contributes negatively.
func calculateSimilarity(target model.TrackMetadata, candidateDurationSeconds int, preferExtended bool) float64 {
	var durationWeight, titleWeight float64
	if preferExtended {
		durationWeight = 0.2
		titleWeight = 0.8
	} else {
		durationWeight = 0.7
		titleWeight = 0.3
	}

	diff := float64(target.DurationSeconds - candidateDurationSeconds)
	if diff < 0 {
		diff = -diff
	}
	durationMatch := 1 - diff/float64(target.DurationSeconds)
	titleMatch := 1.0

	return durationMatch*durationWeight + titleMatch*titleWeight
}

// dedupeLinks removes duplicate URLs keeping the highest-scoring occurrence
// of each, and returns the result sorted by descending similarity.
func dedupeLinks(links []model.Link) []model.Link {
	sorted := make([]model.Link, len(links))
	copy(sorted, links)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Similarity < sorted[j].Similarity
	})

	// An entry is dropped when a later (higher or equal scoring) entry
	// shares its URL.
	kept := make([]model.Link, 0, len(sorted))
	for i, link := range sorted {
		duplicate := false
		for _, later := range sorted[i+1:] {
			if later.Link == link.Link {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, link)
		}
	}

	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}
