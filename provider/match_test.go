package provider

import (
	"math"
	"testing"

	"github.com/adampisula/musicdl-server/model"
)

func TestCalculateSimilarity(t *testing.T) {
	target := model.TrackMetadata{
		Artists:         []string{"A"},
		Title:           "Song",
		IsRemix:         false,
		DurationSeconds: 200,
	}

	tests := []struct {
		name              string
		candidateDuration int
		preferExtended    bool
		want              float64
	}{
		{
			name:              "exact duration, default weights",
			candidateDuration: 200,
			preferExtended:    false,
			want:              1.0, // 1*0.7 + 1*0.3
		},
		{
			name:              "exact duration, prefer extended",
			candidateDuration: 200,
			preferExtended:    true,
			want:              1.0, // 1*0.2 + 1*0.8
		},
		{
			// Duration differing by exactly the target duration puts the
			// duration term at 0, not negative or an error.
			name:              "difference equal to target duration",
			candidateDuration: 400,
			preferExtended:    false,
			want:              0.3, // 0*0.7 + 1*0.3
		},
		{
			// The duration term is intentionally unclamped below zero.
			name:              "difference exceeding target duration goes negative",
			candidateDuration: 700,
			preferExtended:    false,
			want:              -0.75, // (1 - 500/200)*0.7 + 0.3
		},
		{
			name:              "half duration, prefer extended",
			candidateDuration: 100,
			preferExtended:    true,
			want:              0.9, // 0.5*0.2 + 1*0.8
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateSimilarity(target, tt.candidateDuration, tt.preferExtended)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("calculateSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Title comparison is a stub: any candidate duration still earns the full
// title weight. Kept as documented behavior until a real text metric exists.
func TestCalculateSimilarityTitleIsConstant(t *testing.T) {
	target := model.TrackMetadata{Title: "Completely Different", DurationSeconds: 100}
	got := calculateSimilarity(target, 100, false)
	if got != 1.0 {
		t.Errorf("score = %v, want 1.0 regardless of title text", got)
	}
}

func TestDedupeLinks(t *testing.T) {
	tests := []struct {
		name  string
		input []model.Link
		want  []model.Link
	}{
		{
			name:  "empty",
			input: nil,
			want:  []model.Link{},
		},
		{
			name: "duplicate URL keeps highest score",
			input: []model.Link{
				{Link: "https://youtu.be/x", Similarity: 0.3},
				{Link: "https://youtu.be/x", Similarity: 0.7},
			},
			want: []model.Link{
				{Link: "https://youtu.be/x", Similarity: 0.7},
			},
		},
		{
			name: "distinct URLs sorted descending",
			input: []model.Link{
				{Link: "https://youtu.be/a", Similarity: 0.6},
				{Link: "https://youtu.be/b", Similarity: 0.9},
				{Link: "https://youtu.be/c", Similarity: 0.7},
			},
			want: []model.Link{
				{Link: "https://youtu.be/b", Similarity: 0.9},
				{Link: "https://youtu.be/c", Similarity: 0.7},
				{Link: "https://youtu.be/a", Similarity: 0.6},
			},
		},
		{
			name: "mixed duplicates and uniques",
			input: []model.Link{
				{Link: "https://youtu.be/a", Similarity: 0.55},
				{Link: "https://youtu.be/b", Similarity: 0.95},
				{Link: "https://youtu.be/a", Similarity: 0.8},
			},
			want: []model.Link{
				{Link: "https://youtu.be/b", Similarity: 0.95},
				{Link: "https://youtu.be/a", Similarity: 0.8},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedupeLinks(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("dedupeLinks() returned %d links, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("dedupeLinks()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
