package models

import (
	"sort"
	"strings"
)

// DirectionHint indicates whether a relationship candidate has a detected
// key ("one") side. Candidates are normalized so the keyed side is always
// the target; when neither or both sides are keyed the hint stays
// undetermined.
type DirectionHint string

const (
	DirectionTarget       DirectionHint = "target"
	DirectionUndetermined DirectionHint = "undetermined"
)

// ValidDirectionHints contains all valid direction hint values.
var ValidDirectionHints = []DirectionHint{
	DirectionTarget,
	DirectionUndetermined,
}

// IsValidDirectionHint checks if the given hint is valid.
func IsValidDirectionHint(h DirectionHint) bool {
	for _, v := range ValidDirectionHints {
		if v == h {
			return true
		}
	}
	return false
}

// RelationshipCandidate is a scored hypothesis that two columns across two
// datasets are joinable. Candidates are advisory, never ground truth.
type RelationshipCandidate struct {
	SourceDataset string `json:"source_dataset" yaml:"source_dataset"`
	SourceColumn  string `json:"source_column" yaml:"source_column"`
	TargetDataset string `json:"target_dataset" yaml:"target_dataset"`
	TargetColumn  string `json:"target_column" yaml:"target_column"`

	// MatchStrength in [0,1] combines name similarity and value overlap.
	MatchStrength  float64 `json:"match_strength" yaml:"match_strength"`
	NameSimilarity float64 `json:"name_similarity" yaml:"name_similarity"`
	// ValueOverlap is the harmonic mean of the two directional distinct
	// value containment fractions.
	ValueOverlap float64 `json:"value_overlap" yaml:"value_overlap"`

	Direction DirectionHint `json:"direction" yaml:"direction"`
}

// PairKey returns the unordered deduplication key for the candidate's
// endpoint pair. Both orientations of the same column pair share a key.
func (c *RelationshipCandidate) PairKey() string {
	a := c.SourceDataset + "\x00" + c.SourceColumn
	b := c.TargetDataset + "\x00" + c.TargetColumn
	if a > b {
		a, b = b, a
	}
	return a + "\x1f" + b
}

// String renders the candidate for logs and diagram labels.
func (c *RelationshipCandidate) String() string {
	var sb strings.Builder
	sb.WriteString(c.SourceDataset)
	sb.WriteString(".")
	sb.WriteString(c.SourceColumn)
	sb.WriteString(" -> ")
	sb.WriteString(c.TargetDataset)
	sb.WriteString(".")
	sb.WriteString(c.TargetColumn)
	return sb.String()
}

// SortCandidates orders candidates by match strength descending, then by
// endpoint names for a deterministic tie-break.
func SortCandidates(candidates []RelationshipCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MatchStrength != candidates[j].MatchStrength {
			return candidates[i].MatchStrength > candidates[j].MatchStrength
		}
		return candidates[i].PairKey() < candidates[j].PairKey()
	})
}
