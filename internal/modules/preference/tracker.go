// README: Preference tracker merging utterances into the semantic profile.
package preference

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// DefaultMergeThreshold is the cosine similarity above which a new statement
// replaces an existing snippet of the same slot instead of being appended.
const DefaultMergeThreshold = 0.75

var sentenceSplitRe = regexp.MustCompile(`[.!?]\s+`)

// Tracker is the single mutation path for State.
type Tracker struct {
	classifier *Classifier
	threshold  float64
}

func NewTracker(classifier *Classifier, threshold float64) *Tracker {
	if threshold <= 0 {
		threshold = DefaultMergeThreshold
	}
	return &Tracker{classifier: classifier, threshold: threshold}
}

// Update folds one utterance into state: each sentence-like segment is
// embedded, classified into a slot, and either merged into its closest
// existing snippet (similarity above the threshold — refinement supersedes)
// or appended as a new snippet. Slot texts and the aggregate embedding are
// rebuilt afterwards. On embedding failure the state is left untouched.
func (t *Tracker) Update(ctx context.Context, state *State, utterance string) error {
	segments := splitSegments(utterance)
	if len(segments) == 0 {
		return nil
	}

	// Embed and classify everything up front so a mid-batch failure cannot
	// leave the state half-updated.
	type classified struct {
		text string
		vec  []float64
		slot SlotID
	}
	batch := make([]classified, 0, len(segments))
	for _, seg := range segments {
		vec, err := t.classifier.Embed(ctx, seg)
		if err != nil {
			return fmt.Errorf("embed segment: %w", err)
		}
		batch = append(batch, classified{text: seg, vec: vec, slot: t.classifier.Classify(vec)})
	}

	// Merge against snippets that existed before this turn; segments from the
	// same utterance never collapse into each other.
	existing := len(state.Snippets)
	var appended []Snippet
	for _, c := range batch {
		bestIdx := -1
		bestSim := -1.0
		for i := 0; i < existing; i++ {
			if state.Snippets[i].Slot != c.slot {
				continue
			}
			if sim := dot(c.vec, state.Snippets[i].Embedding); sim > bestSim {
				bestSim = sim
				bestIdx = i
			}
		}
		if bestIdx >= 0 && bestSim > t.threshold {
			state.Snippets[bestIdx].Text = c.text
			state.Snippets[bestIdx].Embedding = c.vec
		} else {
			appended = append(appended, Snippet{Text: c.text, Embedding: c.vec, Slot: c.slot})
		}
	}
	state.Snippets = append(state.Snippets, appended...)

	rebuildSlots(state)
	state.AggregateEmbedding = meanEmbedding(state.Snippets)
	state.TurnCount++
	return nil
}

// splitSegments cuts an utterance on terminal punctuation followed by
// whitespace, dropping empty pieces.
func splitSegments(text string) []string {
	parts := sentenceSplitRe.Split(strings.TrimSpace(text), -1)
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// rebuildSlots regenerates every slot string from scratch, concatenating
// snippet texts in arrival order.
func rebuildSlots(state *State) {
	for slot := range state.Slots {
		state.Slots[slot] = ""
	}
	for _, sn := range state.Snippets {
		if state.Slots[sn.Slot] == "" {
			state.Slots[sn.Slot] = sn.Text
		} else {
			state.Slots[sn.Slot] += " " + sn.Text
		}
	}
}

func meanEmbedding(snippets []Snippet) []float64 {
	if len(snippets) == 0 {
		return nil
	}
	dim := len(snippets[0].Embedding)
	mean := make([]float64, dim)
	for _, sn := range snippets {
		for i := 0; i < dim && i < len(sn.Embedding); i++ {
			mean[i] += sn.Embedding[i]
		}
	}
	for i := range mean {
		mean[i] /= float64(len(snippets))
	}
	return mean
}
