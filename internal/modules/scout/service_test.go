package scout

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"wayfarer/internal/extract"
	"wayfarer/internal/modules/interview"
)

type fakeLLM struct{ response string }

func (f *fakeLLM) Generate(_ context.Context, _ string, _ float32) (string, error) {
	return f.response, nil
}

func testProfile() *interview.TravelProfile {
	return &interview.TravelProfile{
		Summary:     "Loves parks and galleries",
		Destination: "Vienna",
		Constraints: interview.Constraints{Budget: 600, People: 2},
	}
}

func arrayOf(n int) string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"name":"Spot %d","short_description":"d","price_per_person":%d,"tags":["park"],"rationale":"r"}`, i, i)
	}
	b.WriteString("]")
	return b.String()
}

func TestGenerateCandidates_ExactBatch(t *testing.T) {
	svc := NewService(&fakeLLM{response: "Here you go:\n```json\n" + arrayOf(10) + "\n```"})
	items, err := svc.GenerateCandidates(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != CandidateCount {
		t.Fatalf("want %d items, got %d", CandidateCount, len(items))
	}
	if items[3].Name != "Spot 3" || items[3].PricePerPerson != 3 {
		t.Errorf("item 3 = %+v", items[3])
	}
}

func TestGenerateCandidates_ShortBatchRejected(t *testing.T) {
	svc := NewService(&fakeLLM{response: arrayOf(7)})
	_, err := svc.GenerateCandidates(context.Background(), testProfile())
	if extract.KindOf(errUnwrap(err)) != extract.CountMismatch {
		t.Fatalf("want CountMismatch, got %v", err)
	}
}

func TestFromObject_PriceResolution(t *testing.T) {
	tests := []struct {
		name  string
		obj   map[string]any
		want  float64
	}{
		{"numeric", map[string]any{"price_per_person": 12.5}, 12.5},
		{"string with currency", map[string]any{"price_per_person": "about 18 EUR"}, 18},
		{"negative clamped", map[string]any{"price_per_person": -5.0}, 0},
		{"missing, museum tag", map[string]any{"price_per_person": priceUnset, "tags": []any{"museum"}}, 15},
		{"missing, free tag", map[string]any{"price_per_person": priceUnset, "tags": []any{"free"}}, 0},
		{"missing, no tag hint", map[string]any{"price_per_person": priceUnset}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.obj["name"] = "x"
			if got := fromObject(tt.obj).PricePerPerson; got != tt.want {
				t.Errorf("price = %v, want %v", got, tt.want)
			}
		})
	}
}

// errUnwrap strips the scout's wrapping to reach the extraction error.
func errUnwrap(err error) error {
	for err != nil {
		if _, ok := err.(*extract.Error); ok {
			return err
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
	return nil
}
