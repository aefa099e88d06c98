package quiz

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

// The Question JSON field names are a contract with the generation
// collaborator; a round trip through the wire shape must be lossless for
// every question kind.
func TestQuestionWireRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		q    Question
	}{
		{"mcq", Question{
			Prompt:        "What does the mitochondrion do?",
			Options:       []string{"A) Stores DNA", "B) Produces ATP", "C) Builds proteins", "D) Digests waste"},
			CorrectAnswer: "B",
			Explanation:   "The mitochondrion is the site of cellular respiration.",
		}},
		{"true_false", Question{
			Prompt:        "Osmosis requires energy input.",
			CorrectAnswer: "False",
			Explanation:   "Osmosis is passive diffusion of water.",
		}},
		{"essay", Question{
			Prompt:          "Explain how light intensity affects photosynthesis.",
			KeyPoints:       []string{"light-dependent reactions", "rate plateau", "limiting factors"},
			SuggestedLength: "2-3 paragraphs",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(tc.q)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var back Question
			if err := json.Unmarshal(raw, &back); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(tc.q, back) {
				t.Fatalf("round trip changed the question:\n in  %+v\n out %+v", tc.q, back)
			}
		})
	}
}

func TestQuestionWireFieldNames(t *testing.T) {
	raw, err := json.Marshal(Question{
		Prompt:        "2+2?",
		Options:       []string{"A) 3", "B) 4", "C) 5", "D) 6"},
		CorrectAnswer: "B",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(raw)
	for _, key := range []string{`"question"`, `"options"`, `"correct_answer"`} {
		if !strings.Contains(s, key) {
			t.Fatalf("wire shape missing %s: %s", key, s)
		}
	}
	if strings.Contains(s, `"prompt"`) {
		t.Fatalf("prompt must serialize under the question key: %s", s)
	}
}
