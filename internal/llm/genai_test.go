package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestGenaiAnswer(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, FallbackAnswer},
		{"no candidates", &genai.GenerateContentResponse{}, FallbackAnswer},
		{"nil candidate", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{nil}}, FallbackAnswer},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, FallbackAnswer},
		{
			"no parts",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
			FallbackAnswer,
		},
		{
			"empty text part",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{}}}}}},
			FallbackAnswer,
		},
		{
			"first part text",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
				{Text: "Exoplanets orbit other stars."},
				{Text: "ignored"},
			}}}}},
			"Exoplanets orbit other stars.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, genaiAnswer(tt.resp))
		})
	}
}
