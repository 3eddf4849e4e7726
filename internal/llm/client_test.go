package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	client, err := NewGeminiClient(context.Background(), DefaultConfig(), "")
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "openai"}, "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestExtractTextFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("\"Hi Ada, "), genai.Text("loved your work.\"")}},
		}},
	}

	text, err := extractTextFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada, loved your work.", text)
}

func TestExtractTextFromResponse_Empty(t *testing.T) {
	_, err := extractTextFromResponse(&genai.GenerateContentResponse{})
	require.Error(t, err)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	require.Error(t, err)

	_, err = extractTextFromResponse(nil)
	require.Error(t, err)
}

func TestExtractTextFromResponse_BlockedPrompt(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
	}

	_, err := extractTextFromResponse(resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestExtractTextFromResponse_SafetyFinish(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}

	_, err := extractTextFromResponse(resp)
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestExtractTextFromResponse_NonTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png", Data: []byte{1}}}},
		}},
	}

	_, err := extractTextFromResponse(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text in response")
}

func TestNewLimiter(t *testing.T) {
	unlimited := newLimiter(0)
	assert.Equal(t, rate.Inf, unlimited.Limit())

	throttled := newLimiter(60)
	assert.InDelta(t, 1.0, float64(throttled.Limit()), 1e-9)
	assert.Equal(t, 1, throttled.Burst())
}
