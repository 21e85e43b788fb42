package rewriting

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// mockClient returns scripted responses in order and records prompts
type mockClient struct {
	responses []string
	err       error
	prompts   []string
	tiers     []llm.ModelTier
}

func (m *mockClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return m.GenerateJSON(ctx, prompt, tier)
}

func (m *mockClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.tiers = append(m.tiers, tier)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func (m *mockClient) EmbedContent(context.Context, string) ([]float32, error) {
	return nil, errors.New("not used")
}

func (m *mockClient) GetModel(tier llm.ModelTier) string { return string(tier) }

func (m *mockClient) Close() error { return nil }

func baseResume() *types.ResumeDocument {
	return &types.ResumeDocument{
		Contact: types.ContactInfo{Name: "Jane Doe"},
		Summary: "Backend engineer.",
		Experience: []types.Experience{
			{Title: "Engineer", Company: "Acme", Achievements: []string{"Built services in Go"}},
		},
		Skills:    types.Skills{Flat: "Go, PostgreSQL"},
		Education: []types.Education{{Degree: "BSc", Institution: "State University"}},
	}
}

func revisedJSON(t *testing.T, mutate func(*types.ResumeDocument)) string {
	t.Helper()
	r := baseResume()
	r.Summary = "Backend engineer building Go and gRPC services on Kubernetes."
	if mutate != nil {
		mutate(r)
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	return string(data)
}

func TestRevise_Success(t *testing.T) {
	client := &mockClient{responses: []string{"Here you go:\n```json\n" + revisedJSON(t, nil) + "\n```"}}
	reviser := NewReviser(client, "Senior Go engineer, must know Kubernetes")

	current := baseResume()
	revised, err := reviser.Revise(context.Background(), current, "Add kubernetes")
	require.NoError(t, err)

	assert.Contains(t, revised.Summary, "Kubernetes")
	assert.Equal(t, "Backend engineer.", current.Summary, "input must not be modified")
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Senior Go engineer, must know Kubernetes")
	assert.Contains(t, client.prompts[0], "Add kubernetes")
	assert.Contains(t, client.prompts[0], `"summary": "Backend engineer."`)
	assert.Equal(t, llm.TierAdvanced, client.tiers[0])
}

func TestRevise_EmptyFeedbackPlaceholder(t *testing.T) {
	client := &mockClient{responses: []string{revisedJSON(t, nil)}}
	_, err := NewReviser(client, "jd").Revise(context.Background(), baseResume(), "  ")
	require.NoError(t, err)
	assert.Contains(t, client.prompts[0], "(no feedback)")
}

func TestRevise_APIError(t *testing.T) {
	client := &mockClient{err: errors.New("quota exceeded")}
	_, err := NewReviser(client, "jd").Revise(context.Background(), baseResume(), "fb")

	var apiErr *APICallError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestRevise_NilClientAndResume(t *testing.T) {
	_, err := NewReviser(nil, "jd").Revise(context.Background(), baseResume(), "fb")
	var apiErr *APICallError
	assert.True(t, errors.As(err, &apiErr))

	_, err = NewReviser(&mockClient{}, "jd").Revise(context.Background(), nil, "fb")
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestRevise_RepairsMalformedOutput(t *testing.T) {
	client := &mockClient{responses: []string{
		`{"summary": "missing everything else"}`,
		revisedJSON(t, nil),
	}}

	revised, err := NewReviser(client, "jd").Revise(context.Background(), baseResume(), "fb")
	require.NoError(t, err)
	assert.NotNil(t, revised)
	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[1], "could not be accepted")
	assert.Contains(t, client.prompts[1], `{"summary": "missing everything else"}`)
}

func TestRevise_GivesUpAfterRepairAttempts(t *testing.T) {
	client := &mockClient{responses: []string{"not json", "still not json", "never sent"}}

	_, err := NewReviser(client, "jd", WithRepairAttempts(1)).Revise(context.Background(), baseResume(), "fb")
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Len(t, client.prompts, 2)
}

func TestRevise_NoRepair(t *testing.T) {
	client := &mockClient{responses: []string{"not json"}}

	_, err := NewReviser(client, "jd", WithRepairAttempts(0)).Revise(context.Background(), baseResume(), "fb")
	require.Error(t, err)
	assert.Len(t, client.prompts, 1)
}

func TestRevise_RejectsChangedFacts(t *testing.T) {
	output := revisedJSON(t, func(r *types.ResumeDocument) {
		r.Experience[0].Company = "Globex"
	})
	client := &mockClient{responses: []string{output}}

	_, err := NewReviser(client, "jd").Revise(context.Background(), baseResume(), "fb")
	var guardErr *GuardError
	require.True(t, errors.As(err, &guardErr))
	assert.Len(t, guardErr.Violations, 2)

	client = &mockClient{responses: []string{output}}
	_, err = NewReviser(client, "jd", WithFactCheck(false)).Revise(context.Background(), baseResume(), "fb")
	assert.NoError(t, err)
}

func TestRevise_RejectsForbiddenPhrases(t *testing.T) {
	output := revisedJSON(t, func(r *types.ResumeDocument) {
		r.Summary = "Rockstar ninja engineer."
	})
	client := &mockClient{responses: []string{output}}

	_, err := NewReviser(client, "jd", WithForbiddenPhrases([]string{"ninja"})).Revise(context.Background(), baseResume(), "fb")
	var guardErr *GuardError
	require.True(t, errors.As(err, &guardErr))
	assert.Equal(t, []string{"forbidden phrase ninja in summary"}, guardErr.Violations)
}

func TestRevise_WithTier(t *testing.T) {
	client := &mockClient{responses: []string{revisedJSON(t, nil)}}
	_, err := NewReviser(client, "jd", WithTier(llm.TierStandard)).Revise(context.Background(), baseResume(), "fb")
	require.NoError(t, err)
	assert.Equal(t, llm.TierStandard, client.tiers[0])
}

func TestParseResume(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		wantErr bool
	}{
		{"valid", revisedJSON(t, nil), false},
		{"empty", "   ", true},
		{"markup in summary", revisedJSON(t, func(r *types.ResumeDocument) { r.Summary = "**Bold** claims" }), true},
		{"missing contact name", revisedJSON(t, func(r *types.ResumeDocument) { r.Contact.Name = "" }), true},
		{"no experience", revisedJSON(t, func(r *types.ResumeDocument) { r.Experience = []types.Experience{} }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume, err := ParseResume(tt.output)
			if tt.wantErr {
				var parseErr *ParseError
				assert.True(t, errors.As(err, &parseErr))
				assert.Nil(t, resume)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Jane Doe", resume.Contact.Name)
		})
	}
}
