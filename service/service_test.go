package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/scenegen/scene"
)

func TestExpandRequest_Initial(t *testing.T) {
	assert.True(t, ExpandRequest{}.Initial())
	assert.False(t, ExpandRequest{ContainerName: "desk"}.Initial())
}

func TestExpandPrompt_InitialWording(t *testing.T) {
	prompt := ExpandPrompt(ExpandRequest{
		Scene: scene.Context{Script: "a heist gone wrong", Requirement: "the getaway car"},
	})

	assert.Contains(t, prompt, "main elements")
	assert.Contains(t, prompt, "[Script] a heist gone wrong")
	assert.Contains(t, prompt, "[Requirement] the getaway car")
	assert.NotContains(t, prompt, "[Era]")
}

func TestExpandPrompt_ContainerContext(t *testing.T) {
	prompt := ExpandPrompt(ExpandRequest{
		Scene:         scene.Context{Script: "a study", Requirement: "furnish it", Era: "victorian"},
		ContainerName: "desk",
		ContainerType: scene.ContainerPhysical,
		Description:   "a heavy oak desk",
		Theme:         "contents of desk",
		Level:         1,
		Ancestors:     []string{"study", "desk"},
		Siblings:      []string{"pen", "inkwell"},
	})

	assert.Contains(t, prompt, "Name: desk")
	assert.Contains(t, prompt, "Kind: physical")
	assert.Contains(t, prompt, "Depth: 1")
	assert.Contains(t, prompt, "Path: study > desk")
	assert.Contains(t, prompt, "do not repeat): pen, inkwell")
	assert.Contains(t, prompt, "[Era] victorian")
}

func TestAnalyzePrompt(t *testing.T) {
	prompt := AnalyzePrompt(AnalyzeRequest{
		Scene:    scene.Context{Script: "a study", Requirement: "furnish it"},
		Snapshot: "ab12cd34: desk [container/physical]\n",
		Round:    3,
	})

	assert.Contains(t, prompt, "round 3")
	assert.Contains(t, prompt, "ab12cd34: desk")
	assert.Contains(t, prompt, "completeness_score")
}

func TestContextLines_OmitsEmptyFields(t *testing.T) {
	lines := ContextLines(scene.Context{Script: "s", Requirement: "r", Atmosphere: "gloomy"})

	assert.Equal(t, "[Script] s\n[Requirement] r\n[Atmosphere] gloomy", lines)
}

func TestServiceError(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := NewRetryableError(OpExpand, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "expand")
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(NewPermanentError(OpAnalyze, cause)))
}

func TestIsRetryable_ContextErrors(t *testing.T) {
	// A cancelled run must not be retried; a per-call deadline may be.
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(NewRetryableError(OpExpand, context.Canceled)))
	assert.True(t, IsRetryable(NewRetryableError(OpExpand, context.DeadlineExceeded)))
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("unclassified")))
}

func TestMockService_CannedResponses(t *testing.T) {
	m := NewMockService()
	m.AddExpandResponse("desk", `{"nodes": [{"name": "pen", "node_type": "item"}]}`)

	raw, err := m.Expand(context.Background(), ExpandRequest{ContainerName: "desk"})
	require.NoError(t, err)
	assert.Contains(t, raw, "pen")

	// Unknown containers fall back to an empty node list.
	raw, err = m.Expand(context.Background(), ExpandRequest{ContainerName: "mystery"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes": []}`, raw)

	assert.Equal(t, 2, m.ExpandCalls())
}

func TestMockService_FailExpandTimes(t *testing.T) {
	m := NewMockService()
	wantErr := NewRetryableError(OpExpand, fmt.Errorf("flaky"))
	m.FailExpandTimes("desk", 2, wantErr)
	m.AddExpandResponse("desk", `{"nodes": []}`)

	for i := 0; i < 2; i++ {
		_, err := m.Expand(context.Background(), ExpandRequest{ContainerName: "desk"})
		assert.ErrorIs(t, err, wantErr)
	}
	_, err := m.Expand(context.Background(), ExpandRequest{ContainerName: "desk"})
	assert.NoError(t, err)
}

func TestMockService_TracksInFlight(t *testing.T) {
	m := NewMockService()
	m.SetDelay(10 * time.Millisecond)

	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = m.Expand(context.Background(), ExpandRequest{ContainerName: "x"})
		}()
	}
	for i := 0; i < 3; i++ {
		<-done
	}

	assert.Equal(t, 3, m.ExpandCalls())
	assert.GreaterOrEqual(t, m.MaxInFlight(), 1)
	assert.LessOrEqual(t, m.MaxInFlight(), 3)
}

func TestMockService_AnalyzeDefaults(t *testing.T) {
	m := NewMockService()

	raw, err := m.Analyze(context.Background(), AnalyzeRequest{Round: 1})
	require.NoError(t, err)
	assert.Contains(t, raw, "completeness_score")
	assert.Contains(t, raw, "100")

	m.AddAnalyzeResponse(2, `{"completeness_score": 40}`)
	raw, err = m.Analyze(context.Background(), AnalyzeRequest{Round: 2})
	require.NoError(t, err)
	assert.Contains(t, raw, "40")
	assert.Equal(t, 2, m.AnalyzeCalls())
}

func TestSystemPromptSchema(t *testing.T) {
	for _, field := range []string{"node_type", "container_type", "should_expand", "attributes"} {
		if !strings.Contains(SystemPrompt, field) {
			t.Errorf("system prompt does not describe %q", field)
		}
	}
}
