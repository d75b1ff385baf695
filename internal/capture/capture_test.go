package capture

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-capture-workers/internal/common/logger"
)

func newTestOrchestrator() *Orchestrator {
	return NewOrchestrator(NewClassifier(DefaultClassifierConfig()), logger.NewTestLogger(), false)
}

func TestCapture_Exclusions(t *testing.T) {
	o := newTestOrchestrator()

	result := o.Capture([]Field{
		{Name: "password", Type: "password", Value: "hunter2"},
		{Name: "email", Type: "email", Value: "a@b.com", Disabled: true},
		{Name: "phone", Type: "tel", Value: "   "},
		{Name: "name", Type: "text", Value: "Jane"},
	})

	// Excluded fields appear nowhere, not even in the audit trail.
	require.Len(t, result.Observations, 1)
	assert.Equal(t, "name", result.Observations[0].Name)
	assert.Empty(t, result.Signals.Email)
	assert.Empty(t, result.Signals.Phone)
	assert.Equal(t, []string{"Jane"}, result.Signals.Name)
}

func TestCapture_HiddenIsAuditOnly(t *testing.T) {
	o := newTestOrchestrator()

	result := o.Capture([]Field{
		{Name: "utm_source", Type: "hidden", Value: "newsletter"},
	})

	require.Len(t, result.Observations, 1)
	assert.Equal(t, "hidden", result.Observations[0].InferredAs)
	assert.Empty(t, result.Signals.Name)
	assert.Empty(t, result.Signals.Email)
	assert.Empty(t, result.Signals.Phone)
	assert.Empty(t, result.Signals.Message)
}

func TestCapture_UnknownRoutedToMessageWithLabel(t *testing.T) {
	o := newTestOrchestrator()

	result := o.Capture([]Field{
		{Name: "notes", Type: "text", Value: "Urgent, Tier-1"},
	})

	assert.Equal(t, []string{"notes: Urgent, Tier-1"}, result.Signals.Message)

	// A visible label takes precedence over the name attribute.
	result = o.Capture([]Field{
		{Name: "f17", Type: "text", Label: "Anything else?", Value: "call after 5"},
	})
	assert.Equal(t, []string{"Anything else?: call after 5"}, result.Signals.Message)
}

func TestCapture_MessageFieldsKeepRawValue(t *testing.T) {
	o := newTestOrchestrator()

	result := o.Capture([]Field{
		{Name: "message", Type: "textarea", Value: "hello there"},
	})

	assert.Equal(t, []string{"hello there"}, result.Signals.Message)
}

func TestCapture_SignalKeysAlwaysPresent(t *testing.T) {
	o := newTestOrchestrator()

	result := o.Capture(nil)

	data, err := json.Marshal(result.Signals)
	require.NoError(t, err)
	for _, key := range []string{`"name":[]`, `"email":[]`, `"phone":[]`, `"message":[]`} {
		assert.Contains(t, string(data), key)
	}
	assert.NotContains(t, string(data), "null")
}

func TestCapture_ValuesTrimmed(t *testing.T) {
	o := newTestOrchestrator()

	result := o.Capture([]Field{
		{Name: "email", Type: "email", Value: "  jane@example.com  "},
	})

	assert.Equal(t, []string{"jane@example.com"}, result.Signals.Email)
	assert.Equal(t, "jane@example.com", result.Observations[0].Value)
}

func TestCapture_FullForm(t *testing.T) {
	o := newTestOrchestrator()

	result := o.Capture([]Field{
		{Name: "full_name", Type: "text", Value: "Jane Doe"},
		{Name: "email", Type: "email", Value: "jane@x.com"},
		{Name: "notes", Type: "text", Value: "Urgent, Tier-1"},
		{Name: "csrf", Type: "hidden", Value: "tok123"},
		{Name: "pw", Type: "password", Value: "secret"},
	})

	assert.Equal(t, []string{"Jane Doe"}, result.Signals.Name)
	assert.Equal(t, []string{"jane@x.com"}, result.Signals.Email)
	assert.Equal(t, []string{"notes: Urgent, Tier-1"}, result.Signals.Message)
	assert.Len(t, result.Observations, 4) // password excluded, hidden audited
}

func TestNewCorrelationID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewCorrelationID()
		assert.True(t, strings.HasPrefix(id, "gw_"))
		assert.False(t, seen[id], "correlation ids must not repeat")
		seen[id] = true
	}
}
