package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_TypeAttributeIsAuthoritative(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())

	tests := []struct {
		name     string
		field    Field
		expected Category
	}{
		{
			name:     "email type wins regardless of name",
			field:    Field{Type: "email", Name: "contact"},
			expected: CategoryEmail,
		},
		{
			name:     "tel type beats contradictory name",
			field:    Field{Type: "tel", Name: "favorite-color"},
			expected: CategoryPhone,
		},
		{
			name:     "hidden type short-circuits heuristics",
			field:    Field{Type: "hidden", Name: "email_backup"},
			expected: CategoryHidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.field))
		})
	}
}

func TestClassify_ContextHeuristics(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())

	tests := []struct {
		name     string
		field    Field
		expected Category
	}{
		{"name attribute", Field{Type: "text", Name: "full_name"}, CategoryName},
		{"email in placeholder", Field{Type: "text", Placeholder: "Your Email"}, CategoryEmail},
		{"mail substring", Field{Type: "text", Name: "mailbox"}, CategoryEmail},
		{"whatsapp is a phone trigger", Field{Type: "text", Name: "whatsapp_number"}, CategoryPhone},
		{"label is part of the context", Field{Type: "text", Name: "f42", Label: "Mobile"}, CategoryPhone},
		{"company excluded from name", Field{Type: "text", Name: "company_name"}, CategoryUnknown},
		{"message textarea", Field{Type: "textarea", Name: "message"}, CategoryMessage},
		{"comment trigger", Field{Type: "text", ID: "comments"}, CategoryMessage},
		{"details trigger", Field{Type: "text", Name: "order-details"}, CategoryMessage},
		{"no trigger at all", Field{Type: "text", Name: "notes"}, CategoryUnknown},
		{"case insensitive matching", Field{Type: "text", Name: "EMAIL_ADDRESS"}, CategoryEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.field))
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())

	// "email" appears before the phone check, so a field whose context
	// contains both triggers resolves to email.
	got := c.Classify(Field{Type: "text", Name: "email_or_phone"})
	assert.Equal(t, CategoryEmail, got)
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(DefaultClassifierConfig())
	f := Field{Type: "text", Name: "contact_name", Placeholder: "Jane Doe"}

	first := c.Classify(f)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, c.Classify(f))
	}
}

func TestClassify_CustomKeywords(t *testing.T) {
	c := NewClassifier(ClassifierConfig{
		MessageKeywords: []string{"enquiry"},
	})

	assert.Equal(t, CategoryMessage, c.Classify(Field{Type: "text", Name: "enquiry_box"}))
	// Defaults still backfill the lists that were left empty.
	assert.Equal(t, CategoryEmail, c.Classify(Field{Type: "text", Name: "email"}))
}
