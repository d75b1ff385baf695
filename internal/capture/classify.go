// internal/capture/classify.go
package capture

import "strings"

// Category is the semantic class inferred for one captured field.
type Category string

const (
	CategoryEmail   Category = "email"
	CategoryPhone   Category = "phone"
	CategoryName    Category = "name"
	CategoryMessage Category = "message"
	CategoryHidden  Category = "hidden"
	CategoryUnknown Category = "unknown"
)

// Field is the metadata of one form input as observed on the page. It is all
// the classifier ever sees; classification never touches the page itself.
type Field struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Disabled    bool   `json:"disabled"`
}

// ClassifierConfig holds the substring trigger lists. Deployed capture
// scripts historically diverged on the message triggers, so the lists are
// per-deployment configuration; the defaults are the superset of every
// variant seen in production.
type ClassifierConfig struct {
	EmailKeywords   []string
	PhoneKeywords   []string
	NameKeywords    []string
	NameExclusions  []string
	MessageKeywords []string
}

// DefaultClassifierConfig returns the superset trigger lists.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		EmailKeywords:   []string{"email", "mail"},
		PhoneKeywords:   []string{"phone", "mobile", "tel", "whatsapp"},
		NameKeywords:    []string{"name"},
		NameExclusions:  []string{"company"},
		MessageKeywords: []string{"message", "comment", "details"},
	}
}

// Classifier maps field metadata to a semantic category. It is a pure
// function of its input: deterministic, no side effects.
type Classifier struct {
	cfg ClassifierConfig
}

func NewClassifier(cfg ClassifierConfig) *Classifier {
	if len(cfg.EmailKeywords) == 0 {
		cfg.EmailKeywords = DefaultClassifierConfig().EmailKeywords
	}
	if len(cfg.PhoneKeywords) == 0 {
		cfg.PhoneKeywords = DefaultClassifierConfig().PhoneKeywords
	}
	if len(cfg.NameKeywords) == 0 {
		cfg.NameKeywords = DefaultClassifierConfig().NameKeywords
	}
	if len(cfg.NameExclusions) == 0 {
		cfg.NameExclusions = DefaultClassifierConfig().NameExclusions
	}
	if len(cfg.MessageKeywords) == 0 {
		cfg.MessageKeywords = DefaultClassifierConfig().MessageKeywords
	}
	return &Classifier{cfg: cfg}
}

// Classify applies the ordered rules; first match wins, which is the
// tie-break policy. A declared input type is authoritative and beats every
// text heuristic, so <input type="tel" name="favorite-color"> is a phone.
func (c *Classifier) Classify(f Field) Category {
	switch f.Type {
	case "email":
		return CategoryEmail
	case "tel":
		return CategoryPhone
	case "hidden":
		// Hidden fields are kept for the audit trail only; they never feed
		// semantic signals, since their values are not user-entered.
		return CategoryHidden
	}

	context := strings.ToLower(f.Name + " " + f.ID + " " + f.Placeholder + " " + f.Label)

	if containsAny(context, c.cfg.EmailKeywords) {
		return CategoryEmail
	}
	if containsAny(context, c.cfg.PhoneKeywords) {
		return CategoryPhone
	}
	if containsAny(context, c.cfg.NameKeywords) && !containsAny(context, c.cfg.NameExclusions) {
		return CategoryName
	}
	if containsAny(context, c.cfg.MessageKeywords) {
		return CategoryMessage
	}

	return CategoryUnknown
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
