package zoho

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/models"
)

func record() models.NormalizedLeadRecord {
	return models.NormalizedLeadRecord{
		Name:         "Jane Doe",
		EmailAddress: "jane@x.com",
		PhoneNumber:  "'+15550100",
		LeadDetails:  "notes: Urgent",
		LeadSource:   "Direct",
	}
}

func TestUpsertFromRecord_CreatesWhenNoMatch(t *testing.T) {
	var created Contact
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/Contacts/search":
			assert.Equal(t, "jane@x.com", r.URL.Query().Get("email"))
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/Contacts" && r.Method == http.MethodPost:
			var body struct {
				Data []Contact `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.Data, 1)
			created = body.Data[0]
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]interface{}{
					{"status": "success", "details": map[string]string{"id": "z1"}},
				},
			})
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewCRMClient("key", "token").WithBaseURL(srv.URL)
	id, err := client.UpsertFromRecord(context.Background(), record())

	require.NoError(t, err)
	assert.Equal(t, "z1", id)
	assert.Equal(t, "Jane", created.FirstName)
	assert.Equal(t, "Doe", created.LastName)
	// Apostrophe prefix is a spreadsheet artifact, not part of the number.
	assert.Equal(t, "+15550100", created.Phone)
	assert.Equal(t, "notes: Urgent", created.Description)
}

func TestUpsertFromRecord_UpdatesExisting(t *testing.T) {
	updated := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/Contacts/search":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []Contact{{ID: "z9", Email: "jane@x.com"}},
			})
		case r.URL.Path == "/Contacts/z9" && r.Method == http.MethodPut:
			updated = true
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewCRMClient("key", "token").WithBaseURL(srv.URL)
	id, err := client.UpsertFromRecord(context.Background(), record())

	require.NoError(t, err)
	assert.Equal(t, "z9", id)
	assert.True(t, updated)
}

func TestUpsertFromRecord_NoEmailSkipsSearch(t *testing.T) {
	searched := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/Contacts/search" {
			searched = true
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"status": "success", "details": map[string]string{"id": "z2"}},
			},
		})
	}))
	defer srv.Close()

	rec := record()
	rec.EmailAddress = "No Email"

	client := NewCRMClient("key", "token").WithBaseURL(srv.URL)
	_, err := client.UpsertFromRecord(context.Background(), rec)

	require.NoError(t, err)
	assert.False(t, searched)
}

func TestUpsertFromRecord_APIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewCRMClient("key", "token").WithBaseURL(srv.URL)
	_, err := client.UpsertFromRecord(context.Background(), record())

	require.Error(t, err)
	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeCRMSyncFailed, stdErr.Code)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"Cher", "", "Cher"},
		{"Mary Jane Watson", "Mary Jane", "Watson"},
		{"Unknown", "", "Unknown"},
		{"", "", "Unknown"},
	}
	for _, tt := range tests {
		first, last := splitName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}
