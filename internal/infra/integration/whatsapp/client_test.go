package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage_NotConfigured(t *testing.T) {
	_, err := NewClient("", "", "", nil).SendMessage(context.Background(), SendMessageInput{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendMessage_PostsTemplate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/123/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	id, err := NewClient(srv.URL, "tok", "123", nil).SendMessage(context.Background(), SendMessageInput{
		PhoneNumber:  "+15551234567",
		TemplateName: "waitlist_welcome",
		Parameters:   []string{"Ana", "https://workdora.com/?ref=ana_abc123"},
	})
	require.NoError(t, err)
	assert.Equal(t, "wamid.1", id)
	assert.Equal(t, "15551234567", got["to"])

	tmpl := got["template"].(map[string]any)
	assert.Equal(t, "waitlist_welcome", tmpl["name"])
	assert.Equal(t, "en_US", tmpl["language"].(map[string]any)["code"])
}

func TestSendMessage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","code":100}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "tok", "123", nil).SendMessage(context.Background(), SendMessageInput{PhoneNumber: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid parameter")
}
