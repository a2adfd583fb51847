package approvals

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestWebhookNotifier_Send verifies the gateway payload shape and that a
// non-2xx response surfaces as an error.
func TestWebhookNotifier_Send(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := &WebhookNotifier{URL: srv.URL, Client: &http.Client{Timeout: time.Second}}
	err := n.Send("staff-1", "Leave request approved", "annual leave", map[string]string{"leave_id": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["recipient_id"] != "staff-1" {
		t.Errorf("expected recipient_id staff-1, got %v", got["recipient_id"])
	}
	if got["title"] != "Leave request approved" {
		t.Errorf("unexpected title %v", got["title"])
	}
}

func TestWebhookNotifier_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := &WebhookNotifier{URL: srv.URL, Client: &http.Client{Timeout: time.Second}}
	if err := n.Send("staff-1", "t", "b", nil); err == nil {
		t.Error("expected error on 502 from gateway")
	}
}

type failingNotifier struct{}

func (failingNotifier) Send(recipientID, title, body string, metadata map[string]string) error {
	return errors.New("gateway down")
}

// TestNotify_SwallowsFailures verifies a dead gateway never propagates out of
// notify; the state transition that triggered it must not be affected.
func TestNotify_SwallowsFailures(t *testing.T) {
	prev := notifier
	notifier = failingNotifier{}
	defer func() { notifier = prev }()

	// Must not panic or return anything.
	notify("staff-1", "title", "body", nil)
}
