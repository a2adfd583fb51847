package approvals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// Notifier delivers a push message to a staff member. Delivery is strictly
// best-effort: callers log failures and move on, a lost notification never
// fails the state transition it announces.
type Notifier interface {
	Send(recipientID, title, body string, metadata map[string]string) error
}

// WebhookNotifier posts messages to the push-gateway URL in
// NOTIFY_WEBHOOK_URL.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

func (n *WebhookNotifier) Send(recipientID, title, body string, metadata map[string]string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"recipient_id": recipientID,
		"title":        title,
		"body":         body,
		"metadata":     metadata,
	})
	if err != nil {
		return err
	}

	resp, err := n.Client.Post(n.URL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned %d", resp.StatusCode)
	}
	return nil
}

// logNotifier is the fallback when no gateway is configured (local dev).
type logNotifier struct{}

func (logNotifier) Send(recipientID, title, body string, metadata map[string]string) error {
	log.Printf("Notify %s: %s — %s", recipientID, title, body)
	return nil
}

var notifier Notifier = logNotifier{}

func initNotifier() {
	if url := os.Getenv("NOTIFY_WEBHOOK_URL"); url != "" {
		notifier = &WebhookNotifier{
			URL:    url,
			Client: &http.Client{Timeout: 5 * time.Second},
		}
	}
}

// notify fires-and-forgives: errors are logged and swallowed.
func notify(recipientID, title, body string, metadata map[string]string) {
	if err := notifier.Send(recipientID, title, body, metadata); err != nil {
		log.Printf("Notification to %s failed (ignored): %v", recipientID, err)
	}
}
