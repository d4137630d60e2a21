// Package notify turns committed events into human readable messages and
// delivers them on a best effort basis.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"engboard/internal/events"
)

// UserAgent identifies outgoing webhook calls.
const UserAgent = "engboard notifier"

// Notification is the rendered form of an event.
type Notification struct {
	Kind      events.Kind `json:"kind"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// Render builds the notification for ev.
func Render(ev events.Event) Notification {
	n := Notification{Kind: ev.Kind, Timestamp: ev.At}
	a := ev.Attrs
	switch ev.Kind {
	case events.SprintRescheduled:
		n.Title = "Sprint deadline extended"
		n.Message = fmt.Sprintf("Sprint %q moved from %s to %s by %s: %s",
			a["name"], a["old_end_date"], a["new_end_date"], ev.ActorID, a["reason"])
	case events.SprintStatusChanged:
		n.Title = "Sprint status changed"
		n.Message = fmt.Sprintf("Sprint %q is now %s (was %s)", a["name"], a["to"], a["from"])
	case events.SprintCreated:
		n.Title = "Sprint planned"
		n.Message = fmt.Sprintf("Sprint %q planned until %s", a["name"], a["end_date"])
	case events.SprintDeleted:
		n.Title = "Sprint deleted"
		n.Message = fmt.Sprintf("Sprint %q and its extension history were removed by %s", a["name"], ev.ActorID)
	case events.TaskCreated:
		n.Title = "New task assigned"
		n.Message = fmt.Sprintf("Task %q assigned to %s", a["title"], a["assigned_to"])
	case events.TaskMoved:
		n.Title = "Task moved"
		n.Message = fmt.Sprintf("Task %q moved from %s to %s", a["title"], a["from"], a["to"])
	case events.TaskDeleted:
		n.Title = "Task deleted"
		n.Message = fmt.Sprintf("Task %q was removed by %s", a["title"], ev.ActorID)
	case events.SprintDeadlineAlert:
		n.Title = "Sprint deadline approaching"
		if a["urgency"] == "OVERDUE" {
			n.Title = "Sprint overdue"
		}
		n.Message = fmt.Sprintf("Sprint %q ends %s (%s days remaining)", a["name"], a["end_date"], a["days_remaining"])
	case events.TaskDeadlineAlert:
		n.Title = "Task deadline approaching"
		n.Message = fmt.Sprintf("Task %q assigned to %s is due %s (%s days remaining)",
			a["title"], a["assigned_to"], a["due_date"], a["days_remaining"])
	case events.ProjectMilestoneChange:
		n.Title = "Milestone updated"
		n.Message = fmt.Sprintf("Milestone %q of project %s is %s", a["label"], ev.EntityID, a["status"])
	default:
		n.Title = "Update"
		n.Message = fmt.Sprintf("%s on %s", ev.Kind, ev.EntityID)
	}
	return n
}

// LogNotifier writes every notification to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier backed by logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Handle logs the rendered notification.
func (n *LogNotifier) Handle(_ context.Context, ev events.Event) error {
	msg := Render(ev)
	n.logger.Info("notification", "kind", msg.Kind, "title", msg.Title, "message", msg.Message)
	return nil
}

// Error is returned when the webhook answers with a non-2xx status.
type Error struct {
	Code   int
	Status string
	Detail []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("webhook responded %s: %s", e.Status, e.Detail)
}

// WebhookNotifier posts notifications as JSON to a fixed URL.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

// NewWebhookNotifier creates a notifier posting to url with the given timeout.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", UserAgent)
	return &WebhookNotifier{client: c, url: url}
}

// Handle delivers the rendered notification.
func (n *WebhookNotifier) Handle(ctx context.Context, ev events.Event) error {
	res, err := n.client.R().
		SetContext(ctx).
		SetBody(Render(ev)).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	if res.IsError() {
		return &Error{Code: res.StatusCode(), Status: res.Status(), Detail: res.Body()}
	}
	return nil
}
