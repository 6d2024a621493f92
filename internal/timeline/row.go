package timeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glabrego/fedi-cli/internal/mastodon"
)

// Row is the single record shape the table renders, whatever feed it came from.
// Status is nil for notifications that do not reference a post.
type Row struct {
	ID               string
	Author           string
	Status           *mastodon.Status
	NotificationType mastodon.NotificationType
	BoostedBy        string
	CreatedAt        time.Time
}

func (r Row) Content() string {
	if r.Status == nil {
		return ""
	}
	return r.Status.Content
}

func (r Row) IsReply() bool {
	return r.Status != nil && r.Status.InReplyToID != ""
}

func (r Row) URL() string {
	if r.Status == nil {
		return ""
	}
	if r.Status.URL != "" {
		return r.Status.URL
	}
	return r.Status.URI
}

func handle(a mastodon.Account) string {
	if a.Acct == "" {
		return ""
	}
	return "@" + a.Acct
}

// StatusToRow normalizes a status. A reblog wrapper contributes its ID and
// timestamp; everything else comes from the reblogged original.
func StatusToRow(s *mastodon.Status) Row {
	if s == nil {
		return Row{}
	}
	row := Row{ID: s.ID, CreatedAt: s.CreatedAt}
	original := s.Original()
	if original != s {
		row.BoostedBy = handle(s.Account)
	}
	row.Status = original
	row.Author = handle(original.Account)
	return row
}

func StatusesToRows(statuses []mastodon.Status) []Row {
	rows := make([]Row, len(statuses))
	for i := range statuses {
		rows[i] = StatusToRow(&statuses[i])
	}
	return rows
}

// NotificationsToRows attributes each row to the notifying account, not to the
// author of the embedded status.
func NotificationsToRows(notifications []mastodon.Notification) []Row {
	rows := make([]Row, len(notifications))
	for i, n := range notifications {
		rows[i] = Row{
			ID:               n.ID,
			Author:           handle(n.Account),
			Status:           n.Status,
			NotificationType: n.Type,
			CreatedAt:        n.CreatedAt,
		}
	}
	return rows
}

// ContextToRows splices ancestors, the focal status and descendants in the
// order the server returned them.
func ContextToRows(c mastodon.Context, focal *mastodon.Status) []Row {
	rows := make([]Row, 0, len(c.Ancestors)+1+len(c.Descendants))
	rows = append(rows, StatusesToRows(c.Ancestors)...)
	rows = append(rows, StatusToRow(focal))
	rows = append(rows, StatusesToRows(c.Descendants)...)
	return rows
}

func DecodeStatusRows(body []byte) ([]Row, error) {
	var statuses []mastodon.Status
	if err := json.Unmarshal(body, &statuses); err != nil {
		return nil, fmt.Errorf("decode statuses: %w", err)
	}
	return StatusesToRows(statuses), nil
}

func DecodeNotificationRows(body []byte) ([]Row, error) {
	var notifications []mastodon.Notification
	if err := json.Unmarshal(body, &notifications); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return NotificationsToRows(notifications), nil
}

func RowKey(r Row) string {
	return r.ID
}
