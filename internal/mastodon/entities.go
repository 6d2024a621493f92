package mastodon

import "time"

// Account is the subset of Mastodon account fields used by the app.
type Account struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Acct        string `json:"acct"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
	Bot         bool   `json:"bot"`
}

type Mention struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Acct     string `json:"acct"`
	URL      string `json:"url"`
}

type Tag struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type MediaAttachment struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	PreviewURL  string `json:"preview_url"`
	RemoteURL   string `json:"remote_url"`
	Description string `json:"description"`
}

// Status is a post. Engagement flags are nullable on the wire; a missing flag
// decodes as false.
type Status struct {
	ID                 string            `json:"id"`
	URI                string            `json:"uri"`
	URL                string            `json:"url"`
	CreatedAt          time.Time         `json:"created_at"`
	Account            Account           `json:"account"`
	Content            string            `json:"content"`
	SpoilerText        string            `json:"spoiler_text"`
	Visibility         string            `json:"visibility"`
	Sensitive          bool              `json:"sensitive"`
	InReplyToID        string            `json:"in_reply_to_id"`
	InReplyToAccountID string            `json:"in_reply_to_account_id"`
	Reblog             *Status           `json:"reblog"`
	Mentions           []Mention         `json:"mentions"`
	Tags               []Tag             `json:"tags"`
	MediaAttachments   []MediaAttachment `json:"media_attachments"`
	RepliesCount       int               `json:"replies_count"`
	ReblogsCount       int               `json:"reblogs_count"`
	FavouritesCount    int               `json:"favourites_count"`
	Favourited         bool              `json:"favourited"`
	Reblogged          bool              `json:"reblogged"`
	Bookmarked         bool              `json:"bookmarked"`
}

// Original returns the reblogged status for a reblog wrapper, or s itself.
func (s *Status) Original() *Status {
	if s == nil {
		return nil
	}
	if s.Reblog != nil {
		return s.Reblog
	}
	return s
}

// Context is the reply chain around one status.
type Context struct {
	Ancestors   []Status `json:"ancestors"`
	Descendants []Status `json:"descendants"`
}

type NotificationType string

const (
	NotificationReply                NotificationType = "reply"
	NotificationFavourite            NotificationType = "favourite"
	NotificationMention              NotificationType = "mention"
	NotificationReblog               NotificationType = "reblog"
	NotificationFollow               NotificationType = "follow"
	NotificationFollowRequest        NotificationType = "follow_request"
	NotificationModerationWarning    NotificationType = "moderation_warning"
	NotificationSeveredRelationships NotificationType = "severed_relationships"
	NotificationStatus               NotificationType = "status"
	NotificationPoll                 NotificationType = "poll"
	NotificationUpdate               NotificationType = "update"
	NotificationAdminSignUp          NotificationType = "admin.sign_up"
	NotificationAdminReport          NotificationType = "admin.report"
)

// KnownNotificationTypes lists every type tag the client understands.
var KnownNotificationTypes = []NotificationType{
	NotificationReply,
	NotificationFavourite,
	NotificationMention,
	NotificationReblog,
	NotificationFollow,
	NotificationFollowRequest,
	NotificationModerationWarning,
	NotificationSeveredRelationships,
	NotificationStatus,
	NotificationPoll,
	NotificationUpdate,
	NotificationAdminSignUp,
	NotificationAdminReport,
}

func (t NotificationType) Known() bool {
	for _, known := range KnownNotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
	Account   Account          `json:"account"`
	Status    *Status          `json:"status"`
}

// Application is the response of POST /api/v1/apps.
type Application struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Website      string `json:"website"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}
