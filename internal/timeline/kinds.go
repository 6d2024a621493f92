package timeline

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type Kind string

const (
	Home          Kind = "home"
	Local         Kind = "local"
	Global        Kind = "global"
	Personal      Kind = "personal"
	Notifications Kind = "notifications"
	Bookmarks     Kind = "bookmarks"
)

const NotificationPageSize = 20

var Kinds = []Kind{Home, Local, Global, Notifications, Personal, Bookmarks}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown timeline %q", s)
}

func (k Kind) Title() string {
	switch k {
	case Home:
		return "Home"
	case Local:
		return "Local"
	case Global:
		return "Global"
	case Personal:
		return "Personal"
	case Notifications:
		return "Notifications"
	case Bookmarks:
		return "Bookmarks"
	default:
		return string(k)
	}
}

// Options carries the per-account inputs some timelines need.
type Options struct {
	AccountID         string
	NotificationTypes []string
}

// Open builds the cursor for a timeline kind. Nothing is fetched yet.
func Open(getter Getter, kind Kind, opts Options) (*Cursor[Row], error) {
	switch kind {
	case Home:
		return NewCursor(getter, "/api/v1/timelines/home", nil, DecodeStatusRows, RowKey), nil
	case Local:
		return NewCursor(getter, "/api/v1/timelines/public", url.Values{"local": {"true"}}, DecodeStatusRows, RowKey), nil
	case Global:
		return NewCursor(getter, "/api/v1/timelines/public", url.Values{"remote": {"true"}}, DecodeStatusRows, RowKey), nil
	case Personal:
		if opts.AccountID == "" {
			return nil, errors.New("personal timeline requires an account id")
		}
		endpoint := "/api/v1/accounts/" + url.PathEscape(opts.AccountID) + "/statuses"
		return NewCursor(getter, endpoint, nil, DecodeStatusRows, RowKey), nil
	case Notifications:
		query := url.Values{"limit": {fmt.Sprint(NotificationPageSize)}}
		for _, t := range opts.NotificationTypes {
			query.Add("types[]", t)
		}
		return NewCursor(getter, "/api/v1/notifications", query, DecodeNotificationRows, RowKey), nil
	case Bookmarks:
		return NewCursor(getter, "/api/v1/bookmarks", nil, DecodeStatusRows, RowKey), nil
	default:
		return nil, fmt.Errorf("unknown timeline %q", kind)
	}
}
