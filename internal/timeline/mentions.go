package timeline

import (
	"strings"

	"github.com/glabrego/fedi-cli/internal/mastodon"
)

// ReplyMentions returns the "@acct " prefix for a reply to s: the original
// author first, then every mentioned account, skipping self and duplicates.
// self may be a local acct ("alice") or a full one ("alice@example.social").
func ReplyMentions(s *mastodon.Status, self string) string {
	s = s.Original()
	if s == nil {
		return ""
	}
	accts := make([]string, 0, len(s.Mentions)+1)
	accts = append(accts, s.Account.Acct)
	for _, m := range s.Mentions {
		accts = append(accts, m.Acct)
	}

	var b strings.Builder
	seen := make(map[string]struct{}, len(accts))
	for _, acct := range accts {
		if acct == "" || sameAccount(acct, self) {
			continue
		}
		key := strings.ToLower(acct)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		b.WriteString("@")
		b.WriteString(acct)
		b.WriteString(" ")
	}
	return b.String()
}

func sameAccount(acct, self string) bool {
	if self == "" {
		return false
	}
	if strings.EqualFold(acct, self) {
		return true
	}
	local, _, ok := strings.Cut(self, "@")
	return ok && !strings.Contains(acct, "@") && strings.EqualFold(acct, local)
}
