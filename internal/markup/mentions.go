package markup

import (
	"sort"
	"strings"

	"room-client/internal/models"
)

// minimum sender role for each group mention
var groupMentions = map[string]models.Role{
	"everyone": models.RoleManager,
	"here":     models.RoleManager,
	"djs":      models.RoleModerator,
	"staff":    models.RoleModerator,
}

func IsGroupMention(name string) bool {
	_, ok := groupMentions[strings.ToLower(name)]
	return ok
}

// AvailableGroupMentions lists the group mentions user may use, sorted.
func AvailableGroupMentions(user *models.User) []string {
	if user == nil {
		return []string{}
	}
	out := []string{}
	for name, role := range groupMentions {
		if user.Role >= role {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Viewer is the identity mentions are checked against.
type Viewer struct {
	User       models.User
	InWaitlist bool
	IsDJ       bool
}

func (v Viewer) inGroup(group string) bool {
	switch group {
	case "everyone", "here":
		return true
	case "djs":
		return v.InWaitlist || v.IsDJ
	case "staff":
		return v.User.IsModerator()
	}
	return false
}

// IsMention reports whether tokens mention the viewer by name, or through a
// group the viewer belongs to and the sender is allowed to use.
func IsMention(tokens []models.TextToken, viewer *Viewer, sender *models.User) bool {
	if viewer == nil || viewer.User.Username == "" {
		return false
	}
	for _, tok := range tokens {
		switch tok.Kind {
		case models.TokenMention:
			if strings.EqualFold(tok.Value, viewer.User.Username) {
				return true
			}
		case models.TokenGroupMention:
			if sender == nil || sender.Role < groupMentions[tok.Value] {
				continue
			}
			if viewer.inGroup(tok.Value) {
				return true
			}
		}
	}
	return false
}
