package store

import "room-client/internal/models"

type UsersState struct {
	Rev  uint64
	ByID map[string]models.User
}

func reduceUsers(s UsersState, in Intent) UsersState {
	switch in.Kind {
	case KindSetUsers:
		p, ok := in.Payload.(SetUsersPayload)
		if !ok {
			return s
		}
		return UsersState{Rev: s.Rev + 1, ByID: indexUsers(p.Users)}
	case KindLoadNow:
		p, ok := in.Payload.(models.NowResponse)
		if !ok {
			return s
		}
		users := p.Users
		if p.User != nil {
			users = append(users[:len(users):len(users)], *p.User)
		}
		return UsersState{Rev: s.Rev + 1, ByID: indexUsers(users)}
	case KindUserJoin:
		p, ok := in.Payload.(UserJoinPayload)
		if !ok || p.User.ID == "" {
			return s
		}
		byID := cloneUsers(s.ByID)
		byID[p.User.ID] = p.User
		return UsersState{Rev: s.Rev + 1, ByID: byID}
	case KindUserLeave:
		p, ok := in.Payload.(UserLeavePayload)
		if !ok {
			return s
		}
		if _, exists := s.ByID[p.UserID]; !exists {
			return s
		}
		byID := cloneUsers(s.ByID)
		delete(byID, p.UserID)
		return UsersState{Rev: s.Rev + 1, ByID: byID}
	case KindChangeUsername:
		p, ok := in.Payload.(ChangeUsernamePayload)
		if !ok {
			return s
		}
		return s.update(p.UserID, func(u *models.User) { u.Username = p.Username })
	case KindChangeRole:
		p, ok := in.Payload.(ChangeRolePayload)
		if !ok {
			return s
		}
		return s.update(p.UserID, func(u *models.User) { u.Role = p.Role })
	}
	return s
}

func (s UsersState) update(id string, fn func(*models.User)) UsersState {
	u, ok := s.ByID[id]
	if !ok {
		return s
	}
	fn(&u)
	byID := cloneUsers(s.ByID)
	byID[id] = u
	return UsersState{Rev: s.Rev + 1, ByID: byID}
}

func indexUsers(users []models.User) map[string]models.User {
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID
}

func cloneUsers(m map[string]models.User) map[string]models.User {
	out := make(map[string]models.User, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// AuthState is the viewer's own identity and bearer token.
type AuthState struct {
	Rev   uint64
	User  *models.User
	Token string
}

func reduceAuth(s AuthState, in Intent) AuthState {
	switch in.Kind {
	case KindSetSession:
		p, ok := in.Payload.(SetSessionPayload)
		if !ok {
			return s
		}
		return AuthState{Rev: s.Rev + 1, User: p.User, Token: p.Token}
	case KindLoadNow:
		p, ok := in.Payload.(models.NowResponse)
		if !ok || p.User == nil {
			return s
		}
		u := *p.User
		return AuthState{Rev: s.Rev + 1, User: &u, Token: s.Token}
	}
	return s
}
