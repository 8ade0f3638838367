package store

import (
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
)

func reduceAccount(s AccountState, a Action) AccountState {
	switch a := a.(type) {
	case Logout:
		return AccountState{Call: s.Call}
	case asyncAction:
		m := a.meta()
		switch m.Op {
		case OpLogin:
			s.Call = s.Call.track(m.Phase)
			switch m.Phase {
			case Fulfilled:
				s.IsLoggedIn = true
				s.Error = nil
			case Rejected:
				s.IsLoggedIn = false
				s.Account = nil
				s.Error = m.Error
			}
		case OpFetchAccount:
			s.Call = s.Call.track(m.Phase)
			switch m.Phase {
			case Fulfilled:
				if !s.IsLoggedIn {
					s.Account = nil
					s.Error = &SerializedError{
						Name:    InvalidStateError,
						Message: "received an account while logged out",
					}
					break
				}
				account, ok := payload[domain.Account](a)
				if !ok {
					log.Error().Str("action", a.Type()).Msg("unexpected payload type")
					break
				}
				s.Account = &account
				s.Error = nil
			case Rejected:
				s.Account = nil
				s.Error = m.Error
			}
		}
	}
	return s
}

func SelectAccount(s RootState) *domain.Account {
	return s.Account.Account
}

func SelectIsLoggedIn(s RootState) bool {
	return s.Account.IsLoggedIn
}

// SelectRole returns the role of the fetched account, or the empty role when no account is known.
func SelectRole(s RootState) domain.UserRole {
	if s.Account.Account == nil {
		return ""
	}
	return s.Account.Account.Role
}
