package store

import (
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/fairsonority/internal/domain"
)

func reduceUsers(s UserState, a Action) UserState {
	switch a := a.(type) {
	case ClearRegistration:
		s.User = nil
		s.Error = nil
	case Logout:
		s.Artists = nil
		s.ArtistsError = nil
	case asyncAction:
		m := a.meta()
		switch m.Op {
		case OpRegister:
			s.Call = s.Call.track(m.Phase)
			switch m.Phase {
			case Fulfilled:
				user, ok := payload[domain.User](a)
				if !ok {
					log.Error().Str("action", a.Type()).Msg("unexpected payload type")
					break
				}
				s.User = &user
				s.Error = nil
			case Rejected:
				s.User = nil
				s.Error = m.Error
			}
		case OpFetchArtists:
			s.ArtistsCall = s.ArtistsCall.track(m.Phase)
			switch m.Phase {
			case Fulfilled:
				artists, ok := payload[[]domain.ArtistFull](a)
				if !ok {
					log.Error().Str("action", a.Type()).Msg("unexpected payload type")
					break
				}
				if artists == nil {
					artists = []domain.ArtistFull{}
				}
				s.Artists = artists
				s.ArtistsError = nil
			case Rejected:
				s.ArtistsError = m.Error
			}
		case OpCreateRating:
			s.ArtistsCall = s.ArtistsCall.track(m.Phase)
			switch m.Phase {
			case Fulfilled:
				rating, ok := payload[domain.Rating](a)
				if !ok {
					log.Error().Str("action", a.Type()).Msg("unexpected payload type")
					break
				}
				s.Artists = mergeRating(s.Artists, rating)
				s.ArtistsError = nil
			case Rejected:
				s.ArtistsError = m.Error
			}
		}
	}
	return s
}

// mergeRating returns a copy of artists in which r replaces the rating its author left for the same artist,
// or is added to that artist's ratings.
func mergeRating(artists []domain.ArtistFull, r domain.Rating) []domain.ArtistFull {
	if artists == nil {
		return nil
	}
	merged := make([]domain.ArtistFull, len(artists))
	copy(merged, artists)
	for i := range merged {
		if merged[i].ID != r.ArtistID {
			continue
		}
		ratings := make([]domain.Rating, 0, len(merged[i].Ratings)+1)
		for _, old := range merged[i].Ratings {
			if old.UserID != r.UserID {
				ratings = append(ratings, old)
			}
		}
		merged[i].Ratings = append(ratings, r)
	}
	return merged
}

// SelectArtists returns the cached artist roster, nil when it was never loaded.
func SelectArtists(s RootState) []domain.ArtistFull {
	return s.Users.Artists
}

func SelectRegisteredUser(s RootState) *domain.User {
	return s.Users.User
}
