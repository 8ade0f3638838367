package app

import (
	"time"

	"github.com/sidereusnuntius/fairsonority/internal/domain"
	"github.com/sidereusnuntius/fairsonority/internal/form"
	"github.com/sidereusnuntius/fairsonority/internal/safemap"
	"github.com/sidereusnuntius/fairsonority/internal/validate"
)

// DateLayout is the layout of the deadlines typed in the order form.
const DateLayout = "2006-01-02"

var RoleLabels = safemap.Must(
	safemap.E(domain.Artist, "Artist"),
	safemap.E(domain.Customer, "Customer"),
)

var FieldLabels = safemap.Must(
	safemap.E("username", "Email"),
	safemap.E("email", "Email"),
	safemap.E("password", "Password"),
	safemap.E("firstName", "First Name"),
	safemap.E("lastName", "Last Name"),
	safemap.E("genres", "Genres"),
	safemap.E("profileDescription", "Profile Description"),
	safemap.E("role", "User Role"),
	safemap.E("bpm", "BPM"),
	safemap.E("comment", "Comment"),
	safemap.E("genre", "Genre"),
	safemap.E("date", "Deadline"),
	safemap.E("rating", "Rating"),
)

func required(key string) form.FieldConfig {
	label := FieldLabels.MustGet(key)
	return form.Field[string](func(v string) string {
		return validate.Message(validate.Required(v, label))
	}, form.EmptyString)
}

func email(v string) string {
	return validate.Message(validate.Email(v))
}

func genres(v []string) string {
	return validate.Message(validate.Genres(v))
}

func role(raw any) (domain.UserRole, error) {
	switch v := raw.(type) {
	case domain.UserRole:
		return v, nil
	case string:
		if v == "" {
			return "", nil
		}
		return domain.ParseRole(v)
	}
	return "", form.ErrTypeMismatch
}

var loginForm = safemap.Must(
	safemap.E("username", form.Field[string](email, form.EmptyString)),
	safemap.E("password", required("password")),
)

var registrationForm = safemap.Must(
	safemap.E("email", form.Field[string](email, form.EmptyString)),
	safemap.E("password", required("password")),
	safemap.E("firstName", required("firstName")),
	safemap.E("lastName", required("lastName")),
	safemap.E("genres", form.Field[[]string](genres, form.EmptyStrings, form.List)),
	safemap.E("profileDescription", required("profileDescription")),
	safemap.E("role", form.Field[domain.UserRole](func(r domain.UserRole) string {
		if !r.Valid() {
			return validate.ErrRoleRequired.Error()
		}
		return ""
	}, form.Zero[domain.UserRole], role)),
)

var (
	registrationKeys = []string{"email", "password", "firstName", "lastName", "role"}
	artistOnlyKeys   = []string{"genres", "profileDescription"}
)

func orderForm(now func() time.Time) *form.Config {
	return safemap.Must(
		safemap.E("bpm", form.Field[int](func(v int) string {
			return validate.Message(validate.BPM(v))
		}, form.Zero[int], form.Int)),
		safemap.E("comment", required("comment")),
		safemap.E("genre", form.Field[[]string](genres, form.EmptyStrings, form.List)),
		safemap.E("date", form.Field[time.Time](func(v time.Time) string {
			return validate.Message(validate.Deadline(v, now()))
		}, form.Zero[time.Time], form.Time(DateLayout))),
	)
}

var ratingForm = safemap.Must(
	safemap.E("rating", form.Field[int](func(v int) string {
		return validate.Message(validate.Rating(v))
	}, form.Zero[int], form.Int)),
	// Comments are optional.
	safemap.E("comment", form.Field[string](func(string) string { return "" }, form.EmptyString)),
)
