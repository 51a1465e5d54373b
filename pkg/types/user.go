package types

import "time"

type UserType string

const (
	UserTypeEntrepreneur UserType = "entrepreneur"
	UserTypeInvestor     UserType = "investor"
)

func (t UserType) Valid() bool {
	return t == UserTypeEntrepreneur || t == UserTypeInvestor
}

type User struct {
	ID         string    `db:"id"`
	UserType   *string   `db:"user_type"`
	Email      *string   `db:"email"`
	GivenName  *string   `db:"given_name"`
	FamilyName *string   `db:"family_name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// DisplayName is what other parties see, e.g. on the NDA.
func (u *User) DisplayName() string {
	var given, family string
	if u.GivenName != nil {
		given = *u.GivenName
	}
	if u.FamilyName != nil {
		family = *u.FamilyName
	}

	switch {
	case given != "" && family != "":
		return given + " " + family
	case given != "":
		return given
	case family != "":
		return family
	}

	return "the Entrepreneur"
}

func (u *User) Is(t UserType) bool {
	return u.UserType != nil && UserType(*u.UserType) == t
}
