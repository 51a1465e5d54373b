package seed

import (
	"context"
	"fmt"

	"venturelink/pkg/types"
)

type fakeUserSeed struct {
	ID         string
	Email      string
	GivenName  string
	FamilyName string
	UserType   types.UserType
}

var fakeUsers = []fakeUserSeed{
	{ID: "11111111-1111-1111-1111-111111111111", Email: "ava.williams+seed1@example.com", GivenName: "Ava", FamilyName: "Williams", UserType: types.UserTypeEntrepreneur},
	{ID: "22222222-2222-2222-2222-222222222222", Email: "liam.johnson+seed2@example.com", GivenName: "Liam", FamilyName: "Johnson", UserType: types.UserTypeEntrepreneur},
	{ID: "33333333-3333-3333-3333-333333333333", Email: "noah.brown+seed3@example.com", GivenName: "Noah", FamilyName: "Brown", UserType: types.UserTypeEntrepreneur},
	{ID: "44444444-4444-4444-4444-444444444444", Email: "mia.davis+seed4@example.com", GivenName: "Mia", FamilyName: "Davis", UserType: types.UserTypeEntrepreneur},
	{ID: "55555555-5555-5555-5555-555555555555", Email: "elijah.garcia+seed5@example.com", GivenName: "Elijah", FamilyName: "Garcia", UserType: types.UserTypeInvestor},
	{ID: "66666666-6666-6666-6666-666666666666", Email: "olivia.miller+seed6@example.com", GivenName: "Olivia", FamilyName: "Miller", UserType: types.UserTypeInvestor},
}

type IdentityWriter interface {
	UpsertIdentity(ctx context.Context, userID string, userType types.UserType, email, givenName, familyName string) error
}

func fakeUserIDs(userType types.UserType) []string {
	ids := make([]string, 0, len(fakeUsers))
	for _, user := range fakeUsers {
		if user.UserType == userType {
			ids = append(ids, user.ID)
		}
	}
	return ids
}

// SeedFakeUsers upserts the demo accounts. Their ids do not exist in Cognito,
// so they cannot log in; they only own and browse seeded data.
func SeedFakeUsers(ctx context.Context, users IdentityWriter) (int, error) {
	seeded := 0
	for _, u := range fakeUsers {
		err := users.UpsertIdentity(ctx, u.ID, u.UserType, u.Email, u.GivenName, u.FamilyName)
		if err != nil {
			return seeded, fmt.Errorf("failed to upsert fake user %s: %w", u.ID, err)
		}
		seeded++
	}

	return seeded, nil
}
