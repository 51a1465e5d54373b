package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"venturelink/internal"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// Identity is what a verified access token says about its bearer.
type Identity struct {
	UserID string
	Email  string
}

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (Identity, error)
}

// JWKSAuthenticator verifies Cognito access tokens against the user pool's
// published key set.
type JWKSAuthenticator struct {
	cache   *jwk.Cache
	jwksURL string
}

func NewJWKSAuthenticator(cache *jwk.Cache, jwksURL string) *JWKSAuthenticator {
	return &JWKSAuthenticator{cache: cache, jwksURL: jwksURL}
}

func (a *JWKSAuthenticator) Authenticate(ctx context.Context, accessToken string) (Identity, error) {
	set, err := a.cache.Lookup(ctx, a.jwksURL)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to parse JWT: %w", err)
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return Identity{}, errors.New("no user ID in JWT subject claim")
	}

	// email is optional on access tokens
	var email string
	_ = token.Get("email", &email)

	return Identity{UserID: userID, Email: email}, nil
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		s.writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	}

	resp, err := s.cognitoClient.InitiateAuth(r.Context(), input)
	if err != nil {
		// NotAuthorizedException, UserNotConfirmedException, etc.
		s.logger.WithError(err).Info("login rejected")
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		s.writeError(w, http.StatusUnauthorized, "login failed")
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)
	expiresIn := int(resp.AuthenticationResult.ExpiresIn)
	if expiresIn <= 0 || expiresIn > s.config.SessionMaxAgeSec {
		expiresIn = s.config.SessionMaxAgeSec
	}

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, accessToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.internalServerError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   expiresIn,
		Path:     "/",
	})

	s.writeJSON(w, http.StatusOK, map[string]any{"expiresIn": expiresIn})
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
	if err == nil {
		var accessToken string
		if s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &accessToken) == nil {
			_, err = s.cognitoClient.GlobalSignOut(r.Context(), &cognitoidentityprovider.GlobalSignOutInput{
				AccessToken: aws.String(accessToken),
			})
			if err != nil {
				s.logger.WithError(err).Warn("failed to revoke cognito session")
			}
		}
	}

	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
