package server

import (
	"errors"
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"venturelink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type registerForm struct {
	GivenName       string `form:"given_name"`
	FamilyName      string `form:"family_name"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
	UserType        string `form:"user_type"`
}

type validationResponse struct {
	Error       string            `json:"error"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	err := r.ParseForm()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	var in = new(registerForm)
	err = decoder.Decode(in, r.PostForm)
	if err != nil {
		s.logger.WithError(err).Info("failed to decode register form")
		s.writeError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	in.GivenName = strings.TrimSpace(in.GivenName)
	in.FamilyName = strings.TrimSpace(in.FamilyName)
	in.Email = strings.TrimSpace(in.Email)
	in.UserType = strings.TrimSpace(in.UserType)

	fieldErrors := validateRegisterInput(in)
	if len(fieldErrors) > 0 {
		s.logger.WithField("field_errors", fieldErrors).Info("validation errors during registration")
		s.writeJSON(w, http.StatusBadRequest, validationResponse{Error: "Please fix the highlighted fields.", FieldErrors: fieldErrors})
		return
	}

	input := &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(in.Email), // use email as username
		Password: aws.String(in.Password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(in.Email)},
			{Name: aws.String("given_name"), Value: aws.String(in.GivenName)},
			{Name: aws.String("family_name"), Value: aws.String(in.FamilyName)},
		},
	}

	out, err := s.cognitoClient.SignUp(ctx, input)
	if err != nil {
		s.logger.WithError(err).Error("failed to signup user")

		msg, fieldErrors := s.mapCognitoSignUpError(err)
		s.writeJSON(w, http.StatusBadRequest, validationResponse{Error: msg, FieldErrors: fieldErrors})
		return
	}

	userID := aws.ToString(out.UserSub)
	err = s.users.UpsertIdentity(ctx, userID, types.UserType(in.UserType), in.Email, in.GivenName, in.FamilyName)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to store registered user")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"userId":         userID,
		"confirmationTo": in.Email,
	})
}

func (s *Service) handlePostRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	code := strings.TrimSpace(r.FormValue("code"))
	if email == "" || code == "" {
		s.writeError(w, http.StatusBadRequest, "email and code are required")
		return
	}

	input := &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(s.config.CognitoClientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	}

	_, err := s.cognitoClient.ConfirmSignUp(r.Context(), input)
	if err != nil {
		s.logger.WithError(err).Error("failed to confirm user signup")

		var codeMismatch *ctypes.CodeMismatchException
		if errors.As(err, &codeMismatch) {
			s.writeError(w, http.StatusBadRequest, "Invalid confirmation code. Please check the code and try again.")
			return
		}
		s.writeError(w, http.StatusBadRequest, "Unable to confirm account. Please try again.")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"confirmed": true})
}

var (
	hasUpperReg  = regexp.MustCompile(`[A-Z]`)
	hasLowerReg  = regexp.MustCompile(`[a-z]`)
	hasDigitReg  = regexp.MustCompile(`[0-9]`)
	hasSymbolReg = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func validateRegisterInput(in *registerForm) map[string]string {
	errs := map[string]string{}

	if in.GivenName == "" {
		errs["given_name"] = "First name is required."
	}

	if in.FamilyName == "" {
		errs["family_name"] = "Last name is required."
	}

	if in.Email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if !types.UserType(in.UserType).Valid() {
		errs["user_type"] = "Choose entrepreneur or investor."
	}

	if in.Password != in.ConfirmPassword {
		errs["confirm_password"] = "Passwords do not match."
	}

	hasUpper := hasUpperReg.MatchString(in.Password)
	hasLower := hasLowerReg.MatchString(in.Password)
	hasDigit := hasDigitReg.MatchString(in.Password)
	hasSymbol := hasSymbolReg.MatchString(in.Password)

	if len(in.Password) < 12 || !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		errs["password"] = "Password must be at least 12 characters and include uppercase, lowercase, number, and symbol."
	}

	return errs
}

func (s *Service) mapCognitoSignUpError(err error) (string, map[string]string) {
	fieldErrs := map[string]string{}

	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		fieldErrs["password"] = "Password must include uppercase, lowercase, number, and symbol (min 12)."
		return "Please fix the highlighted fields.", fieldErrs
	}

	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		fieldErrs["email"] = "An account with this email already exists."
		return "Try logging in instead.", fieldErrs
	}

	var invalidParam *ctypes.InvalidParameterException
	if errors.As(err, &invalidParam) {
		return "Some details are invalid. Please review and try again.", fieldErrs
	}

	s.logger.WithError(err).Error("unhandled cognito signup error")

	return "Unable to create account right now. Please try again.", fieldErrs
}
