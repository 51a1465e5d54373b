package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "venturelink_access_token"
)
