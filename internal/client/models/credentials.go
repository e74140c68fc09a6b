package models

// Credentials is the session material persisted by the credential store:
// the short-lived access token, the longer-lived refresh token, and the
// cached user record. A present access token is treated as authenticated
// until a request proves otherwise; absence of either token forces the
// session to anonymous.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	User         *UserRecord
}

// HasAccessToken reports whether the credentials can authorize requests.
func (c Credentials) HasAccessToken() bool {
	return c.AccessToken != ""
}

// Empty reports whether no session material is present at all.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == "" && c.User == nil
}
