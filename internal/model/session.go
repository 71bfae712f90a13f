package model

// Session is the authenticated identity the console holds against the
// backend. IsAuthenticated must always equal AccessToken != "".
type Session struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func (s Session) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// Role returns the session user's role, or the empty string when no
// user is attached.
func (s Session) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}
