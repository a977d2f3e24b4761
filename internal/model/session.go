package model

// Session is the authenticated state of one browser. UserID is decoded from
// Token and is only a display hint; it is never trusted for authorization.
type Session struct {
	Token  string
	UserID string
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}
