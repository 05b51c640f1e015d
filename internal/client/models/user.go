package models

// User is the authenticated identity reported by the auth provider.
type User struct {
	ID            string
	Email         string
	EmailVerified bool
	Attributes    map[string]string
}

// Profile is the users/<uid> document written at registration.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
