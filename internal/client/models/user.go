package models

// User is the advisory snapshot of the signed-in account. Only Username is
// guaranteed; the rest depends on the endpoint that produced it.
type User struct {
	ID         int64  `json:"id,omitempty"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
	DateJoined string `json:"date_joined,omitempty"`
}

// Credentials is the body of auth/login/ and auth/register/.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// Session is what login and registration return.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ProfileUpdate is the body of PUT auth/profile/. Password fields are sent
// only when the password changes.
type ProfileUpdate struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password,omitempty"`
}

// ProfileUpdateResult carries a fresh token when the password changed.
type ProfileUpdateResult struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}
