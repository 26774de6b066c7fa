package domain

import "strconv"

// Subject is a client that can be invoiced.
type Subject struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	RegistrationNo string `json:"registration_no,omitempty"`
}

// Label is the text shown in the client picker, "<id> - <name>".
func (s Subject) Label() string {
	return strconv.FormatInt(s.ID, 10) + " - " + s.Name
}

// User is the account owner the API token belongs to.
type User struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
