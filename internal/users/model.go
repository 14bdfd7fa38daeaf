package users

import "time"

// User represents a patient identified by their WhatsApp phone number.
type User struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone_number"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the collected name or falls back to the phone number.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Phone
}
