package models

import (
	"regexp"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	RollNumber   string    `json:"roll_number"`
	CreatedAt    time.Time `json:"created_at"`
}

// Ref is the participant reference stamped onto item records.
func (u *User) Ref() UserRef {
	return UserRef{UID: u.ID, Name: u.Name, Email: u.Email}
}

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Campus roll numbers: 2-digit year, department code, serial.
var rollNumberPattern = regexp.MustCompile(`^[0-9]{2}[A-Za-z]{2,4}[0-9]{3,5}$`)

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 6 {
		errors["password"] = "Password must be at least 6 characters"
	}
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.RollNumber == "" {
		errors["roll_number"] = "Roll number is required"
	} else if !rollNumberPattern.MatchString(r.RollNumber) {
		errors["roll_number"] = "Invalid roll number format"
	}

	return errors
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}
