package company

import (
	"errors"
	"strings"
)

// Info is the single company record printed on every document. One per
// installation; replaced wholesale, never deleted.
type Info struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
}

// DefaultInfo is used until the owner saves their own details.
var DefaultInfo = Info{
	Name:    "TECHVERSE INFOTECH",
	Phone:   "+91 8248329035",
	Email:   "techverse.infotech.pvt.ltd@gmail.com",
	Address: "",
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidPhone = errors.New("invalid_phone")
	ErrInvalidEmail = errors.New("invalid_email")
)

// Validate checks the required contact fields. Address is optional.
func (i Info) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(i.Phone) == "" {
		return ErrInvalidPhone
	}
	if strings.TrimSpace(i.Email) == "" {
		return ErrInvalidEmail
	}
	return nil
}
