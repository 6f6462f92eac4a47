package domain

import (
	"errors"
	"regexp"
)

var (
	ErrInvalidKey    = errors.New("invalid key")
	ErrInvalidTenant = errors.New("invalid tenant")
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9._:/-]+$`)

func ValidateKey(key string) error {
	if key == "" || !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}
	return nil
}

func ValidateTenant(tenantID string) error {
	if tenantID == "" || !keyPattern.MatchString(tenantID) {
		return ErrInvalidTenant
	}
	return nil
}
