package utils

import (
	"os"
	"os/user"
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return hostname, nil
}

// DefaultEmail returns user@host for the current user, the address gpg key
// generation falls back to when none is given.
func DefaultEmail() string {
	username, err := GetUsername()
	if err != nil || username == "" {
		username = "user"
	}
	hostname, err := GetHostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}
	return username + "@" + hostname
}
