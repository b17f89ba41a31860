package user

import (
	"fmt"
	"os"
	"os/user"
)

// GetCurrentUsername returns the current system username.
// It tries multiple methods with fallbacks:
// 1. user.Current() - most reliable, gets username from OS
// 2. USER environment variable - fallback for restricted environments
// 3. "unknown" - final fallback to ensure a non-empty value
func GetCurrentUsername() string {
	currentUser, err := user.Current()
	if err == nil && currentUser.Username != "" {
		return currentUser.Username
	}
	if username := os.Getenv("USER"); username != "" {
		return username
	}
	return "unknown"
}

// PeerID identifies this process on the change feed as <username>-<pid>.
// Events carrying our own peer id are echoes and can be ignored.
func PeerID() string {
	return fmt.Sprintf("%s-%d", GetCurrentUsername(), os.Getpid())
}
