package actions

import (
	"net/url"
	"regexp"
	"strings"
)

// Validators return an error message for the prompt to display, or "" when
// the input is acceptable. They run locally and never reach the network.

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateName accepts any non-blank name (courses, exercises, people).
func ValidateName(input string) string {
	if strings.TrimSpace(input) == "" {
		return "Please enter a name"
	}
	return ""
}

// ValidateURL accepts absolute http or https URLs.
func ValidateURL(input string) string {
	u, err := url.ParseRequestURI(strings.TrimSpace(input))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "Please enter a valid http or https URL"
	}
	return ""
}

// ValidateUsername accepts word characters only.
func ValidateUsername(input string) string {
	if !usernameRe.MatchString(input) {
		return "Username must contain only letters, numbers and underscores"
	}
	return ""
}

// ValidatePassword only requires something to be typed.
func ValidatePassword(input string) string {
	if input == "" {
		return "Please enter a password"
	}
	return ""
}

// ValidateEmail does a shallow shape check; the server has the final say.
func ValidateEmail(input string) string {
	if !emailRe.MatchString(strings.TrimSpace(input)) {
		return "Please enter a valid email"
	}
	return ""
}

// ValidateSharingCode accepts any non-blank code.
func ValidateSharingCode(input string) string {
	if strings.TrimSpace(input) == "" {
		return "Please enter a sharing code"
	}
	return ""
}
