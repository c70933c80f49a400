package phone

import (
	"regexp"
	"strings"
)

// Vietnamese mobile numbers: 0XXXXXXXXX, 84XXXXXXXXX or +84XXXXXXXXX
var phoneRegex = regexp.MustCompile(`^(\+84|84|0)[0-9]{9}$`)

// IsValid checks if a phone number is a valid Vietnamese mobile number
func IsValid(number string) bool {
	return phoneRegex.MatchString(strings.TrimSpace(number))
}

// Normalize canonicalizes a phone number to the 0XXXXXXXXX form.
// All storage keys and allow-list comparisons use this form.
func Normalize(number string) string {
	number = strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	if number == "" {
		return ""
	}
	if strings.HasPrefix(number, "+84") {
		return "0" + number[3:]
	}
	if strings.HasPrefix(number, "84") {
		return "0" + number[2:]
	}
	return number
}
