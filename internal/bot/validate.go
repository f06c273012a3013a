package bot

import "regexp"

// Accepted identifier shapes: a 15-digit IMEI, an alphanumeric serial number
// of 5 to 20 characters, or an international phone number with 10 to 15
// digits after the leading +.
var identifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{15}$`),
	regexp.MustCompile(`^\w{5,20}$`),
	regexp.MustCompile(`^\+\d{10,15}$`),
}

// ValidateIdentifier reports whether text is a well-formed target identifier.
// Commands (leading slash) and empty input are never valid.
func ValidateIdentifier(text string) bool {
	if text == "" || text[0] == '/' {
		return false
	}
	for _, p := range identifierPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
