package service

import (
	"regexp"
	"strings"

	"github.com/vanshika/profilegraph/internal/domain"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalizeProfile tidies free-text fields before they are stored. Phone and
// image values are only trimmed; their formats are left to the client.
func normalizeProfile(p domain.Profile) domain.Profile {
	p.Img = strings.TrimSpace(p.Img)
	p.FirstName = sanitizeString(p.FirstName)
	p.LastName = sanitizeString(p.LastName)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = sanitizeString(p.Address)
	p.City = sanitizeString(p.City)
	p.State = strings.ToUpper(sanitizeString(p.State))
	p.Zipcode = strings.TrimSpace(p.Zipcode)
	return p
}

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}
