package extractor

import (
	"regexp"
	"strings"
)

// emailRegex only recognizes ".com" domains. It is applied to lowercased
// input, so matching is effectively case-insensitive.
var emailRegex = regexp.MustCompile(`[a-z0-9.\-+_]+@[a-z0-9.\-+_]+\.com`)

// phoneRegex requires a leading whitespace character that is not part of
// the captured number. \s is ASCII-only in RE2, so Unicode spaces such as
// U+00A0 are matched through \p{Zs}.
var phoneRegex = regexp.MustCompile(`[\s\p{Zs}](\+?\(?\d{1,3}\)?-? ?\(?\d{2,3}\)?-? ?\d{3,4}-? ?\d{3,4})`)

// phoneSeparators are the characters a phone candidate must contain at
// least one of. Bare digit runs match too many unrelated numbers.
const phoneSeparators = "+ -)"

// Contacts holds the email addresses and phone numbers found in a text.
type Contacts struct {
	// Emails are unique lowercased addresses in first-seen order.
	Emails []string

	// Phones are unique raw phone matches in first-seen order.
	Phones []string
}

// IsEmpty reports whether no contact was found.
func (c Contacts) IsEmpty() bool {
	return len(c.Emails) == 0 && len(c.Phones) == 0
}

// ExtractContacts returns the emails and phone numbers found in text.
func ExtractContacts(text string) Contacts {
	return Contacts{
		Emails: ExtractEmails(text),
		Phones: ExtractPhones(text),
	}
}

// ExtractEmails returns unique email addresses found in text.
func ExtractEmails(text string) []string {
	return unique(emailRegex.FindAllString(strings.ToLower(text), -1))
}

// ExtractPhones returns unique phone numbers found in text.
func ExtractPhones(text string) []string {
	matches := phoneRegex.FindAllStringSubmatch(text, -1)
	phones := make([]string, 0, len(matches))
	for _, m := range matches {
		if IsPlausiblePhone(m[1]) {
			phones = append(phones, m[1])
		}
	}
	return unique(phones)
}

// IsPlausiblePhone reports whether a phone candidate contains a separator.
func IsPlausiblePhone(candidate string) bool {
	return strings.ContainsAny(candidate, phoneSeparators)
}

// unique removes duplicates while keeping first-seen order.
func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
