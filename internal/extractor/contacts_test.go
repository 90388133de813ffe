package extractor

import (
	"reflect"
	"testing"
)

func TestExtractEmails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single address",
			text: "contact us at info@example.com today",
			want: []string{"info@example.com"},
		},
		{
			name: "mixed case is matched and lowercased",
			text: "Write to Sales@Example.COM please",
			want: []string{"sales@example.com"},
		},
		{
			name: "exact repeats are deduplicated",
			text: "a@b.com, a@b.com and A@B.com",
			want: []string{"a@b.com"},
		},
		{
			name: "plus and dots in local part",
			text: "first.last+tag@mail.example.com",
			want: []string{"first.last+tag@mail.example.com"},
		},
		{
			name: "non-com domains are ignored",
			text: "admin@example.org and root@example.net",
			want: []string{},
		},
		{
			name: "addresses inside markup are found",
			text: `<a href="mailto:hello@shop.com">mail</a>`,
			want: []string{"hello@shop.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractEmails(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractEmails() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractPhones(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "international with area code in parentheses",
			text: "call +1 (555) 123-4567 now",
			want: []string{"+1 (555) 123-4567"},
		},
		{
			name: "space separated groups",
			text: "phone: +44 20 7946 0958",
			want: []string{"+44 20 7946 0958"},
		},
		{
			name: "number after a non-breaking space",
			text: "tel:\u00a0+1 (555) 123-4567",
			want: []string{"+1 (555) 123-4567"},
		},
		{
			name: "hyphen separated groups",
			text: "office 555-123-4567",
			want: []string{"555-123-4567"},
		},
		{
			name: "bare digit run is discarded",
			text: "order id 1234567890",
			want: []string{},
		},
		{
			name: "leading whitespace is required",
			text: "x555-123-4567",
			want: []string{},
		},
		{
			name: "duplicates are removed",
			text: " 555-123-4567 and 555-123-4567",
			want: []string{"555-123-4567"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractPhones(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractPhones() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsPlausiblePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		candidate string
		want      bool
	}{
		{"+15551234567", true},
		{"555 123 4567", true},
		{"555-123-4567", true},
		{"(555)1234567", true},
		{"5551234567", false},
		{"(5551234567", false},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			t.Parallel()
			if got := IsPlausiblePhone(tt.candidate); got != tt.want {
				t.Errorf("IsPlausiblePhone(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestExtractContacts(t *testing.T) {
	t.Parallel()

	t.Run("emails and phones are independent", func(t *testing.T) {
		t.Parallel()
		c := ExtractContacts("contact us at info@example.com or +1 (555) 123-4567")
		if !reflect.DeepEqual(c.Emails, []string{"info@example.com"}) {
			t.Errorf("unexpected emails: %v", c.Emails)
		}
		if !reflect.DeepEqual(c.Phones, []string{"+1 (555) 123-4567"}) {
			t.Errorf("unexpected phones: %v", c.Phones)
		}
		if c.IsEmpty() {
			t.Error("expected contacts to be non-empty")
		}
	})

	t.Run("plain text yields nothing", func(t *testing.T) {
		t.Parallel()
		if c := ExtractContacts("nothing to see here"); !c.IsEmpty() {
			t.Errorf("expected no contacts, got %+v", c)
		}
	})
}
