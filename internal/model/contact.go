package model

// ContactRecord holds the contact signals discovered on one source page.
// A record is only kept when at least one of its sets is non-empty.
type ContactRecord struct {
	// SourceURL is the URL of the page the signals were scraped from.
	SourceURL string `json:"source_url"`

	// Emails contains unique email addresses in first-seen order.
	Emails []string `json:"emails,omitempty"`

	// Phones contains unique raw phone-number matches.
	Phones []string `json:"phones,omitempty"`

	// Profiles contains unique messaging-profile links found on the page.
	Profiles []string `json:"profiles,omitempty"`
}

// IsEmpty reports whether the record carries no contact signal at all.
func (r ContactRecord) IsEmpty() bool {
	return len(r.Emails) == 0 && len(r.Phones) == 0 && len(r.Profiles) == 0
}

// SignalCount returns the total number of signals in the record.
func (r ContactRecord) SignalCount() int {
	return len(r.Emails) + len(r.Phones) + len(r.Profiles)
}

// ProfileDetails is the metadata resolved from a messaging-profile page.
// Every field may be empty: resolution failures and pages without the
// expected markup yield empty strings rather than errors.
type ProfileDetails struct {
	// URL is the profile link that was resolved.
	URL string `json:"url"`

	// Title is the display name shown on the profile page.
	Title string `json:"title,omitempty"`

	// AvatarURL is the source of the first image on the profile page.
	AvatarURL string `json:"avatar_url,omitempty"`

	// Bio is the profile description text.
	Bio string `json:"bio,omitempty"`
}

// IsEmpty reports whether nothing was resolved for the profile.
func (p ProfileDetails) IsEmpty() bool {
	return p.Title == "" && p.AvatarURL == "" && p.Bio == ""
}

// ContactKind identifies the type of a contact signal.
type ContactKind string

// Contact signal kinds.
const (
	KindEmail   ContactKind = "email"
	KindPhone   ContactKind = "phone"
	KindProfile ContactKind = "profile"
)

// String returns the kind name.
func (k ContactKind) String() string {
	return string(k)
}
