// Package profile resolves messaging-profile links (t.me pages) into
// structured details: display name, avatar URL and bio.
//
// Profile pages are untrusted markup. A missing element yields an empty
// field, and a failed fetch yields empty details plus an error the caller is
// expected to record and otherwise ignore.
package profile
