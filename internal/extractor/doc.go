// Package extractor finds contact signals in fetched pages.
//
// Two independent passes run over every page body:
//   - ExtractContacts matches email addresses and phone numbers in the raw text
//   - ExtractLinks walks the HTML tree and splits anchors into messaging-profile
//     links and ordinary page links
//
// Emails and phones are matched with regular expressions over
// the raw body (including markup), while links come from a real HTML parse.
// Contact strings often sit inside attributes or scripts that a text-only walk
// would miss, but anchors must be read structurally to get href values right.
//
// # Known Limitations
//
//   - Only ".com" email domains are recognized.
//   - Phone candidates made of bare digits are discarded as too ambiguous.
//   - Links are compared as exact strings: "/about" and "/about#team" are
//     different links.
package extractor
