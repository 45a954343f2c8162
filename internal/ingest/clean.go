package ingest

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	htmlTag  = regexp.MustCompile(`<[^>]*>`)
	urlRe    = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	emailRe  = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	entities = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'", "&nbsp;", " ")
)

// Policy controls which markup is removed before validation.
type Policy struct {
	MinWords    int
	StripHTML   bool
	StripURLs   bool
	StripEmails bool
}

// DefaultPolicy strips everything and requires three words.
func DefaultPolicy() Policy {
	return Policy{MinWords: 3, StripHTML: true, StripURLs: true, StripEmails: true}
}

// Clean normalizes text to NFKC, removes null bytes and the markup the policy
// names, and collapses runs of whitespace.
func (p Policy) Clean(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\x00", "")
	if p.StripHTML {
		text = htmlTag.ReplaceAllString(text, " ")
		text = entities.Replace(text)
	}
	if p.StripURLs {
		text = urlRe.ReplaceAllString(text, " ")
	}
	if p.StripEmails {
		text = emailRe.ReplaceAllString(text, " ")
	}
	return strings.Join(strings.Fields(text), " ")
}
