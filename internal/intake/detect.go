package intake

import "regexp"

// ContactKind names one family of contact details.
type ContactKind string

const (
	ContactEmail ContactKind = "email"
	ContactPhone ContactKind = "phone"
	ContactURL   ContactKind = "url"
)

var contactPatterns = []struct {
	kind ContactKind
	re   *regexp.Regexp
}{
	{ContactEmail, regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)},
	// 8 to 13 digits with at most one separator between digits. Spaces only
	// count after a leading plus or a parenthesised area code, so lists of
	// numbers like "2025 2026" are not phones.
	{ContactPhone, regexp.MustCompile(`\+\d(?:[ .()\-]?\d){7,12}|\b\d(?:[.\-]?\d){7,12}\b|\(\d{2,4}\)[ .\-]?\d{3,4}[ .\-]?\d{3,4}`)},
	{ContactURL, regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+`)},
}

// Detector classifies text as leaking contact information. A single match
// of any pattern is enough.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

func (d *Detector) HasContactInfo(text string) bool {
	return len(d.Kinds(text)) > 0
}

// Kinds lists which families matched, in a fixed order.
func (d *Detector) Kinds(text string) []ContactKind {
	if text == "" {
		return nil
	}

	var kinds []ContactKind
	for _, p := range contactPatterns {
		if p.re.MatchString(text) {
			kinds = append(kinds, p.kind)
		}
	}

	return kinds
}
