package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetector_HasContactInfo(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"email", "reach me at founder@startup.io for details", true},
		{"international phone", "call +1 555-123-4567 anytime", true},
		{"bare phone", "whatsapp 5551234567", true},
		{"dotted phone", "office 020.7946.0958", true},
		{"area code phone", "ring (555) 123-4567", true},
		{"spaced international phone", "+44 20 7946 0958", true},
		{"list of years", "Targets: 2025 2026", false},
		{"numbers on separate lines", "2025\n2026\n2027", false},
		{"spaced figures", "units 1200 3400 5600", false},
		{"https url", "see https://startup.example/deck", true},
		{"www url", "visit www.startup.example", true},
		{"plain prose", "great idea about sustainable packaging", false},
		{"short numbers", "we need $250,000 over 18 months, 3 hires by 2025", false},
		{"empty", "", false},
	}

	d := NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.HasContactInfo(tt.text))
		})
	}
}

func TestDetector_Kinds(t *testing.T) {
	d := NewDetector()
	kinds := d.Kinds("mail a@b.co or browse http://x.example")
	assert.Equal(t, []ContactKind{ContactEmail, ContactURL}, kinds)
}
