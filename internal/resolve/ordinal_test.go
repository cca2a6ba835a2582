package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		name       string
		word       string
		activeSize int
		want       int
		wantOK     bool
	}{
		{"first", "first", 4, 0, true},
		{"second", "second", 4, 1, true},
		{"ninth", "ninth", 9, 8, true},
		{"abbreviation", "3rd", 4, 2, true},
		{"last of three", "last", 3, 2, true},
		{"last of one", "last", 1, 0, true},
		{"numeric", "2", 4, 1, true},
		{"numeric beyond range still parses", "7", 3, 6, true},
		{"uppercase", "First", 4, 0, true},
		{"surrounding whitespace", "  second ", 4, 1, true},
		{"unknown word", "umpteenth", 4, 0, false},
		{"empty", "", 4, 0, false},
		{"not a number", "one-ish", 4, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseOrdinal(tt.word, tt.activeSize)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
