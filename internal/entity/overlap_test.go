package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akazawan/libris/pkg/models"
)

func TestResolveOverlap(t *testing.T) {
	title := models.EntitySpan{Kind: models.EntityTitle, Text: "the anne frank story", Start: 5, End: 25}

	tests := []struct {
		name     string
		persons  []models.EntitySpan
		values   []string
		wantDrop []string
	}{
		{
			name: "person inside title is dropped",
			persons: []models.EntitySpan{
				{Kind: models.EntityPerson, Text: "anne frank", Start: 9, End: 19},
			},
			values:   []string{"anne frank"},
			wantDrop: []string{"anne frank"},
		},
		{
			name: "person outside title is kept",
			persons: []models.EntitySpan{
				{Kind: models.EntityPerson, Text: "tolkien", Start: 29, End: 36},
			},
			values:   []string{"tolkien"},
			wantDrop: nil,
		},
		{
			name: "mixed inside and outside",
			persons: []models.EntitySpan{
				{Kind: models.EntityPerson, Text: "anne frank", Start: 9, End: 19},
				{Kind: models.EntityPerson, Text: "tolkien", Start: 29, End: 36},
			},
			values:   []string{"anne frank", "tolkien"},
			wantDrop: []string{"anne frank"},
		},
		{
			name: "partial overlap is not containment",
			persons: []models.EntitySpan{
				{Kind: models.EntityPerson, Text: "frank story x", Start: 14, End: 27},
			},
			values:   []string{"frank story x"},
			wantDrop: nil,
		},
		{
			name: "span equal to title counts as contained",
			persons: []models.EntitySpan{
				{Kind: models.EntityPerson, Text: "the anne frank story", Start: 5, End: 25},
			},
			values:   []string{"the anne frank story"},
			wantDrop: []string{"the anne frank story"},
		},
		{
			name:     "no persons",
			persons:  nil,
			values:   nil,
			wantDrop: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drop := ResolveOverlap(title, tt.persons, tt.values)
			assert.Len(t, drop, len(tt.wantDrop))
			for _, v := range tt.wantDrop {
				assert.Contains(t, drop, v)
			}
		})
	}
}

func TestFilterPersons(t *testing.T) {
	values := []string{"anne frank", "tolkien", "anne frank"}
	drop := map[string]struct{}{"anne frank": {}}

	assert.Equal(t, []string{"tolkien"}, FilterPersons(values, drop))
	assert.Equal(t, values, FilterPersons(values, nil))
	assert.Empty(t, FilterPersons(nil, drop))
}
