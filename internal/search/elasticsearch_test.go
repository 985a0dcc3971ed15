package search

import (
	"testing"

	"meridian/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildSearchQuery(t *testing.T) {
	all := buildSearchQuery("")
	assert.Contains(t, all, "match_all")

	q := buildSearchQuery("rome")
	mm, ok := q["multi_match"].(map[string]interface{})
	if assert.True(t, ok) {
		assert.Equal(t, "rome", mm["query"])
		assert.Contains(t, mm["fields"], "ports")
	}
}

func TestBuildSortQuery(t *testing.T) {
	assert.Len(t, buildSortQuery(""), 1)
	sort := buildSortQuery("alaska")
	assert.Len(t, sort, 2)
	assert.Contains(t, sort[0], "_score")
}

func TestNewVoyageDocument(t *testing.T) {
	doc := newVoyageDocument(models.Voyage{
		ID: "v3", Title: "Eternal City Escape", Location: "Europe", Ship: "Aurora",
		Itinerary: []string{"Rome"}, Price: 999, Nights: 5, Rating: 4.7,
	})

	assert.Equal(t, "Europe", doc.Region)
	assert.Equal(t, []string{"Rome"}, doc.Ports)
	assert.Equal(t, "Aurora", doc.Ship)
}
