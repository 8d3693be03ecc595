package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfood/internal/domain"
)

func TestComposeLengthBounds(t *testing.T) {
	c := NewComposer(DefaultVocabulary())

	tasks := []*domain.Task{
		{},
		{ItemName: "Beef Kibble", Category: "dog", MaterialType: "dry", Attributes: []string{"beef", "carrot"}},
		{ItemName: "Gourmet Salmon Pate", Category: "Kitten", MaterialType: "Wet", Description: "premium wild-caught salmon", Price: 99},
		{ItemName: "Timothy Hay Pellets", Category: "rabbit", MaterialType: "pellet", Attributes: []string{"hay"}},
		{ItemName: strings.Repeat("Extra ", 200), Description: strings.Repeat("chunky morsel ", 200), Attributes: []string{
			"chicken", "beef", "salmon", "tuna", "turkey", "lamb", "duck", "carrot", "peas", "rice",
		}},
	}
	for _, task := range tasks {
		got := c.Compose(task)
		assert.GreaterOrEqual(t, len(got), 1)
		assert.LessOrEqual(t, len(got), MaxLength)
	}

	assert.Equal(t, FallbackPrompt, c.Compose(nil))
}

func TestComposeBeefKibble(t *testing.T) {
	c := NewComposer(DefaultVocabulary())
	got := c.Compose(&domain.Task{
		ItemName:     "Beef Kibble",
		Category:     "dog",
		MaterialType: "dry",
		Attributes:   []string{"beef", "carrot"},
	})

	assert.True(t, strings.HasPrefix(got, "Premium pet food in sturdy ceramic dog bowl. "), got)
	assert.Contains(t, got, "crispy, crunchy kibble")
	assert.Contains(t, got, "kibble pieces")
	assert.Contains(t, got, "featuring rich, dark meat chunks, bright orange carrot pieces")
	assert.Contains(t, got, "clean product photography")
	assert.True(t, strings.HasSuffix(got, "appetizing and professional"), got)
}

func TestComposeCategoryMatching(t *testing.T) {
	c := NewComposer(DefaultVocabulary())
	tests := []struct {
		category string
		bowl     string
	}{
		{"puppy", "small ceramic puppy bowl"},
		{"KITTEN", "elegant small ceramic bowl"},
		{"Rabbit", "natural wooden bowl"},
		{"Puppy Large Breed", "small ceramic puppy bowl"},
		{"adult cat", "sleek ceramic cat bowl"},
		{"hamster", "sturdy ceramic dog bowl"},
		{"", "sturdy ceramic dog bowl"},
	}
	for _, tc := range tests {
		t.Run(tc.category, func(t *testing.T) {
			got := c.Compose(&domain.Task{Category: tc.category})
			assert.True(t, strings.HasPrefix(got, "Premium pet food in "+tc.bowl+"."), got)
		})
	}
}

func TestComposeSubTypeMatching(t *testing.T) {
	c := NewComposer(DefaultVocabulary())

	assert.Contains(t, c.Compose(&domain.Task{MaterialType: "Wet"}), "moist, tender chunks in sauce")
	assert.Contains(t, c.Compose(&domain.Task{MaterialType: "treat"}), "appealing, bite-sized treats")
	assert.Contains(t, c.Compose(&domain.Task{MaterialType: "freeze-dried raw"}), "fresh, natural meat pieces")
	assert.Contains(t, c.Compose(&domain.Task{MaterialType: "unknown"}), "crispy, crunchy kibble")
}

func TestIngredientVisualsDedupeAndLimit(t *testing.T) {
	c := NewComposer(DefaultVocabulary())
	got := c.Compose(&domain.Task{
		Attributes: []string{"Chicken", "chicken meal", "beef", "salmon", "tuna"},
	})

	assert.Contains(t, got, "featuring golden-brown meat pieces, rich, dark meat chunks, pink, flaky fish pieces")
	assert.NotContains(t, got, "light pink fish flakes")
	assert.Equal(t, 1, strings.Count(got, "golden-brown meat pieces"))
}

func TestIngredientVisualsSkipContainedPhrases(t *testing.T) {
	vocab := DefaultVocabulary()
	vocab.IngredientVisuals = []Phrase{
		{Keyword: "hen", Text: "golden meat pieces"},
		{Keyword: "chick", Text: "meat pieces"},
		{Keyword: "cod", Text: "white fish flakes"},
	}
	c := NewComposer(vocab)

	tests := []struct {
		name  string
		attrs []string
		want  []string
	}{
		{"contained phrase dropped", []string{"hen", "chick"}, []string{"golden meat pieces"}},
		{"longer phrase kept after shorter", []string{"chick", "hen"}, []string{"meat pieces", "golden meat pieces"}},
		{"unrelated phrase kept", []string{"hen", "chick", "cod"}, []string{"golden meat pieces", "white fish flakes"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.ingredientVisuals(tc.attrs))
		})
	}
}

func TestPremium(t *testing.T) {
	c := NewComposer(DefaultVocabulary())
	tests := []struct {
		name string
		task domain.Task
		want bool
	}{
		{"plain", domain.Task{ItemName: "Chicken Bites", Category: "dog", Price: 10}, false},
		{"keyword in name", domain.Task{ItemName: "Gourmet Bites"}, true},
		{"keyword in description", domain.Task{Description: "Organic recipe"}, true},
		{"price over category threshold", domain.Task{Category: "dog", Price: 31}, true},
		{"price under category threshold", domain.Task{Category: "dog", Price: 29}, false},
		{"cat threshold", domain.Task{Category: "cat", Price: 26}, true},
		{"default threshold", domain.Task{Category: "ferret", Price: 26}, true},
		{"premium ingredient", domain.Task{Attributes: []string{"Duck"}}, true},
		{"budget vetoes keyword", domain.Task{ItemName: "Gourmet Budget Bites"}, false},
		{"budget vetoes price", domain.Task{Description: "economy pack", Category: "dog", Price: 80}, false},
		{"budget vetoes ingredient", domain.Task{ItemName: "Value Salmon", Attributes: []string{"salmon"}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := tc.task
			assert.Equal(t, tc.want, c.Premium(&task))
		})
	}
}

func TestComposeStyling(t *testing.T) {
	c := NewComposer(DefaultVocabulary())

	premium := c.Compose(&domain.Task{ItemName: "Gourmet Duck", Category: "kitten", MaterialType: "wet"})
	assert.Contains(t, premium, "luxury product photography, professional studio lighting, premium presentation, refined, gentle presentation, warm lighting to enhance richness")

	standard := c.Compose(&domain.Task{ItemName: "Chicken Bites", Category: "dog", MaterialType: "dry"})
	assert.Contains(t, standard, "clean product photography, natural lighting, appealing presentation")
	assert.Contains(t, standard, "clean white background, high resolution, appetizing and professional")
}

func TestComposeTruncatesOversizedVocabulary(t *testing.T) {
	vocab := DefaultVocabulary()
	dog := vocab.Categories["dog"]
	dog.Characteristics = strings.Repeat("very hearty chunk description, ", 30)
	vocab.Categories["dog"] = dog

	got := NewComposer(vocab).Compose(&domain.Task{Category: "dog", Attributes: []string{"beef"}})
	require.LessOrEqual(t, len(got), MaxLength)
	assert.True(t, strings.HasPrefix(got, "Premium pet food in sturdy ceramic dog bowl. "), got)
}

func TestComposeKeepsRunesIntact(t *testing.T) {
	vocab := DefaultVocabulary()
	dog := vocab.Categories["dog"]
	dog.Bowl = strings.Repeat("süßer Napf ", 80)
	vocab.Categories["dog"] = dog

	got := NewComposer(vocab).Compose(&domain.Task{})
	require.LessOrEqual(t, len(got), MaxLength)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."), got)
}
