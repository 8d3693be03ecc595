package prompt

// CategoryContext describes how a pet category is presented in the shot.
type CategoryContext struct {
	Bowl            string
	Characteristics string
	Presentation    string
	Colors          string
}

// SubType is a food sub-type (dry, wet, ...) with its texture and lighting hints.
type SubType struct {
	Name       string
	Texture    string
	Appearance string
	Lighting   string
}

// Phrase maps a keyword found in item text to the phrase used in the prompt.
type Phrase struct {
	Keyword string
	Text    string
}

// Vocabulary holds every lookup table the composer consults. Slices are
// ordered: the first match wins. A Vocabulary is treated as read-only once
// handed to NewComposer.
type Vocabulary struct {
	Categories        map[string]CategoryContext
	CategoryOrder     []string
	CategoryAliases   []Phrase
	DefaultCategory   string
	SubTypes          []SubType
	SizeHints         []Phrase
	IngredientVisuals []Phrase
	MaxIngredients    int

	PremiumKeywords       []string
	PremiumIngredients    []string
	BudgetKeywords        []string
	PriceThresholds       map[string]float64
	DefaultPriceThreshold float64

	SubjectFormat   string
	DefaultBowl     string
	PremiumStyling  []string
	StandardStyling []string
	ClosingStyling  []string

	EssentialKeywords []string
	ImportantKeywords []string
}

// DefaultVocabulary returns the catalog's built-in tables. Each call returns a
// fresh copy so callers may adjust it before constructing a Composer.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Categories: map[string]CategoryContext{
			"puppy": {
				Bowl:            "small ceramic puppy bowl",
				Characteristics: "small, bite-sized pieces",
				Presentation:    "playful, nurturing presentation",
				Colors:          "warm, inviting colors",
			},
			"kitten": {
				Bowl:            "elegant small ceramic bowl",
				Characteristics: "fine, delicate pieces",
				Presentation:    "refined, gentle presentation",
				Colors:          "soft, sophisticated colors",
			},
			"bunny": {
				Bowl:            "natural wooden bowl",
				Characteristics: "natural, wholesome pellets and pieces",
				Presentation:    "organic, rustic presentation",
				Colors:          "earthy, natural tones",
			},
			"dog": {
				Bowl:            "sturdy ceramic dog bowl",
				Characteristics: "hearty, satisfying pieces",
				Presentation:    "warm, homely presentation",
				Colors:          "rich, natural colors",
			},
			"cat": {
				Bowl:            "sleek ceramic cat bowl",
				Characteristics: "small, savory pieces",
				Presentation:    "clean, elegant presentation",
				Colors:          "soft, neutral colors",
			},
		},
		CategoryOrder:   []string{"puppy", "kitten", "bunny", "dog", "cat"},
		CategoryAliases: []Phrase{{Keyword: "rabbit", Text: "bunny"}},
		DefaultCategory: "dog",
		SubTypes: []SubType{
			{
				Name:       "dry",
				Texture:    "crispy, crunchy kibble",
				Appearance: "individual pieces clearly visible",
				Lighting:   "bright, clean lighting to show texture",
			},
			{
				Name:       "wet",
				Texture:    "moist, tender chunks in sauce",
				Appearance: "rich, glossy appearance with visible meat",
				Lighting:   "warm lighting to enhance richness",
			},
			{
				Name:       "treats",
				Texture:    "appealing, bite-sized treats",
				Appearance: "scattered artfully around bowl",
				Lighting:   "bright, inviting lighting",
			},
			{
				Name:       "raw",
				Texture:    "fresh, natural meat pieces",
				Appearance: "premium, restaurant-quality presentation",
				Lighting:   "natural lighting to show freshness",
			},
		},
		SizeHints: []Phrase{
			{"small", "small-sized pieces"},
			{"mini", "mini kibble pieces"},
			{"bite", "bite-sized pieces"},
			{"chunk", "chunky pieces"},
			{"shred", "shredded texture"},
			{"flake", "flaky texture"},
			{"pellet", "pellet-shaped pieces"},
			{"kibble", "kibble pieces"},
			{"morsel", "tender morsels"},
		},
		IngredientVisuals: []Phrase{
			{"chicken", "golden-brown meat pieces"},
			{"beef", "rich, dark meat chunks"},
			{"salmon", "pink, flaky fish pieces"},
			{"tuna", "light pink fish flakes"},
			{"turkey", "light brown, tender meat"},
			{"lamb", "reddish-brown meat pieces"},
			{"duck", "rich, dark meat with natural oils"},
			{"carrot", "bright orange carrot pieces"},
			{"sweet potato", "orange sweet potato chunks"},
			{"peas", "vibrant green pea pieces"},
			{"spinach", "dark green leafy flecks"},
			{"broccoli", "small green broccoli pieces"},
			{"pumpkin", "orange pumpkin chunks"},
			{"rice", "white rice grains"},
			{"oats", "golden oat flakes"},
			{"barley", "light brown barley grains"},
			{"quinoa", "small, round quinoa seeds"},
			{"blueberry", "dark blue berry pieces"},
			{"cranberry", "red berry pieces"},
			{"apple", "light fruit pieces"},
			{"herbs", "green herb flecks"},
			{"catnip", "light green catnip tint"},
		},
		MaxIngredients: 3,
		PremiumKeywords: []string{
			"premium", "gourmet", "organic", "natural", "grain-free",
			"free-range", "wild-caught", "artisan", "holistic",
		},
		PremiumIngredients: []string{"salmon", "tuna", "lamb", "duck", "venison", "bison", "truffle"},
		BudgetKeywords:     []string{"affordable", "budget", "value", "economy", "basic"},
		PriceThresholds: map[string]float64{
			"puppy":  25.0,
			"kitten": 20.0,
			"bunny":  20.0,
			"rabbit": 20.0,
			"dog":    30.0,
			"cat":    25.0,
		},
		DefaultPriceThreshold: 25.0,
		SubjectFormat:         "Premium pet food in %s",
		DefaultBowl:           "ceramic bowl",
		PremiumStyling: []string{
			"luxury product photography",
			"professional studio lighting",
			"premium presentation",
		},
		StandardStyling: []string{
			"clean product photography",
			"natural lighting",
			"appealing presentation",
		},
		ClosingStyling: []string{
			"clean white background",
			"high resolution",
			"appetizing and professional",
		},
		EssentialKeywords: []string{
			"premium pet food", "bowl", "featuring", "chunks", "pieces",
			"kibble", "meat", "fish", "chicken", "beef", "salmon",
		},
		ImportantKeywords: []string{
			"photography", "lighting", "presentation", "professional",
			"clean", "background", "high resolution",
		},
	}
}
