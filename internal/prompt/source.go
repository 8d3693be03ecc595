package prompt

import (
	"strings"

	"petfood/internal/domain"
)

// Kind records where a prompt came from.
type Kind string

const (
	KindSeed    Kind = "seed"
	KindDynamic Kind = "dynamic"
)

// Resolved is a prompt together with its origin.
type Resolved struct {
	Text string
	Kind Kind
}

// Source produces the prompt for a task.
type Source interface {
	Resolve(task *domain.Task) Resolved
}

// Dynamic composes every prompt from the task attributes.
type Dynamic struct {
	Composer *Composer
}

func (d Dynamic) Resolve(task *domain.Task) Resolved {
	return Resolved{Text: d.Composer.Compose(task), Kind: KindDynamic}
}

// SeedPrompt is a hand-written prompt for a known catalog product.
type SeedPrompt struct {
	Product string
	Prompt  string
	Style   string
}

// Text renders the full prompt sent to the backend.
func (s SeedPrompt) Text() string {
	return s.Prompt + " " + s.Style + ", professional quality."
}

// SeedTable indexes seed prompts by case-folded product name.
type SeedTable map[string]SeedPrompt

// NewSeedTable builds a table from prompts.
func NewSeedTable(prompts ...SeedPrompt) SeedTable {
	t := make(SeedTable, len(prompts))
	for _, p := range prompts {
		t[seedKey(p.Product)] = p
	}
	return t
}

// Lookup finds the seed prompt for an item name, ignoring case and
// surrounding whitespace.
func (t SeedTable) Lookup(name string) (SeedPrompt, bool) {
	p, ok := t[seedKey(name)]
	return p, ok
}

func seedKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// DefaultSeeds returns the prompts for the products shipped with the catalog
// seed data.
func DefaultSeeds() SeedTable {
	return NewSeedTable(
		SeedPrompt{
			Product: "Beef and Turkey Kibbles",
			Prompt:  "Premium dry dog kibble for puppies in white ceramic bowl. Small brown bone-shaped pieces with visible meat. Clean wooden surface background.",
			Style:   "product photography, professional lighting",
		},
		SeedPrompt{
			Product: "Raw Chicken Bites",
			Prompt:  "Tender chicken pieces in ceramic bowl with natural broth. Fresh wet dog food with visible meat chunks.",
			Style:   "food photography, warm lighting",
		},
		SeedPrompt{
			Product: "Puppy Training Treats",
			Prompt:  "Small golden-brown training treats scattered on clean white surface. Soft, bite-sized treats for puppies.",
			Style:   "product photography, bright lighting",
		},
		SeedPrompt{
			Product: "Salmon and Tuna Delight",
			Prompt:  "Gourmet wet cat food with salmon and tuna chunks in elegant white bowl. Pink fish flakes in light sauce.",
			Style:   "gourmet food photography, elegant presentation",
		},
		SeedPrompt{
			Product: "Kitten Growth Formula",
			Prompt:  "Premium dry kitten food in modern ceramic bowl. Small triangular golden-brown kibble pieces.",
			Style:   "product photography, clean lighting",
		},
		SeedPrompt{
			Product: "Catnip Kitten Treats",
			Prompt:  "Fish-shaped kitten treats with light green catnip tint arranged on white surface. Crunchy treats.",
			Style:   "product photography, playful presentation",
		},
		SeedPrompt{
			Product: "Carrot and Herb Crunchies",
			Prompt:  "Orange rabbit treats with carrot pieces and green herb flecks in wooden bowl. Natural wholesome pellets.",
			Style:   "natural product photography, rustic presentation",
		},
		SeedPrompt{
			Product: "Timothy Hay Pellets",
			Prompt:  "Green-brown cylindrical hay pellets in wooden bowl. Compressed timothy hay for rabbits.",
			Style:   "natural product photography, organic presentation",
		},
		SeedPrompt{
			Product: "Fresh Veggie Mix",
			Prompt:  "Colorful fresh vegetables in ceramic bowl. Diced carrots, leafy greens, and bell pepper pieces.",
			Style:   "fresh food photography, vibrant colors",
		},
	)
}

// SeedFirst returns the seed prompt for known products and defers to
// Fallback for everything else.
type SeedFirst struct {
	Seeds    SeedTable
	Fallback Source
}

func (s SeedFirst) Resolve(task *domain.Task) Resolved {
	if p, ok := s.Seeds.Lookup(task.ItemName); ok {
		text := p.Text()
		if len(text) > MaxLength {
			text = clip(text, MaxLength)
		}
		return Resolved{Text: text, Kind: KindSeed}
	}
	return s.Fallback.Resolve(task)
}

// Selector picks the source for each task. Seed data and non-manual items
// try the seed table first when seed lookup is enabled; manual creations are
// always composed.
type Selector struct {
	Seeded     Source
	Dynamic    Source
	SeedLookup bool
}

// NewSelector wires the default seed table in front of composer.
func NewSelector(composer *Composer, seedLookup bool) *Selector {
	dynamic := Dynamic{Composer: composer}
	return &Selector{
		Seeded:     SeedFirst{Seeds: DefaultSeeds(), Fallback: dynamic},
		Dynamic:    dynamic,
		SeedLookup: seedLookup,
	}
}

func (s *Selector) Resolve(task *domain.Task) Resolved {
	if s.useSeeds(task) {
		return s.Seeded.Resolve(task)
	}
	return s.Dynamic.Resolve(task)
}

func (s *Selector) useSeeds(task *domain.Task) bool {
	if !s.SeedLookup {
		return false
	}
	if seed, _ := task.Flag(domain.MetaIsSeedData); seed {
		return true
	}
	manual, _ := task.Flag(domain.MetaIsManualCreation)
	return !manual
}
