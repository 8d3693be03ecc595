// Package prompt builds bounded-length text prompts for product images from
// catalog item attributes.
package prompt

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"petfood/internal/domain"
)

// MaxLength is the longest prompt the generation backend accepts.
const MaxLength = 512

// FallbackPrompt is returned when composition fails for any reason.
const FallbackPrompt = "A bowl of pet food, professional product photography, clean white background"

// Composer turns a task into a prompt. It holds no mutable state and is safe
// for concurrent use.
type Composer struct {
	vocab  Vocabulary
	logger zerolog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the composer logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Composer) { c.logger = l }
}

// NewComposer returns a Composer over vocab.
func NewComposer(vocab Vocabulary, opts ...Option) *Composer {
	c := &Composer{
		vocab:  vocab,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Vocabulary returns the tables the composer was built with.
func (c *Composer) Vocabulary() *Vocabulary { return &c.vocab }

// Compose returns a prompt of 1..MaxLength bytes. It never fails: any internal
// error yields FallbackPrompt.
func (c *Composer) Compose(task *domain.Task) (out string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("prompt: compose failed, using fallback")
			out = FallbackPrompt
		}
	}()
	if task == nil {
		return FallbackPrompt
	}

	full := c.assemble(task)
	if len(full) > MaxLength {
		c.logger.Debug().Int("length", len(full)).Msg("prompt: truncating")
		full = c.vocab.Truncate(full, MaxLength)
	}
	if strings.TrimSpace(full) == "" || len(full) > MaxLength {
		return FallbackPrompt
	}
	return full
}

// Fragments returns the composed prompt split into classified sentences,
// before any truncation.
func (c *Composer) Fragments(task *domain.Task) []Fragment {
	return c.vocab.Split(c.assemble(task))
}

func (c *Composer) assemble(task *domain.Task) string {
	category := c.category(task.Category)
	sub := c.subType(task.MaterialType)

	var components []string
	components = append(components, fmt.Sprintf(c.vocab.SubjectFormat, c.bowl(category)))
	if ch := c.characteristics(task, category, sub); ch != "" {
		components = append(components, ch)
	}
	if visuals := c.ingredientVisuals(task.Attributes); len(visuals) > 0 {
		components = append(components, "featuring "+strings.Join(visuals, ", "))
	}

	base := strings.Join(components, sentenceSep)
	return base + sentenceSep + strings.Join(c.styling(task, category, sub), ", ")
}

// normalize case-folds s. Casers keep state, so each call gets its own.
func (c *Composer) normalize(s string) string {
	return strings.TrimSpace(cases.Lower(language.Und).String(s))
}

// category resolves an item category: exact match, then alias, then a
// substring match in declaration order, then the default.
func (c *Composer) category(raw string) CategoryContext {
	name := c.normalize(raw)
	if ctx, ok := c.vocab.Categories[name]; ok {
		return ctx
	}
	if name != "" {
		for _, alias := range c.vocab.CategoryAliases {
			if strings.Contains(name, alias.Keyword) {
				if ctx, ok := c.vocab.Categories[alias.Text]; ok {
					return ctx
				}
			}
		}
		for _, key := range c.vocab.CategoryOrder {
			if strings.Contains(name, key) || strings.Contains(key, name) {
				if ctx, ok := c.vocab.Categories[key]; ok {
					return ctx
				}
			}
		}
	}
	return c.vocab.Categories[c.vocab.DefaultCategory]
}

func (c *Composer) subType(raw string) SubType {
	name := c.normalize(raw)
	if name != "" {
		for _, st := range c.vocab.SubTypes {
			if st.Name == name {
				return st
			}
		}
		for _, st := range c.vocab.SubTypes {
			if strings.Contains(name, st.Name) || strings.Contains(st.Name, name) {
				return st
			}
		}
	}
	if len(c.vocab.SubTypes) == 0 {
		return SubType{}
	}
	return c.vocab.SubTypes[0]
}

func (c *Composer) bowl(ctx CategoryContext) string {
	if ctx.Bowl != "" {
		return ctx.Bowl
	}
	return c.vocab.DefaultBowl
}

func (c *Composer) characteristics(task *domain.Task, category CategoryContext, sub SubType) string {
	var parts []string
	if sub.Texture != "" {
		parts = append(parts, sub.Texture)
	}
	if category.Characteristics != "" && !strings.Contains(sub.Texture, category.Characteristics) {
		parts = append(parts, category.Characteristics)
	}
	text := c.normalize(task.ItemName + " " + task.Description)
	for _, hint := range c.vocab.SizeHints {
		if strings.Contains(text, hint.Keyword) {
			parts = append(parts, hint.Text)
			break
		}
	}
	return strings.Join(parts, ", ")
}

// ingredientVisuals maps up to MaxIngredients attributes to visual phrases, in
// attribute order. A phrase already contained in the chosen ones is skipped.
func (c *Composer) ingredientVisuals(attrs []string) []string {
	limit := c.vocab.MaxIngredients
	if limit <= 0 {
		limit = 3
	}
	var visuals []string
	for _, attr := range attrs {
		if len(visuals) >= limit {
			break
		}
		name := c.normalize(attr)
		if name == "" {
			continue
		}
		for _, v := range c.vocab.IngredientVisuals {
			if strings.Contains(name, v.Keyword) && !strings.Contains(strings.Join(visuals, " "), v.Text) {
				visuals = append(visuals, v.Text)
				break
			}
		}
	}
	return visuals
}

// Premium reports whether the item is styled as a premium product. Budget
// wording vetoes every premium signal.
func (c *Composer) Premium(task *domain.Task) bool {
	text := c.normalize(task.ItemName + " " + task.Description)
	if containsAny(text, c.vocab.BudgetKeywords) {
		return false
	}
	if containsAny(text, c.vocab.PremiumKeywords) {
		return true
	}
	threshold, ok := c.vocab.PriceThresholds[c.normalize(task.Category)]
	if !ok {
		threshold = c.vocab.DefaultPriceThreshold
	}
	if task.Price > threshold {
		return true
	}
	ingredients := c.normalize(strings.Join(task.Attributes, " "))
	return containsAny(ingredients, c.vocab.PremiumIngredients)
}

func (c *Composer) styling(task *domain.Task, category CategoryContext, sub SubType) []string {
	var out []string
	if c.Premium(task) {
		out = append(out, c.vocab.PremiumStyling...)
	} else {
		out = append(out, c.vocab.StandardStyling...)
	}
	if category.Presentation != "" {
		out = append(out, category.Presentation)
	}
	if sub.Lighting != "" && !strings.Contains(strings.Join(out, " "), sub.Lighting) {
		out = append(out, sub.Lighting)
	}
	return append(out, c.vocab.ClosingStyling...)
}
