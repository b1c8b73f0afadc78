package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// SynonymRule collapses category names matching Pattern into Label.
type SynonymRule struct {
	Pattern *regexp.Regexp
	Label   string
}

// SynonymConfig is the config representation of a SynonymRule.
type SynonymConfig struct {
	Pattern string `mapstructure:"pattern"`
	Label   string `mapstructure:"label"`
}

// DefaultSynonyms is the starting rule table.
func DefaultSynonyms() []SynonymRule {
	return []SynonymRule{
		{Pattern: regexp.MustCompile(`(?i)kitchen`), Label: "Kitchen"},
	}
}

// CompileSynonyms builds rules from config entries. Patterns are case-insensitive.
func CompileSynonyms(cfg []SynonymConfig) ([]SynonymRule, error) {
	rules := make([]SynonymRule, 0, len(cfg))
	for _, c := range cfg {
		if strings.TrimSpace(c.Pattern) == "" || strings.TrimSpace(c.Label) == "" {
			return nil, fmt.Errorf("synonym rule needs both pattern and label: %+v", c)
		}
		re, err := regexp.Compile("(?i)" + c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("synonym pattern %q: %w", c.Pattern, err)
		}
		rules = append(rules, SynonymRule{Pattern: re, Label: c.Label})
	}
	return rules, nil
}

// CategoryNormalizer maps raw product category values to display names.
type CategoryNormalizer struct {
	categories dependency.Categories
	synonyms   []SynonymRule
}

// NewCategoryNormalizer returns a normalizer applying synonyms in order.
// A nil rule table means DefaultSynonyms.
func NewCategoryNormalizer(categories dependency.Categories, synonyms []SynonymRule) *CategoryNormalizer {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &CategoryNormalizer{
		categories: categories,
		synonyms:   synonyms,
	}
}

// Normalize returns a non-empty display name for raw. On a store error the
// best available name is still returned together with the error.
func (n *CategoryNormalizer) Normalize(ctx context.Context, raw string) (string, error) {
	name, err := n.lookup(ctx, strings.TrimSpace(raw))
	return n.collapse(name), err
}

func (n *CategoryNormalizer) lookup(ctx context.Context, v string) (string, error) {
	if v == "" {
		return entity.UncategorizedLabel, nil
	}

	if entity.IsObjectIDHex(v) {
		c, err := n.categories.FindCategoryByID(ctx, strings.ToLower(v))
		if err != nil {
			return entity.UncategorizedLabel, fmt.Errorf("category lookup by id: %w", err)
		}
		if c == nil || strings.TrimSpace(c.Name) == "" {
			return entity.UncategorizedLabel, nil
		}
		return strings.TrimSpace(c.Name), nil
	}

	c, err := n.categories.FindCategoryByName(ctx, v)
	if err != nil {
		return v, fmt.Errorf("category lookup by name: %w", err)
	}
	if c != nil && strings.TrimSpace(c.Name) != "" {
		return strings.TrimSpace(c.Name), nil
	}
	return v, nil
}

func (n *CategoryNormalizer) collapse(name string) string {
	for _, r := range n.synonyms {
		if r.Pattern.MatchString(name) {
			return r.Label
		}
	}
	return name
}
