package ranking

// RelevanceConfig holds the weights of the relevance score. The magnitudes are
// policy: raising PopularityFactor lets popular items overtake stronger title
// matches. A nil weight takes its default; an explicit 0 turns that signal off.
type RelevanceConfig struct {
	// Title match, only the strongest of the three applies
	ExactTitleScore    *float64 `yaml:"exact_title_score,omitempty"`    // default: 100
	TitlePrefixScore   *float64 `yaml:"title_prefix_score,omitempty"`   // default: 80
	TitleContainsScore *float64 `yaml:"title_contains_score,omitempty"` // default: 60

	DescriptionScore *float64 `yaml:"description_score,omitempty"` // default: 20
	TagScore         *float64 `yaml:"tag_score,omitempty"`         // default: 30, per matching tag
	CategoryScore    *float64 `yaml:"category_score,omitempty"`    // default: 40

	// Quality signals
	PopularityFactor *float64 `yaml:"popularity_factor,omitempty"` // default: 0.1, times ln(views)
	RatingFactor     *float64 `yaml:"rating_factor,omitempty"`     // default: 5, times rating
}

// weights is a resolved RelevanceConfig.
type weights struct {
	exactTitle, titlePrefix, titleContains float64
	description, tag, category             float64
	popularity, rating                     float64
}

// DefaultRelevanceConfig returns the default weights.
func DefaultRelevanceConfig() *RelevanceConfig {
	return &RelevanceConfig{
		ExactTitleScore:    Weight(100),
		TitlePrefixScore:   Weight(80),
		TitleContainsScore: Weight(60),
		DescriptionScore:   Weight(20),
		TagScore:           Weight(30),
		CategoryScore:      Weight(40),
		PopularityFactor:   Weight(0.1),
		RatingFactor:       Weight(5),
	}
}

// Weight returns a pointer to v for setting a RelevanceConfig field.
func Weight(v float64) *float64 {
	return &v
}

// ApplyDefaults fills unset weights with default values.
func (c *RelevanceConfig) ApplyDefaults() {
	d := DefaultRelevanceConfig()
	fill := func(dst **float64, def *float64) {
		if *dst == nil {
			*dst = Weight(*def)
		}
	}
	fill(&c.ExactTitleScore, d.ExactTitleScore)
	fill(&c.TitlePrefixScore, d.TitlePrefixScore)
	fill(&c.TitleContainsScore, d.TitleContainsScore)
	fill(&c.DescriptionScore, d.DescriptionScore)
	fill(&c.TagScore, d.TagScore)
	fill(&c.CategoryScore, d.CategoryScore)
	fill(&c.PopularityFactor, d.PopularityFactor)
	fill(&c.RatingFactor, d.RatingFactor)
}

func (c *RelevanceConfig) resolve() weights {
	resolved := *c
	resolved.ApplyDefaults()
	return weights{
		exactTitle:    *resolved.ExactTitleScore,
		titlePrefix:   *resolved.TitlePrefixScore,
		titleContains: *resolved.TitleContainsScore,
		description:   *resolved.DescriptionScore,
		tag:           *resolved.TagScore,
		category:      *resolved.CategoryScore,
		popularity:    *resolved.PopularityFactor,
		rating:        *resolved.RatingFactor,
	}
}
