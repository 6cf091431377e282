package catalog

// PromptEntry is the reduced view of a complex that is embedded into the
// search assistant's system prompt.
type PromptEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	District    string   `json:"district"`
	PriceFrom   *int64   `json:"priceFrom"`
	PriceTo     *int64   `json:"priceTo"`
	Deadline    string   `json:"deadline"`
	Rating      float64  `json:"rating"`
	Reviews     int      `json:"reviews"`
	Features    []string `json:"features"`
	Description string   `json:"description"`
	Developer   string   `json:"developer,omitempty"`
}

// NewPromptEntry reduces a complex to its prompt entry.
func NewPromptEntry(c Complex) PromptEntry {
	features := c.Features
	if features == nil {
		features = []string{}
	}

	entry := PromptEntry{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		District:    c.District,
		PriceFrom:   c.PriceFrom,
		PriceTo:     c.PriceTo,
		Deadline:    c.CompletionDate,
		Rating:      c.Rating,
		Reviews:     c.ReviewsCount,
		Features:    features,
		Description: c.Description,
	}
	if c.Developer != nil {
		entry.Developer = c.Developer.Name
	}
	return entry
}

// PromptEntries reduces complexes in order.
func PromptEntries(complexes []Complex) []PromptEntry {
	entries := make([]PromptEntry, 0, len(complexes))
	for _, c := range complexes {
		entries = append(entries, NewPromptEntry(c))
	}
	return entries
}
