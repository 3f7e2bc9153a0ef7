package docs

// DocsConfig holds configuration for the docs checker.
type DocsConfig struct {
	MaxLineLength      *int  `json:"maxLineLength,omitempty"`
	RequireFrontmatter *bool `json:"requireFrontmatter,omitempty"`
	CheckFormatting    *bool `json:"checkFormatting,omitempty"`
}

// DefaultDocsConfig returns the default configuration: 120 column limit,
// no front matter requirement, formatting round-trip off. Backend repos
// rarely keep canonically formatted markdown, so drift is opt-in.
func DefaultDocsConfig() *DocsConfig {
	maxLen := 120
	return &DocsConfig{
		MaxLineLength: &maxLen,
	}
}
