package pipeline

// Fact is a single research finding, optionally attributed to a source.
type Fact struct {
	Text   string `json:"text"`
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
	Date   string `json:"date,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Stat is a notable statistic surfaced by research.
type Stat struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// FactBundle is the structured output of the research stage. Verified facts
// come from caller-supplied links; additional facts from open web search.
type FactBundle struct {
	Verified   []Fact `json:"verified,omitempty"`
	Additional []Fact `json:"additional,omitempty"`
	Stats      []Stat `json:"stats,omitempty"`
	Summary    string `json:"summary,omitempty"`
}

// ComposedPost is the generated post text, guaranteed no longer than
// MaxLength characters.
type ComposedPost struct {
	Text      string
	MaxLength int
}

// EngagementReport is the deterministic local scoring of a composed post.
// Field names follow the response envelope.
type EngagementReport struct {
	Score       float64  `json:"engagement_score"`
	Suggestions []string `json:"suggested_improvements"`
	Hashtags    []string `json:"hashtag_suggestions"`
}
