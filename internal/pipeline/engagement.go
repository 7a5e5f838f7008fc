package pipeline

import "strings"

var defaultHashtags = []string{"#linkedin", "#professional", "#business"}

// AnalyzeEngagement scores a composed post with a deterministic word-count
// heuristic. No network calls, no randomness: the same text always yields the
// same report.
func AnalyzeEngagement(text string) EngagementReport {
	words := strings.Fields(text)
	score := float64(len(words)) / 30
	if score > 100 {
		score = 100
	}

	suggestions := []string{}
	if len(words) < 50 {
		suggestions = append(suggestions, "Consider adding more content for better engagement")
	} else if len(words) > 500 {
		suggestions = append(suggestions, "Post might be too long for optimal engagement")
	}
	if !strings.Contains(text, "#") {
		suggestions = append(suggestions, "Consider adding relevant hashtags")
	}

	hashtags := extractHashtags(words)
	if len(hashtags) == 0 {
		hashtags = append([]string(nil), defaultHashtags...)
	}

	return EngagementReport{
		Score:       score,
		Suggestions: suggestions,
		Hashtags:    hashtags,
	}
}

func extractHashtags(words []string) []string {
	var tags []string
	for _, w := range words {
		if strings.HasPrefix(w, "#") {
			tags = append(tags, w)
		}
	}
	return tags
}
