package mood

// Tags is the closed set of context tags an entry may carry.
var Tags = []string{"work", "family", "friends", "health", "sleep", "exercise", "weather", "news"}

var allowedTags = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Tags))
	for _, t := range Tags {
		m[t] = struct{}{}
	}
	return m
}()

func IsAllowedTag(tag string) bool {
	_, ok := allowedTags[tag]
	return ok
}

// dedupeTags keeps the first occurrence of each tag. Never returns nil.
func dedupeTags(tags []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(tags))

	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out
}
