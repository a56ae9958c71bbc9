package topic

import "strings"

// DefaultName is the topic the relay answers questions about out of the box.
const DefaultName = "astronomy"

// DefaultKeywords gate which questions are forwarded upstream.
var DefaultKeywords = []string{
	"planet", "star", "galaxy", "black hole", "nebula", "cosmology",
	"telescope", "universe", "astronomy", "orbit", "exoplanet", "big bang",
}

// Filter is an immutable keyword set used to decide if a question is on-topic.
type Filter struct {
	name     string
	keywords []string
}

// New builds a filter. Keywords are lowercased and trimmed; empty and duplicate
// entries are dropped while the first-seen order is kept.
func New(name string, keywords []string) *Filter {
	seen := make(map[string]struct{}, len(keywords))
	kept := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		kept = append(kept, kw)
	}
	if name = strings.TrimSpace(name); name == "" {
		name = DefaultName
	}
	return &Filter{name: name, keywords: kept}
}

// Default returns the astronomy filter.
func Default() *Filter {
	return New(DefaultName, DefaultKeywords)
}

// Name is the human-readable topic, e.g. "astronomy".
func (f *Filter) Name() string {
	return f.name
}

// Keywords returns a copy of the keyword set.
func (f *Filter) Keywords() []string {
	out := make([]string, len(f.keywords))
	copy(out, f.keywords)
	return out
}

// Allows reports whether any keyword occurs in the lowercased question.
func (f *Filter) Allows(question string) bool {
	if question == "" {
		return false
	}
	q := strings.ToLower(question)
	for _, kw := range f.keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// Matches lists every keyword found in the question, in keyword-set order.
func (f *Filter) Matches(question string) []string {
	if question == "" {
		return nil
	}
	q := strings.ToLower(question)
	var found []string
	for _, kw := range f.keywords {
		if strings.Contains(q, kw) {
			found = append(found, kw)
		}
	}
	return found
}
