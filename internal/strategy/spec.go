package strategy

import (
	"fmt"
	"sort"
	"strings"
)

// Spec is a hybrid strategy: free-text conditions plus optional indicator triggers
type Spec struct {
	EntryConditions    []string `json:"entry_conditions" yaml:"entry_conditions"`
	ExitConditions     []string `json:"exit_conditions" yaml:"exit_conditions"`
	Indicators         []string `json:"indicators" yaml:"indicators"`
	RawExcerpt         string   `json:"raw_excerpt" yaml:"raw_excerpt"`
	SelectedIndicators []string `json:"selected_indicators" yaml:"selected_indicators"`
}

// Normalize trims every text, drops empty conditions and turns the two
// indicator sets into sorted, de-duplicated lists. Condition order is kept.
func (s Spec) Normalize() Spec {
	out := Spec{
		EntryConditions: trimAll(s.EntryConditions),
		ExitConditions:  trimAll(s.ExitConditions),
		Indicators:      sortedSet(s.Indicators, func(v string) string { return strings.TrimSpace(v) }),
		RawExcerpt:      strings.TrimSpace(s.RawExcerpt),
	}
	out.SelectedIndicators = sortedSet(s.SelectedIndicators, func(v string) string {
		if key, ok := ParseIndicatorKey(v); ok {
			return string(key)
		}
		return strings.ToLower(strings.TrimSpace(v))
	})
	return out
}

// Validate rejects selected indicators outside the supported catalog
func (s Spec) Validate() error {
	var unknown []string
	for _, v := range s.SelectedIndicators {
		if _, ok := ParseIndicatorKey(v); !ok {
			unknown = append(unknown, v)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown selected indicators: %s (supported: %s)",
			strings.Join(unknown, ", "), strings.Join(SupportedIndicatorKeys(), ", "))
	}
	return nil
}

// HasCustomStrategy reports whether the user supplied any rule text
func (s Spec) HasCustomStrategy() bool {
	return len(trimAll(s.EntryConditions)) > 0 ||
		len(trimAll(s.ExitConditions)) > 0 ||
		len(trimAll(s.Indicators)) > 0 ||
		strings.TrimSpace(s.RawExcerpt) != ""
}

// IsEmpty reports whether the strategy carries neither rules nor indicator triggers
func (s Spec) IsEmpty() bool {
	return !s.HasCustomStrategy() && len(trimAll(s.SelectedIndicators)) == 0
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func sortedSet(values []string, canon func(string) string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = canon(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
