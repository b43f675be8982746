// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"strings"
	"time"
)

// Filter holds the keyword and date predicates applied to feed candidates.
// The same target date drives both the query window and the post-fetch date
// check, so the two can never disagree.
type Filter struct {
	keywords []string
	target   time.Time
}

// NewFilter builds a Filter from the user-supplied keyword list and the
// target submission date. Keywords are case-folded once at construction.
func NewFilter(keywords []string, targetDate time.Time) Filter {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		lowered = append(lowered, strings.ToLower(kw))
	}
	return Filter{keywords: lowered, target: targetDate.UTC()}
}

// Matches reports whether the abstract, case-folded, contains at least one
// keyword as a substring. An empty keyword list matches nothing: a
// misconfigured run should look empty, not match everything.
func (f Filter) Matches(abstract string) bool {
	if len(f.keywords) == 0 {
		return false
	}
	lowered := strings.ToLower(abstract)
	for _, kw := range f.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// SameDay reports whether t falls on the target date exactly. Both sides are
// compared as UTC calendar dates; the feed publishes timestamps in UTC.
func (f Filter) SameDay(t time.Time) bool {
	ty, tm, td := t.UTC().Date()
	gy, gm, gd := f.target.Date()
	return ty == gy && tm == gm && td == gd
}

// Keywords returns the case-folded keyword list the filter was built with.
func (f Filter) Keywords() []string {
	return f.keywords
}
