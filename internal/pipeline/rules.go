package pipeline

import (
	"regexp"
	"strings"
)

// Rule names, in application order.
const (
	RuleMission = "mission"
	RuleBiblio  = "biblio"
	RuleRoot    = "root"
)

// BiblioPrefix is the relative path form rewritten by the biblio rule.
const BiblioPrefix = "biblio/"

// Targets holds the already-normalized rewrite destinations.
type Targets struct {
	MissionPrefix string // e.g. "/docs/heasarc/missions/"
	BiblioBaseURL string // ends with "/"
	SiteBaseURL   string // no trailing "/"
}

// RewriteRule is one (matcher, transform) pair.
//
// Pattern must capture the anchoring quote as group 1. Transform receives the
// submatches of one match and returns the replacement, which must start with
// that same quote so the anchor survives the substitution.
type RewriteRule struct {
	Name      string
	Pattern   *regexp.Regexp
	Transform func(groups []string) string
}

// Apply runs the rule once over the whole text.
// Matches never overlap and replacements are not rescanned.
func (r RewriteRule) Apply(text string) string {
	matches := r.Pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	groups := make([]string, r.Pattern.NumSubexp()+1)
	last := 0
	for _, m := range matches {
		for i := range groups {
			groups[i] = ""
			if m[2*i] >= 0 {
				groups[i] = text[m[2*i]:m[2*i+1]]
			}
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(r.Transform(groups))
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// RuleSet is an ordered list of rewrite rules.
type RuleSet []RewriteRule

// Apply runs every rule in order. Each rule sees the previous rule's output.
func (rs RuleSet) Apply(text string) string {
	for _, rule := range rs {
		text = rule.Apply(text)
	}
	return text
}

// Names returns rule names in application order.
func (rs RuleSet) Names() []string {
	names := make([]string, len(rs))
	for i, rule := range rs {
		names[i] = rule.Name
	}
	return names
}

// quoteAnchor matches the quote that opens an attribute value.
// RE2 has no lookbehind: the quote is captured and written back unchanged.
const quoteAnchor = `(["'])`

// quotedBody matches the rest of a value up to, not including, the closing quote.
const quotedBody = `([^"']+)`

// NewRuleSet builds the three rules in their fixed order:
//  1. mission: "<MissionPrefix>rest" -> "rest"
//  2. biblio:  "biblio/rest"         -> "<BiblioBaseURL>rest"
//  3. root:    "/rest" (not "//")    -> "<SiteBaseURL>/rest"
func NewRuleSet(t Targets) RuleSet {
	return RuleSet{
		missionRule(t.MissionPrefix),
		biblioRule(t.BiblioBaseURL),
		rootRule(t.SiteBaseURL),
	}
}

func missionRule(prefix string) RewriteRule {
	return RewriteRule{
		Name:    RuleMission,
		Pattern: regexp.MustCompile(quoteAnchor + regexp.QuoteMeta(prefix) + quotedBody),
		Transform: func(g []string) string {
			return g[1] + g[2]
		},
	}
}

func biblioRule(baseURL string) RewriteRule {
	return RewriteRule{
		Name:    RuleBiblio,
		Pattern: regexp.MustCompile(quoteAnchor + regexp.QuoteMeta(BiblioPrefix) + quotedBody),
		Transform: func(g []string) string {
			return g[1] + baseURL + g[2]
		},
	}
}

// rootRule's first body character excludes "/" so protocol-relative
// URLs ("//cdn.example.org/x") never match.
func rootRule(siteBase string) RewriteRule {
	return RewriteRule{
		Name:    RuleRoot,
		Pattern: regexp.MustCompile(quoteAnchor + `/([^/"'][^"']*)`),
		Transform: func(g []string) string {
			var b strings.Builder
			b.Grow(len(g[1]) + len(siteBase) + 1 + len(g[2]))
			b.WriteString(g[1])
			b.WriteString(siteBase)
			b.WriteByte('/')
			b.WriteString(g[2])
			return b.String()
		},
	}
}
