package pipeline

// URLRewriter defines the contract for URL rewriting.
type URLRewriter interface {
	RewriteURLs(htmlContent string) string
}

// RuleRewriter rewrites URLs by applying a RuleSet in order.
type RuleRewriter struct {
	rules RuleSet
}

// NewRuleRewriter creates a rewriter for the given targets.
func NewRuleRewriter(t Targets) *RuleRewriter {
	return &RuleRewriter{rules: NewRuleSet(t)}
}

// RewriteURLs applies the mission, biblio and root rules, in that order.
// Any text is valid input; text without matching values is returned as is.
func (r *RuleRewriter) RewriteURLs(htmlContent string) string {
	return r.rules.Apply(htmlContent)
}

// Rules returns the rule set used by the rewriter.
func (r *RuleRewriter) Rules() RuleSet {
	return r.rules
}
