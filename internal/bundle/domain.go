// Package bundle renders aggregated analyses into markdown playbook
// documents.
package bundle

import "strings"

// Domain selects the framing profile used when rendering documents.
type Domain int

const (
	DomainGeneric Domain = iota
	DomainSales
	DomainFundraising
)

func (d Domain) String() string {
	switch d {
	case DomainSales:
		return "sales"
	case DomainFundraising:
		return "fundraising"
	default:
		return "generic"
	}
}

// domainProfile supplies the headings and framing text for one domain.
type domainProfile struct {
	Title        string
	Audience     string
	InsightsHead string
	RulesHead    string
	Rules        []string
}

var domainProfiles = map[Domain]domainProfile{
	DomainGeneric: {
		Title:        "Expert Playbook",
		Audience:     "professionals applying these experts' published techniques",
		InsightsHead: "Key Insights",
		RulesHead:    "Working Rules",
		Rules: []string{
			"Prefer high-confidence insights when techniques conflict.",
			"Adapt templates to your own voice before sending anything.",
		},
	},
	DomainSales: {
		Title:        "Sales Playbook",
		Audience:     "sellers running outbound and pipeline motions",
		InsightsHead: "Selling Insights",
		RulesHead:    "Selling Rules",
		Rules: []string{
			"Lead with the prospect's context, never your product.",
			"One clear call to action per message.",
			"Follow the cadence guidance before improvising timing.",
		},
	},
	DomainFundraising: {
		Title:        "Fundraising Playbook",
		Audience:     "founders running an investor outreach process",
		InsightsHead: "Fundraising Insights",
		RulesHead:    "Fundraising Rules",
		Rules: []string{
			"Warm introductions beat cold outreach; use cold tactics only as a fallback.",
			"Treat investor updates as the nurture cadence.",
			"Momentum is the close; batch conversations tightly.",
		},
	},
}

var fundraisingHints = []string{"fundrais", "investor", "venture", "vc", "seed round", "series a", "pitch deck", "term sheet", "angel"}
var salesHints = []string{"sales", "selling", "sdr", "prospecting", "outbound", "pipeline", "quota", "deal", "account executive"}

// ClassifyDomain sniffs the run's focus topics for a known domain. Explicit
// fundraising signals win over sales ones since fundraising topics often
// mention outreach vocabulary too.
func ClassifyDomain(focusTopics []string) Domain {
	joined := strings.ToLower(strings.Join(focusTopics, " "))
	for _, hint := range fundraisingHints {
		if strings.Contains(joined, hint) {
			return DomainFundraising
		}
	}
	for _, hint := range salesHints {
		if strings.Contains(joined, hint) {
			return DomainSales
		}
	}
	return DomainGeneric
}
