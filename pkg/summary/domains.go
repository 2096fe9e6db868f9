package summary

import (
	"sort"
	"strings"

	"github.com/odhsupport/rtboard/pkg/rt"
)

// unknownDomain is the bucket for tickets whose domain field is empty.
const unknownDomain = "Unknown Domain"

// NormalizeDomain canonicalizes a comma-joined domain list so that
// "data,mobility" and "mobility,data" count as the same domain.
func NormalizeDomain(domain string) string {
	if strings.TrimSpace(domain) == "" {
		return unknownDomain
	}
	parts := strings.Split(domain, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// DomainShare is one domain's slice of the ticket set.
type DomainShare struct {
	Domain  string  `json:"domain"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// DomainShares counts tickets per normalized domain and computes each
// domain's percentage of the whole set. Rows are sorted by domain name.
func DomainShares(tickets []rt.Ticket, field string) []DomainShare {
	byDomain := map[string]int{}
	for _, t := range tickets {
		byDomain[NormalizeDomain(t.CustomField(field))]++
	}
	shares := make([]DomainShare, 0, len(byDomain))
	for domain, n := range byDomain {
		share := DomainShare{Domain: domain, Count: n}
		if len(tickets) > 0 {
			share.Percent = float64(n) / float64(len(tickets)) * 100
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].Domain < shares[j].Domain })
	return shares
}

// TopCompanies returns the n most frequent values of the company custom
// field, highest count first. Tickets without the field are ignored.
func TopCompanies(tickets []rt.Ticket, field string, n int) []Count {
	var withCompany []rt.Ticket
	for _, t := range tickets {
		if t.CustomField(field) != "" {
			withCompany = append(withCompany, t)
		}
	}
	counts := CountBy(withCompany, ByCustomField(field))
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
