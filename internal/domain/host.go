package domain

import "strings"

// HostKind classifies the host header of an inbound request.
type HostKind int

const (
	// HostMain is the bare main domain (or www), handled by the main app.
	HostMain HostKind = iota
	// HostApp is a configured application subdomain.
	HostApp
	// HostLocalDev is a local development host (localhost, 127.0.0.1).
	HostLocalDev
	// HostClub is a club's public subdomain ({slug}-{clubNumber}.base).
	HostClub
)

// HostInfo is the result of classifying a request host. Slug and ClubNumber
// are set only for HostClub.
type HostInfo struct {
	Kind       HostKind
	Slug       string
	ClubNumber string
}

// ParseClubLabel splits a subdomain label into slug and club number at the
// last hyphen, so slugs may themselves contain hyphens
// ("lions-lauf-123456" -> "lions-lauf", "123456"). It fails when there is no
// hyphen, either half is empty, or the trailing half is not all digits.
func ParseClubLabel(label string) (slug, clubNumber string, ok bool) {
	i := strings.LastIndexByte(label, '-')
	if i <= 0 || i == len(label)-1 {
		return "", "", false
	}
	slug, clubNumber = label[:i], label[i+1:]
	for _, c := range clubNumber {
		if c < '0' || c > '9' {
			return "", "", false
		}
	}
	return slug, clubNumber, true
}

// ClassifyHost maps a request host to a HostInfo. Ports are ignored.
// Unparseable subdomains and hosts outside the base domain fall through to
// HostMain so the main application handles them.
func ClassifyHost(host, baseDomain string, appSubdomains []string) HostInfo {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	host = strings.ToLower(host)

	if host == "localhost" || host == "127.0.0.1" || strings.HasSuffix(host, ".localhost") {
		return HostInfo{Kind: HostLocalDev}
	}
	if host == baseDomain {
		return HostInfo{Kind: HostMain}
	}
	label, found := strings.CutSuffix(host, "."+baseDomain)
	if !found || strings.Contains(label, ".") {
		// Foreign domain or nested subdomain; treat as main app.
		return HostInfo{Kind: HostMain}
	}
	for _, app := range appSubdomains {
		if label == app {
			return HostInfo{Kind: HostApp}
		}
	}
	if slug, number, ok := ParseClubLabel(label); ok {
		return HostInfo{Kind: HostClub, Slug: slug, ClubNumber: number}
	}
	return HostInfo{Kind: HostMain}
}
