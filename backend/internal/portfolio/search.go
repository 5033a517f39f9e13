package portfolio

import "strings"

// MatchesQuery reports whether the project mentions query in its title,
// description, technologies or topics. A blank query matches everything.
func (p *Project) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	return anyContains(p.Technologies, q) || anyContains(p.Topics, q)
}

// MatchesQuery reports whether the paper mentions query in its title, tags or authors
func (p *ResearchPaper) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), q) ||
		anyContains(p.Tags, q) ||
		anyContains(p.Authors, q)
}

// MatchesQuery reports whether the package name, description or a maintainer contains query
func (a *PackageAttestation) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.PackageName), q) ||
		strings.Contains(strings.ToLower(a.Description), q) ||
		anyContains(a.Maintainers, q)
}

// FilterPapers keeps the papers matching query, preserving order
func FilterPapers(papers []ResearchPaper, query string) []ResearchPaper {
	out := make([]ResearchPaper, 0, len(papers))
	for i := range papers {
		if papers[i].MatchesQuery(query) {
			out = append(out, papers[i])
		}
	}
	return out
}

// FilterProjects keeps the projects matching query, preserving order
func FilterProjects(projects []Project, query string) []Project {
	if strings.TrimSpace(query) == "" {
		return projects
	}
	out := make([]Project, 0, len(projects))
	for i := range projects {
		if projects[i].MatchesQuery(query) {
			out = append(out, projects[i])
		}
	}
	return out
}

// FilterAttestations keeps the records matching query and registry ("" or "all" means any)
func FilterAttestations(records []PackageAttestation, registry, query string) []PackageAttestation {
	out := make([]PackageAttestation, 0, len(records))
	for i := range records {
		if registry != "" && registry != "all" && string(records[i].Registry) != registry {
			continue
		}
		if records[i].MatchesQuery(query) {
			out = append(out, records[i])
		}
	}
	return out
}

func anyContains(values []string, lowerQuery string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), lowerQuery) {
			return true
		}
	}
	return false
}
