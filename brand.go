package logofy

import "strings"

// ExtractBrand derives a brand identifier from a domain: the label before the
// first dot, truncated at the first dash or underscore. "foo-bar.com" → "foo".
//
// The heuristic is ambiguous for short or punctuated names; it is preserved
// as-is because the downstream prefix matching depends on it.
func ExtractBrand(domain string) string {
	name, _, _ := strings.Cut(domain, ".")
	if i := strings.IndexAny(name, "-_"); i >= 0 {
		name = name[:i]
	}
	return name
}

// fileLabel is the on-disk name stem for a domain's logo: the full label
// before the first dot, qualifiers included. "foo-bar.com" → "foo-bar".
func fileLabel(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	return label
}

// SelectDomains keeps the first-seen domain per brand, preserving input
// order. The result contains at most one domain per observed brand.
func SelectDomains(domains []string) []string {
	seen := make(map[string]bool, len(domains))
	var selected []string
	for _, d := range domains {
		brand := ExtractBrand(d)
		if seen[brand] {
			continue
		}
		seen[brand] = true
		selected = append(selected, d)
	}
	return selected
}
