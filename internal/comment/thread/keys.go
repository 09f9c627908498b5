package thread

import "strings"

const (
	keyPrefix = "comments:blog:"

	collapsedSuffix     = ":collapsed"
	sliceExpandedSuffix = ":slice-expanded"
)

// Keys is the storage context of one post: where its data lives now and
// where older builds of the storefront may have left it.
type Keys struct {
	Post       string
	Canonical  string
	Candidates []string
}

// NewKeys derives the candidate list for postKey in priority order:
// canonical key, prefix variants, then the configured legacy aliases.
func NewKeys(postKey string, legacy []string) Keys {
	canonical := keyPrefix + postKey

	cands := []string{
		canonical,
		"comments:blog-" + postKey,
		"comments:blog_" + postKey,
	}
	switch {
	case strings.HasPrefix(postKey, "blog-"):
		cands = append(cands, keyPrefix+"blog_"+strings.TrimPrefix(postKey, "blog-"))
	case strings.HasPrefix(postKey, "blog_"):
		cands = append(cands, keyPrefix+"blog-"+strings.TrimPrefix(postKey, "blog_"))
	}
	for _, k := range legacy {
		if k = strings.TrimSpace(k); k != "" {
			cands = append(cands, k)
		}
	}

	return Keys{
		Post:       postKey,
		Canonical:  canonical,
		Candidates: dedupe(cands),
	}
}

// Collapsed returns the keys of the collapsed-id map.
func (k Keys) Collapsed() Keys {
	return k.withSuffix(collapsedSuffix)
}

// SliceExpanded returns the keys of the reply-slice expansion map.
func (k Keys) SliceExpanded() Keys {
	return k.withSuffix(sliceExpandedSuffix)
}

// Targets is the set written on persistence, canonical key first.
func (k Keys) Targets() []string {
	return dedupe(append([]string{k.Canonical}, k.Candidates...))
}

func (k Keys) withSuffix(suffix string) Keys {
	cands := make([]string, 0, len(k.Candidates))
	for _, c := range k.Candidates {
		cands = append(cands, c+suffix)
	}
	return Keys{
		Post:       k.Post,
		Canonical:  k.Canonical + suffix,
		Candidates: cands,
	}
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
