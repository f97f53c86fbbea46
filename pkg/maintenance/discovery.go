package maintenance

import (
	"context"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// DiscoveryResolver finds new feeds for the topic keywords
type DiscoveryResolver struct {
	searcher       Searcher
	prober         Prober
	keywords       []string
	languages      []string
	maxPerLanguage int
}

// NewDiscoveryResolver makes a discovery resolver issuing one query per language.
// Empty languages means a single query without language constraint.
// A language already having maxPerLanguage live feeds is skipped, 0 disables the cap.
func NewDiscoveryResolver(searcher Searcher, prober Prober, keywords, languages []string, maxPerLanguage int) *DiscoveryResolver {
	if len(languages) == 0 {
		languages = []string{""}
	}
	return &DiscoveryResolver{searcher: searcher, prober: prober, keywords: keywords, languages: languages,
		maxPerLanguage: maxPerLanguage}
}

// Discover returns up to limit new alive feeds not yet present in reg, by url or by identity.
// The registry itself is not modified.
func (d *DiscoveryResolver) Discover(ctx context.Context, reg *domain.Registry, limit int) []domain.FeedEntry {
	if d.searcher == nil || limit <= 0 || len(d.keywords) == 0 {
		return nil
	}

	// accepted keeps entries found so far, used for dedup across languages
	accepted := &domain.Registry{}
	for _, lang := range d.languages {
		if accepted.Len() >= limit || ctx.Err() != nil {
			break
		}

		want := limit - accepted.Len()
		if lang != "" && d.maxPerLanguage > 0 {
			current := reg.LanguageCount(lang)
			if current >= d.maxPerLanguage {
				lgr.Printf("[INFO] discovery for language %q skipped, %d/%d feeds", lang, current, d.maxPerLanguage)
				continue
			}
			want = min(want, d.maxPerLanguage-current)
		}

		cands, err := d.searcher.FindFeeds(ctx, domain.DiscoveryQuery{
			Keywords: d.keywords,
			Language: lang,
			Exclude:  append(reg.Identities(), accepted.Identities()...),
			Limit:    want,
		})
		if err != nil {
			lgr.Printf("[WARN] discovery search for language %q failed: %v", lang, err)
			continue
		}
		lgr.Printf("[DEBUG] discovery for language %q returned %d candidates", lang, len(cands))

		taken := 0
		for _, c := range cands {
			if taken >= want || ctx.Err() != nil {
				break
			}
			if entry, ok := d.evaluate(ctx, reg, accepted, c, lang); ok {
				if err := accepted.Add(entry); err != nil {
					continue
				}
				taken++
				lgr.Printf("[INFO] discovered feed %s (%s), weight %.2f", entry.Identity, entry.URL, entry.Weight)
			}
		}
	}
	return accepted.Feeds
}

// evaluate checks a candidate against the registry and the already accepted entries, then probes it
func (d *DiscoveryResolver) evaluate(ctx context.Context, reg, accepted *domain.Registry, c domain.Candidate, lang string) (domain.FeedEntry, bool) {
	identity := strings.TrimSpace(c.Name)
	if identity == "" {
		identity = domain.IdentityFromURL(c.URL)
	}
	if d.known(reg, accepted, c.URL, identity) {
		lgr.Printf("[DEBUG] skip discovery candidate %s (%s), already known", identity, c.URL)
		return domain.FeedEntry{}, false
	}

	pr := d.prober.ProbeCandidate(ctx, c.URL)
	if !pr.Alive {
		lgr.Printf("[DEBUG] discovery candidate %s is dead: %s", c.URL, pr.Reason)
		return domain.FeedEntry{}, false
	}
	if pr.URL != c.URL && d.known(reg, accepted, pr.URL, identity) {
		return domain.FeedEntry{}, false
	}

	checked := pr.CheckedAt
	if checked.IsZero() {
		checked = time.Now()
	}
	return domain.FeedEntry{
		URL:         pr.URL,
		Identity:    identity,
		Language:    lang,
		Weight:      domain.ClampWeight(c.Weight),
		Status:      domain.StatusActive,
		Discovered:  true,
		LastChecked: &checked,
		LastSuccess: &checked,
	}, true
}

func (d *DiscoveryResolver) known(reg, accepted *domain.Registry, feedURL, identity string) bool {
	return reg.HasURL(feedURL) || accepted.HasURL(feedURL) || reg.HasIdentity(identity) || accepted.HasIdentity(identity)
}
