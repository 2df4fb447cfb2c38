package resolve

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Mode selects the resolution variant.
type Mode string

const (
	// ModeUZA parses "City--City, ST-ST" descriptors and matches tokens
	// against the canonical index.
	ModeUZA Mode = "uza"
	// ModeFragment matches curated text fragments by substring containment.
	ModeFragment Mode = "fragment"
)

// ParseMode converts a flag or query value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uza":
		return ModeUZA, nil
	case "fragment":
		return ModeFragment, nil
	default:
		return "", eris.Errorf("resolve: unknown mode %q (valid: uza, fragment)", s)
	}
}

// Fragment maps a lower-case text fragment to a region id.
type Fragment struct {
	Text     string `yaml:"fragment" json:"fragment"`
	RegionID string `yaml:"region_id" json:"region_id"`
}

// DefaultSentinels mark descriptors that are not urbanized areas.
var DefaultSentinels = []string{"non-uza", "non-urbanized"}

// Resolver resolves location text against an Index. It is safe for
// concurrent use once constructed.
type Resolver struct {
	idx       *Index
	fragments []Fragment
	sentinels []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFragments sets the fragment table used by ModeFragment. Order is
// significant: the first matching fragment wins.
func WithFragments(fragments []Fragment) Option {
	return func(r *Resolver) {
		r.fragments = make([]Fragment, 0, len(fragments))
		for _, f := range fragments {
			text := foldCase(f.Text)
			if strings.TrimSpace(text) == "" || f.RegionID == "" {
				continue
			}
			r.fragments = append(r.fragments, Fragment{Text: text, RegionID: f.RegionID})
		}
	}
}

// WithSentinels replaces the non-urbanized sentinel phrases.
func WithSentinels(sentinels []string) Option {
	return func(r *Resolver) {
		r.sentinels = r.sentinels[:0]
		for _, s := range sentinels {
			if s = foldCase(strings.TrimSpace(s)); s != "" {
				r.sentinels = append(r.sentinels, s)
			}
		}
	}
}

// NewResolver creates a Resolver over idx using the default fragment
// table and sentinels unless overridden.
func NewResolver(idx *Index, opts ...Option) *Resolver {
	if idx == nil {
		idx = BuildIndex(nil)
	}
	r := &Resolver{idx: idx}
	WithFragments(DefaultFragments())(r)
	WithSentinels(DefaultSentinels)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Index returns the underlying canonical index.
func (r *Resolver) Index() *Index { return r.idx }

// Resolve maps text to a region id using the given mode. An empty result
// means unresolved.
func (r *Resolver) Resolve(text string, mode Mode) string {
	if mode == ModeFragment {
		return r.ResolveFragment(text)
	}
	return r.ResolveUZA(text)
}

// ResolveUZA resolves a structured "City--City, ST-ST" descriptor:
//  1. sentinel phrases never resolve
//  2. a full canonical name match wins
//  3. the first (city, state) token pair found in the exact index
//  4. the first city token that is unambiguous across the universe
func (r *Resolver) ResolveUZA(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || r.isSentinel(text) {
		return ""
	}

	if id, ok := r.idx.names[NormalizeName(text)]; ok {
		return id
	}

	cities, states := ParseUZAName(text)
	for _, city := range cities {
		for _, state := range states {
			if id, ok := r.idx.exact[cityState{city: city, state: state}]; ok {
				return id
			}
		}
	}

	for _, city := range cities {
		if id, ok := r.idx.unambiguous[city]; ok {
			return id
		}
	}

	return ""
}

// ResolveFragment resolves loosely structured catalog text by
// case-insensitive substring containment against the fragment table.
func (r *Resolver) ResolveFragment(text string) string {
	if strings.TrimSpace(text) == "" || r.isSentinel(text) {
		return ""
	}
	folded := foldCase(text)
	for _, f := range r.fragments {
		if strings.Contains(folded, f.Text) {
			return f.RegionID
		}
	}
	return ""
}

func (r *Resolver) isSentinel(text string) bool {
	folded := foldCase(text)
	for _, s := range r.sentinels {
		if strings.Contains(folded, s) {
			return true
		}
	}
	return false
}

// LoadFragments reads an ordered fragment table from a YAML file:
//
//	fragments:
//	  - fragment: "new york"
//	    region_id: "35620"
func LoadFragments(path string) ([]Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "resolve: read fragments %s", path)
	}
	var wrapper struct {
		Fragments []Fragment `yaml:"fragments"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "resolve: parse fragments")
	}
	if len(wrapper.Fragments) == 0 {
		return nil, eris.Errorf("resolve: no fragments in %s", path)
	}
	return wrapper.Fragments, nil
}
