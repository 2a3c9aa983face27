package cache

import "fmt"

// Lookup finds a page by title. ok is false when no such page exists.
// redirect is the target title when the page is a redirect.
type Lookup func(title string) (id int64, redirect string, ok bool, err error)

// maxRedirectHops bounds redirect chains; MediaWiki itself follows one hop,
// but dumps contain double redirects.
const maxRedirectHops = 5

// Resolver maps link targets to article page ids, following redirects and
// caching both hits and misses.
type Resolver struct {
	lookup Lookup
	cache  Cache[string, int64]
}

// NewResolver creates a resolver backed by lookup.
func NewResolver(lookup Lookup, config Config) *Resolver {
	return &Resolver{
		lookup: lookup,
		cache:  NewLRUCache[string, int64](config),
	}
}

// Resolve returns the id of the article title refers to, or 0 when the title
// is unknown or the redirect chain does not end in an article. Every title on
// a resolved chain is cached, so later chains through it stop early.
func (r *Resolver) Resolve(title string) (int64, error) {
	if id, ok := r.cache.Get(title); ok {
		return id, nil
	}

	chain := []string{title}
	current := title
	for hop := 0; hop <= maxRedirectHops; hop++ {
		if hop > 0 {
			if id, ok := r.cache.Get(current); ok {
				r.putChain(chain, id)
				return id, nil
			}
		}
		id, redirect, ok, err := r.lookup(current)
		if err != nil {
			return 0, fmt.Errorf("resolve %q: %w", title, err)
		}
		if !ok {
			r.putChain(chain, 0)
			return 0, nil
		}
		if redirect == "" {
			r.putChain(chain, id)
			return id, nil
		}
		current = redirect
		chain = append(chain, current)
	}

	// Chain too long or cyclic.
	r.cache.Put(title, 0)
	return 0, nil
}

func (r *Resolver) putChain(chain []string, id int64) {
	for _, t := range chain {
		r.cache.Put(t, id)
	}
}

// Stats returns statistics of the underlying cache.
func (r *Resolver) Stats() Stats {
	return r.cache.Stats()
}
