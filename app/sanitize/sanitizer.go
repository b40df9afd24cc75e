package sanitize

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrArticleNotFound is returned when the page markup has no recognizable
// article body.
var ErrArticleNotFound = errors.New("article not found")

// Sanitizer turns article page markup into plain body text.
type Sanitizer interface {
	Sanitize(pageURL string, html []byte) (string, error)
}

// Registry dispatches pages to the adapter registered for their host.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	sites    map[string]Sanitizer
	fallback Sanitizer
}

func NewRegistry(sites []*SiteAdapter, fallback Sanitizer) *Registry {
	r := &Registry{
		sites:    make(map[string]Sanitizer, len(sites)),
		fallback: fallback,
	}
	for _, site := range sites {
		r.sites[normalizeHost(site.Host)] = site
	}
	return r
}

func (r *Registry) Sanitize(pageURL string, html []byte) (string, error) {
	adapter := r.lookup(pageURL)
	if adapter == nil {
		return "", fmt.Errorf("%w: no adapter for %s", ErrArticleNotFound, pageURL)
	}
	return adapter.Sanitize(pageURL, html)
}

// Hosts lists the hosts with a dedicated adapter.
func (r *Registry) Hosts() []string {
	hosts := make([]string, 0, len(r.sites))
	for host := range r.sites {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

func (r *Registry) lookup(pageURL string) Sanitizer {
	parsed, err := url.Parse(pageURL)
	if err == nil {
		host := normalizeHost(parsed.Hostname())
		for host != "" {
			if adapter, ok := r.sites[host]; ok {
				return adapter
			}
			_, parent, found := strings.Cut(host, ".")
			if !found {
				break
			}
			host = parent
		}
	}
	return r.fallback
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}
