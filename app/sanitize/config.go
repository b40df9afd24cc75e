package sanitize

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

type sitesFile struct {
	Sites []*SiteAdapter `yaml:"sites"`
}

// LoadSites reads site adapters from a YAML file:
//
//	sites:
//	  - host: example.com
//	    article: "div.story"
//	    remove: [".share"]
func LoadSites(path string) ([]*SiteAdapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file sitesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, site := range file.Sites {
		if err := validateSite(site); err != nil {
			return nil, fmt.Errorf("invalid site at index %d: %w", i, err)
		}
		slog.Debug("Site adapter loaded", "host", site.Host, "article", site.Article)
	}

	return file.Sites, nil
}

// BuildRegistry combines the built-in adapters with the ones from
// sitesPath (optional). Adapters from the file override built-ins.
func BuildRegistry(sitesPath string, readabilityFallback bool) (*Registry, error) {
	sites := []*SiteAdapter{InosmiAdapter()}

	if sitesPath != "" {
		loaded, err := LoadSites(sitesPath)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", sitesPath, err)
		}
		sites = append(sites, loaded...)
	}

	var fallback Sanitizer
	if readabilityFallback {
		fallback = NewReadabilityAdapter()
	}

	return NewRegistry(sites, fallback), nil
}

func validateSite(site *SiteAdapter) error {
	if site == nil {
		return fmt.Errorf("site is empty")
	}

	requiredFields := map[string]string{
		"host":             site.Host,
		"article selector": site.Article,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	selectors := append([]string{site.Article}, site.Remove...)
	for _, selector := range selectors {
		if _, err := cascadia.ParseGroup(selector); err != nil {
			return fmt.Errorf("invalid selector %q: %w", selector, err)
		}
	}

	return nil
}
