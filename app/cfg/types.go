package cfg

import "time"

type Cfg struct {
	// Server configuration
	Port         string
	APIAccessKey string

	// Analysis configuration
	MaxURLs             int
	FetchTimeout        time.Duration
	ProcessTimeout      time.Duration
	WorkerCount         int
	ChargedDictDir      string
	SitesFile           string
	Language            string
	ReadabilityFallback bool
	MaxBodyBytes        int64

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string

	// Article URLs given on the command line; when present the process
	// scores them once and exits instead of serving HTTP.
	URLs []string
}
