package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Server configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the /api endpoints (optional)"`

	// Analysis configuration
	MaxURLs             int           `long:"max-urls" env:"MAX_URLS" default:"10" description:"Maximum number of article URLs per request"`
	FetchTimeout        time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"3s" description:"Deadline for downloading one article"`
	ProcessTimeout      time.Duration `long:"process-timeout" env:"PROCESS_TIMEOUT" default:"3s" description:"Deadline for sanitizing and analyzing one article"`
	WorkerCount         int           `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of text analysis workers"`
	ChargedDictDir      string        `long:"charged-dict" env:"CHARGED_DICT_DIR" default:"./charged_dict" description:"Directory with charged word lists (*.txt, *.yml)"`
	SitesFile           string        `long:"sites-file" env:"SITES_FILE" description:"YAML file with additional site adapters"`
	Language            string        `long:"language" env:"LANGUAGE" default:"russian" description:"Stemmer language"`
	ReadabilityFallback bool          `long:"readability-fallback" env:"READABILITY_FALLBACK" description:"Extract articles from unknown sites with readability"`
	MaxBodyBytes        int64         `long:"max-body-bytes" env:"MAX_BODY_BYTES" default:"5242880" description:"Maximum article page size in bytes"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Jaundice Rate/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Args struct {
		URLs []string `positional-arg-name:"url" description:"Article URLs to score once and exit"`
	} `positional-args:"yes"`
}

func Load() (*Cfg, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	return LoadArgs(os.Args[1:])
}

// LoadArgs parses the given command-line arguments together with the
// environment. It returns nil, nil when help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:                raw.Port,
		APIAccessKey:        raw.APIAccessKey,
		MaxURLs:             raw.MaxURLs,
		FetchTimeout:        raw.FetchTimeout,
		ProcessTimeout:      raw.ProcessTimeout,
		WorkerCount:         raw.WorkerCount,
		ChargedDictDir:      raw.ChargedDictDir,
		SitesFile:           raw.SitesFile,
		Language:            raw.Language,
		ReadabilityFallback: raw.ReadabilityFallback,
		MaxBodyBytes:        raw.MaxBodyBytes,
		UserAgent:           raw.UserAgent,
		Debug:               raw.Debug,
		Version:             GetVersion(),
		URLs:                raw.Args.URLs,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	positiveFields := map[string]int64{
		"max urls":       int64(cfg.MaxURLs),
		"worker count":   int64(cfg.WorkerCount),
		"max body bytes": cfg.MaxBodyBytes,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	timeouts := map[string]time.Duration{
		"fetch timeout":   cfg.FetchTimeout,
		"process timeout": cfg.ProcessTimeout,
	}

	for fieldName, fieldValue := range timeouts {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	return nil
}
