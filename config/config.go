package config

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	envPrefix = "URSHORT"

	standardURIPrefix  = envPrefix + "_STANDARD_URI_"
	patternRegexPrefix = envPrefix + "_PATTERN_REGEX_"
	patternURIPrefix   = envPrefix + "_PATTERN_URI_"

	defaultPort = 3000
)

type ServerConfig struct {
	Port        int
	Environment string
}

type LoggingConfig struct {
	Level string
}

type PagesConfig struct {
	WelcomeFile  string
	NotFoundFile string
}

// PatternConfig is one complete, uncompiled pattern mapping discovered from
// the environment. Place is retained only for startup logging; the slice
// order is the evaluation order.
type PatternConfig struct {
	Place string
	Regex string
	URI   string
}

type Config struct {
	Server       ServerConfig
	Logging      LoggingConfig
	Pages        PagesConfig
	StandardURIs map[string]string
	Patterns     []PatternConfig
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Load builds the configuration from the given environ slice (os.Environ
// form, "KEY=VALUE" pairs) plus the fixed URSHORT_* settings resolved through
// viper. Malformed mapping entries are logged and skipped; only invalid fixed
// settings make Load fail.
func Load(environ []string) (*Config, error) {
	viper.SetDefault("port", defaultPort)
	viper.SetDefault("environment", EnvDev)
	viper.SetDefault("log_level", LogLevelInfo)
	viper.SetDefault("welcome_page", "")
	viper.SetDefault("not_found_page", "")

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:        resolvePort(),
			Environment: viper.GetString("environment"),
		},
		Logging: LoggingConfig{
			Level: viper.GetString("log_level"),
		},
		Pages: PagesConfig{
			WelcomeFile:  viper.GetString("welcome_page"),
			NotFoundFile: viper.GetString("not_found_page"),
		},
		StandardURIs: scanStandardURIs(environ),
		Patterns:     scanPatterns(environ),
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return cfg, nil
}

// resolvePort reads URSHORT_PORT, falling back to the default when the value
// is absent or not a valid port number. A bad port is not fatal.
func resolvePort() int {
	raw := viper.GetString("port")
	if raw == "" {
		return defaultPort
	}

	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		slog.Warn("ignoring invalid port value, using default",
			slog.String("value", raw),
			slog.Int("default", defaultPort))
		return defaultPort
	}

	return port
}

// scanStandardURIs collects all URSHORT_STANDARD_URI_<key> variables. Keys
// are case-sensitive and a later definition for the same key overwrites an
// earlier one.
func scanStandardURIs(environ []string) map[string]string {
	standard := make(map[string]string)

	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, standardURIPrefix) {
			continue
		}
		standard[name[len(standardURIPrefix):]] = value
	}

	return standard
}

type patternRecord struct {
	regex    string
	uri      string
	hasRegex bool
	hasURI   bool
}

// scanPatterns pairs URSHORT_PATTERN_REGEX_<place> with
// URSHORT_PATTERN_URI_<place>. Entries missing either half are dropped with
// a warning. The result is ordered deterministically: numeric places
// ascending, then non-numeric places lexicographically.
func scanPatterns(environ []string) []PatternConfig {
	records := make(map[string]*patternRecord)

	record := func(place string) *patternRecord {
		r, ok := records[place]
		if !ok {
			r = &patternRecord{}
			records[place] = r
		}
		return r
	}

	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}

		switch {
		case strings.HasPrefix(name, patternRegexPrefix):
			r := record(name[len(patternRegexPrefix):])
			r.regex = value
			r.hasRegex = true
		case strings.HasPrefix(name, patternURIPrefix):
			r := record(name[len(patternURIPrefix):])
			r.uri = value
			r.hasURI = true
		}
	}

	places := make([]string, 0, len(records))
	for place := range records {
		places = append(places, place)
	}
	sortPlaces(places)

	patterns := make([]PatternConfig, 0, len(places))
	for _, place := range places {
		r := records[place]
		if !r.hasRegex || !r.hasURI {
			slog.Warn("skipping incomplete pattern mapping",
				slog.String("place", place),
				slog.Bool("has_regex", r.hasRegex),
				slog.Bool("has_uri", r.hasURI))
			continue
		}
		patterns = append(patterns, PatternConfig{Place: place, Regex: r.regex, URI: r.uri})
	}

	return patterns
}

// sortPlaces orders numeric places ascending and puts non-numeric places
// after them in lexicographic order, so pattern precedence is reproducible
// regardless of environment scan order.
func sortPlaces(places []string) {
	sort.Slice(places, func(i, j int) bool {
		ni, erri := strconv.Atoi(places[i])
		nj, errj := strconv.Atoi(places[j])

		switch {
		case erri == nil && errj == nil:
			return ni < nj
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return places[i] < places[j]
		}
	})
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Port,
						validation.Required,
						validation.Min(1),
						validation.Max(65535),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
	)
}
