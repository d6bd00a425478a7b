package scrape

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"cartelera/internal/transform"
)

// Duration is a time.Duration that unmarshals from YAML strings like "500ms"
// or "2s". Bare integers are taken as seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Pagination modes. PaginationInfinite appends a page-number query parameter
// for pages past the first; PaginationQueryParam is an accepted alias.
const (
	PaginationNone       = "none"
	PaginationURLPattern = "url-pattern"
	PaginationInfinite   = "infinite"
	PaginationQueryParam = "query-param"
)

// FieldNames lists every field a scraper config may extract.
var FieldNames = []string{
	"title", "description", "date", "endDate", "venue", "city", "country",
	"category", "genre", "price", "priceMax", "image", "link",
}

// Config is the immutable definition of how to scrape one site. Configs are
// created once at startup, compiled, and never mutated at runtime.
type Config struct {
	Name    string        `yaml:"name"`
	BaseURL string        `yaml:"baseUrl"`
	Listing ListingConfig `yaml:"listing"`

	Pagination PaginationConfig `yaml:"pagination"`

	// Fields maps each field name to its extraction rule for listing items.
	Fields map[string]Field `yaml:"fields"`

	// Detail enables a secondary fetch of each item's own page.
	Detail *DetailConfig `yaml:"detail"`

	// Render fetches pages through the shared browser handle instead of a
	// plain HTTP GET, for sites that only produce markup via JavaScript.
	Render bool `yaml:"render"`

	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Retry     RetryConfig     `yaml:"retry"`

	SkipFailedEvents bool `yaml:"skipFailedEvents"`
	SkipFailedPages  bool `yaml:"skipFailedPages"`

	UserAgent string            `yaml:"userAgent"`
	Headers   map[string]string `yaml:"headers"`
}

// ListingConfig locates event items on a listing page.
type ListingConfig struct {
	URL       string `yaml:"url"`
	Container string `yaml:"container"`
	Item      string `yaml:"item"`
}

// PaginationConfig drives the page loop.
type PaginationConfig struct {
	Mode     string   `yaml:"mode"`    // none | url-pattern | infinite
	Pattern  string   `yaml:"pattern"` // URL with a {page} placeholder
	Param    string   `yaml:"param"`   // query parameter name, default "page"
	MaxPages int      `yaml:"maxPages"`
	Delay    Duration `yaml:"delay"` // between pages
}

// Field declares how one field is extracted. Selector syntax:
//
//	"h2.title"        text of the first matching element
//	"a.more@href"     attribute of the first matching element
//	"@data-id"        attribute of the item root itself
//
// With no selector, Default is used as a literal value.
type Field struct {
	Selector  string `yaml:"selector"`
	Transform string `yaml:"transform"`
	Default   string `yaml:"default"`
}

// DetailConfig describes the optional per-item detail fetch. Structured
// (schema.org JSON-LD) event data is preferred when present; Fields are the
// selector fallback, scoped to the detail document.
type DetailConfig struct {
	Fields         map[string]Field `yaml:"fields"`
	StructuredData bool             `yaml:"structuredData"`
	Delay          Duration         `yaml:"delay"` // after each detail fetch
}

// RateLimitConfig bounds request pacing for one source.
type RateLimitConfig struct {
	RequestsPerSecond float64  `yaml:"requestsPerSecond"`
	Timeout           Duration `yaml:"timeout"`
}

// RetryConfig drives exponential backoff on transport failures.
type RetryConfig struct {
	MaxAttempts  int      `yaml:"maxAttempts"`
	InitialDelay Duration `yaml:"initialDelay"`
	Multiplier   float64  `yaml:"multiplier"`
}

// LoadConfigs reads a YAML file holding a list of scraper configs.
func LoadConfigs(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scraper configs: %w", err)
	}
	var configs []Config
	if err := yaml.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("parsing scraper configs: %w", err)
	}
	return configs, nil
}

// compiledField is a Field with its transform resolved and selector parsed,
// built once at compile time so per-item extraction is just map lookups.
type compiledField struct {
	name      string
	selector  string
	attr      string
	selfAttr  bool
	transform transform.Kind
	def       string
}

func (c *Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("scraper config missing name")
	}
	if c.Listing.URL == "" {
		return fmt.Errorf("scraper %q: missing listing URL", c.Name)
	}
	if c.Listing.Item == "" {
		return fmt.Errorf("scraper %q: missing listing item selector", c.Name)
	}
	switch c.Pagination.Mode {
	case "", PaginationNone, PaginationInfinite, PaginationQueryParam:
	case PaginationURLPattern:
		if !strings.Contains(c.Pagination.Pattern, "{page}") {
			return fmt.Errorf("scraper %q: url-pattern pagination needs a {page} placeholder", c.Name)
		}
	default:
		return fmt.Errorf("scraper %q: unknown pagination mode %q", c.Name, c.Pagination.Mode)
	}
	return nil
}

func compileFields(source string, fields map[string]Field) ([]compiledField, error) {
	known := make(map[string]bool, len(FieldNames))
	for _, n := range FieldNames {
		known[n] = true
	}

	compiled := make([]compiledField, 0, len(fields))
	for name, f := range fields {
		if !known[name] {
			return nil, fmt.Errorf("scraper %q: unknown field %q", source, name)
		}
		kind, err := transform.KindFromName(f.Transform)
		if err != nil {
			return nil, fmt.Errorf("scraper %q, field %q: %w", source, name, err)
		}
		cf := compiledField{name: name, transform: kind, def: f.Default}
		cf.selector, cf.attr, cf.selfAttr = parseSelector(f.Selector)
		compiled = append(compiled, cf)
	}
	return compiled, nil
}

// parseSelector splits the "selector@attr" marker syntax. A selector of just
// "@attr" addresses an attribute of the item root.
func parseSelector(s string) (selector, attr string, selfAttr bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", false
	}
	if strings.HasPrefix(s, "@") {
		return "", s[1:], true
	}
	if idx := strings.LastIndex(s, "@"); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:]), false
	}
	return s, "", false
}
