// Package catalog holds the static topic and country feed tables.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed feeds.yaml
var builtinFeeds []byte

// FeedsConfig is the YAML shape of a catalog file:
//
//	topics:
//	  default: technology
//	  feeds: {technology: https://...}
//	countries:
//	  default_url: https://...
//	  feeds: {india: https://...}
type FeedsConfig struct {
	Topics struct {
		Default string            `yaml:"default"`
		Feeds   map[string]string `yaml:"feeds"`
	} `yaml:"topics"`
	Countries struct {
		DefaultURL string            `yaml:"default_url"`
		Feeds      map[string]string `yaml:"feeds"`
	} `yaml:"countries"`
}

// Catalog maps topic and country keys to feed URLs. It is read-only after
// construction and safe for concurrent use.
type Catalog struct {
	topics         map[string]string
	countries      map[string]string
	defaultTopic   string
	defaultCountry string
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := decode(builtinFeeds)
	if err != nil {
		panic(fmt.Sprintf("catalog: builtin feeds.yaml is invalid: %v", err))
	}
	return c
}

// Load reads a catalog override from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds config: %w", err)
	}
	c, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("feeds config %s: %w", path, err)
	}
	return c, nil
}

func decode(data []byte) (*Catalog, error) {
	var cfg FeedsConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return New(cfg)
}

// New validates cfg and builds a Catalog. Keys are normalized to lowercase.
func New(cfg FeedsConfig) (*Catalog, error) {
	c := &Catalog{
		topics:         normalize(cfg.Topics.Feeds),
		countries:      normalize(cfg.Countries.Feeds),
		defaultCountry: strings.TrimSpace(cfg.Countries.DefaultURL),
	}
	if len(c.topics) == 0 {
		return nil, fmt.Errorf("no topic feeds configured")
	}
	if len(c.countries) == 0 {
		return nil, fmt.Errorf("no country feeds configured")
	}
	if c.defaultCountry == "" {
		return nil, fmt.Errorf("countries.default_url is required")
	}

	key := normalizeKey(cfg.Topics.Default)
	url, ok := c.topics[key]
	if !ok {
		return nil, fmt.Errorf("topics.default %q is not a configured topic", cfg.Topics.Default)
	}
	c.defaultTopic = url
	return c, nil
}

// TopicFeed returns the feed for key, or the default topic feed.
func (c *Catalog) TopicFeed(key string) string {
	if url, ok := c.topics[normalizeKey(key)]; ok {
		return url
	}
	return c.defaultTopic
}

// CountryFeed returns the feed for key, or the world feed.
func (c *Catalog) CountryFeed(key string) string {
	if url, ok := c.countries[normalizeKey(key)]; ok {
		return url
	}
	return c.defaultCountry
}

// ValidTopicKeys returns the sorted topic keys.
func (c *Catalog) ValidTopicKeys() []string {
	keys := make([]string, 0, len(c.topics))
	for k := range c.topics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalize(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		k = normalizeKey(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}
