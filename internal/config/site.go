package config

import (
	"maps"
	"strings"
)

// SiteConfig holds host-specific crawl settings.
type SiteConfig struct {
	// Cookie is an HTTP cookie to use when crawling this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this host unless --depth
	// was given explicitly. Nil keeps the global setting; 0 crawls only the
	// seed page.
	Depth *int `yaml:"depth,omitempty"`

	// SameDomainOnly overrides the global same-domain restriction.
	// Nil keeps the global setting.
	SameDomainOnly *bool `yaml:"sameDomainOnly,omitempty"`

	// IgnorePatterns are URL path patterns to skip during crawling.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path patterns to follow during crawling.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the .sitescan configuration file.
type File struct {
	// Sites maps hosts (e.g. "example.com" or "example.com:8080") to their
	// configurations.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every host unless a site entry overrides it.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for host, merged over the
// defaults. Host lookup is case-insensitive.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	siteConfig, ok := cf.Sites[host]
	if !ok {
		siteConfig, ok = cf.lookupFold(host)
	}
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.Depth != nil {
		result.Depth = siteConfig.Depth
	}
	if siteConfig.SameDomainOnly != nil {
		result.SameDomainOnly = siteConfig.SameDomainOnly
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(siteConfig.Headers))
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}

	return result
}

func (cf *File) lookupFold(host string) (SiteConfig, bool) {
	for key, sc := range cf.Sites {
		if strings.EqualFold(key, host) {
			return sc, true
		}
	}
	return SiteConfig{}, false
}
