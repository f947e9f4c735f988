// Package config handles loading and parsing of configuration from the
// process environment. It resolves fixed settings (port, environment, log
// level, page files) through viper and scans the URSHORT_STANDARD_URI_,
// URSHORT_PATTERN_REGEX_ and URSHORT_PATTERN_URI_ variable families into the
// raw mapping definitions consumed by the resolver.
package config
