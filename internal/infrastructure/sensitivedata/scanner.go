// Package sensitivedata detects and scrubs secrets such as passwords and
// tokens in definition content and log output.
package sensitivedata

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/reglet-dev/defimport/internal/application/ports"
	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
)

// Ensure interface compliance
var _ ports.SensitiveContentScanner = (*Scanner)(nil)

const redacted = "[REDACTED]"

// Scanner finds secrets in text.
// All fields are read-only after construction, making it safe for concurrent use.
type Scanner struct {
	patterns []namedPattern

	// Gitleaks detector for secret detection.
	// If nil, only regex patterns are used.
	gitleaksDetector *detect.Detector
}

type namedPattern struct {
	id string
	re *regexp.Regexp
}

// Config holds the configuration for the Scanner.
type Config struct {
	// Custom patterns to detect (e.g. "INT-[A-Z0-9]{16}")
	Patterns []string
	// If true, disable gitleaks detector and use only regex patterns
	DisableGitleaks bool
}

// New creates a new Scanner with the given configuration.
func New(cfg Config) (*Scanner, error) {
	s := &Scanner{
		patterns: make([]namedPattern, 0, len(cfg.Patterns)+len(defaultPatterns)),
	}

	if !cfg.DisableGitleaks {
		detector, err := newGitleaksDetector()
		if err != nil {
			return nil, err
		}
		s.gitleaksDetector = detector
	}

	for id, p := range defaultPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile default pattern %s: %w", id, err)
		}
		s.patterns = append(s.patterns, namedPattern{id: id, re: re})
	}
	sort.Slice(s.patterns, func(i, j int) bool { return s.patterns[i].id < s.patterns[j].id })

	for i, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile custom pattern %s: %w", p, err)
		}
		s.patterns = append(s.patterns, namedPattern{id: fmt.Sprintf("custom-%d", i+1), re: re})
	}

	return s, nil
}

// newGitleaksDetector creates a new gitleaks detector with default configuration.
func newGitleaksDetector() (*detect.Detector, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(config.DefaultConfig)); err != nil {
		return nil, fmt.Errorf("failed to read gitleaks config: %w", err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gitleaks config: %w", err)
	}

	cfg, err := vc.Translate()
	if err != nil {
		return nil, fmt.Errorf("failed to translate gitleaks config: %w", err)
	}

	return detect.NewDetector(cfg), nil
}

// Scan returns one finding per detected secret, ordered by line. Line numbers
// are 1-based.
func (s *Scanner) Scan(content string) []ports.SensitiveFinding {
	if content == "" {
		return nil
	}

	seen := make(map[string]bool)
	var findings []ports.SensitiveFinding
	add := func(ruleID, secret string, offset int) {
		if secret == "" || seen[secret] {
			return
		}
		seen[secret] = true
		findings = append(findings, ports.SensitiveFinding{
			RuleID: ruleID,
			Line:   strings.Count(content[:offset], "\n") + 1,
		})
	}

	if s.gitleaksDetector != nil {
		for _, f := range s.gitleaksDetector.Detect(detect.Fragment{Raw: content}) {
			if idx := strings.Index(content, f.Secret); idx >= 0 {
				add(f.RuleID, f.Secret, idx)
			}
		}
	}
	for _, p := range s.patterns {
		for _, loc := range p.re.FindAllStringIndex(content, -1) {
			add(p.id, content[loc[0]:loc[1]], loc[0])
		}
	}

	sort.SliceStable(findings, func(i, j int) bool { return findings[i].Line < findings[j].Line })
	return findings
}

// ScrubString replaces detected secrets in input with a redaction marker.
func (s *Scanner) ScrubString(input string) string {
	if input == "" {
		return ""
	}

	result := input
	if s.gitleaksDetector != nil {
		for _, f := range s.gitleaksDetector.Detect(detect.Fragment{Raw: result}) {
			if f.Secret != "" {
				result = strings.ReplaceAll(result, f.Secret, redacted)
			}
		}
	}
	for _, p := range s.patterns {
		result = p.re.ReplaceAllString(result, redacted)
	}
	return result
}

// defaultPatterns contains regexes for common secrets, keyed by rule ID.
var defaultPatterns = map[string]string{
	"aws-access-key-id": `\b((?:AKIA|ABIA|ACCA|ASIA)[0-9A-Z]{16})\b`,
	"private-key":       `-----BEGIN [A-Z ]+ PRIVATE KEY-----`,
	"github-token":      `gh[pousr]_[A-Za-z0-9_]{36,255}`,
	"slack-token":       `xox[baprs]-([0-9a-zA-Z]{10,48})?`,
}
