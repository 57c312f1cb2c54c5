package conformance

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	errInvalidFormat = errors.New("invalid file format")

	legacyHeaderRe = regexp2.MustCompile(`^[ \t]*\*[ \t]*@(\w+)(?::)?[ \t]*(.*?)[ \t]*;?[ \t]*$`, regexp2.Multiline)
	escargotSkipRe = regexp2.MustCompile(`\A// escargot-skip:?[ \t]*(.*?)[ \t]*$`, regexp2.Multiline)
	reftestRe      = regexp2.MustCompile(`^// \|reftest\|[ \t]*(.*?)(?:[ \t]+--.*)?$`, regexp2.Multiline)
	skipIfRe       = regexp2.MustCompile(`\bskip-if\((.*)\)`, regexp2.None)

	edition51 = semver.MustParse("5.1.0")
	edition6  = semver.MustParse("6.0.0")
)

type Negative struct {
	Phase string `yaml:"phase"`
	Type  string `yaml:"type"`
}

// Meta is what a test file says about itself: test262 YAML front matter,
// the older javadoc-style headers, or reftest and escargot directives.
type Meta struct {
	Description string   `yaml:"description"`
	Negative    Negative `yaml:"negative"`
	Includes    []string `yaml:"includes"`
	Flags       []string `yaml:"flags"`
	Features    []string `yaml:"features"`
	Es5id       string   `yaml:"es5id"`
	Es6id       string   `yaml:"es6id"`
	Esid        string   `yaml:"esid"`

	// Path and Name come from @path and @name headers.
	Path string `yaml:"-"`
	Name string `yaml:"-"`
	// Legacy is set for files using @-headers instead of front matter.
	Legacy bool `yaml:"-"`
	// SkipReason is non-empty when a directive in the file excludes it.
	SkipReason string `yaml:"-"`

	frontMatter bool
}

// ParseMeta extracts the metadata of a test from its source.
func ParseMeta(src string) (*Meta, error) {
	var meta Meta
	if start := strings.Index(src, "/*---"); start != -1 {
		start += 5
		end := strings.Index(src, "---*/")
		if end == -1 || end <= start {
			return nil, errInvalidFormat
		}
		if err := yaml.Unmarshal([]byte(src[start:end]), &meta); err != nil {
			return nil, errors.Wrap(err, "parsing front matter")
		}
		if meta.Negative.Type != "" && meta.Negative.Phase == "" {
			return nil, errors.New("negative type is set, but phase isn't")
		}
		meta.frontMatter = true
	} else if err := meta.parseLegacy(src); err != nil {
		return nil, err
	}

	if err := meta.parseDirectives(src); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (m *Meta) parseLegacy(src string) error {
	match, err := legacyHeaderRe.FindStringMatch(src)
	for ; match != nil && err == nil; match, err = legacyHeaderRe.FindNextMatch(match) {
		m.Legacy = true
		value := match.GroupByNumber(2).String()
		switch tag := match.GroupByNumber(1).String(); tag {
		case "path":
			m.Path = value
		case "name":
			m.Name = value
		case "description":
			m.Description = value
		case "negative":
			// A bare @negative accepts any error.
			m.Negative = Negative{Phase: "runtime", Type: value}
		case "onlyStrict", "strict_only":
			m.Flags = append(m.Flags, "onlyStrict")
		case "noStrict", "non_strict_only":
			m.Flags = append(m.Flags, "noStrict")
		}
	}
	return errors.Wrap(err, "scanning headers")
}

func (m *Meta) parseDirectives(src string) error {
	match, err := escargotSkipRe.FindStringMatch(src)
	if err != nil {
		return errors.Wrap(err, "scanning directives")
	}
	if match != nil {
		m.SkipReason = match.GroupByNumber(1).String()
		if m.SkipReason == "" {
			m.SkipReason = "escargot-skip"
		}
		return nil
	}

	match, err = reftestRe.FindStringMatch(src)
	if err != nil || match == nil {
		return errors.Wrap(err, "scanning directives")
	}
	annotation := match.GroupByNumber(1).String()
	if cond, _ := skipIfRe.FindStringMatch(annotation); cond != nil {
		// The runner is a shell, so shell-only conditions never hold.
		if c := cond.GroupByNumber(1).String(); c != "!xulRuntime.shell" {
			m.SkipReason = "reftest: skip-if(" + c + ")"
		}
		return nil
	}
	for _, f := range strings.Fields(annotation) {
		if f == "skip" {
			m.SkipReason = "reftest: skip"
		}
	}
	return nil
}

// StrictModes lists the modes the test runs in: test262 front matter tests
// run twice unless a flag says otherwise, all others run once.
func (m *Meta) StrictModes() []bool {
	if !m.frontMatter {
		return []bool{m.HasFlag("onlyStrict")}
	}
	if m.HasFlag("raw") {
		return []bool{false}
	}
	var modes []bool
	if !m.HasFlag("onlyStrict") {
		modes = append(modes, false)
	}
	if !m.HasFlag("noStrict") {
		modes = append(modes, true)
	}
	return modes
}

func (m *Meta) HasFlag(flag string) bool {
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// IsNegative reports whether the test passes only when it throws.
func (m *Meta) IsNegative() bool {
	return m.Negative.Phase != ""
}

// Edition returns the language edition the test targets, or nil when the file
// does not say.
func (m *Meta) Edition() *semver.Version {
	switch {
	case m.Es5id != "":
		return edition51
	case m.Es6id != "", m.Esid != "":
		return edition6
	case m.Legacy:
		return edition51
	}
	return nil
}
