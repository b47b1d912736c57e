// Package vault scans a markdown note vault and derives the tag statistics
// the village generator consumes: ranked tag frequencies and per-tag note
// lists with metadata.
package vault

import (
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// inlineTagPattern matches Obsidian-style inline tags (#tag, #nested/tag).
// Headings don't match: a tag requires a letter right after the hash.
var inlineTagPattern = regexp.MustCompile(`#([A-Za-z][A-Za-z0-9_/-]*)`)

// frontmatter is the YAML header schema; tags may be a list or a single
// comma-separated string, so it is decoded loosely.
type frontmatter struct {
	Tags any `yaml:"tags"`
}

// ExtractTags returns the normalized tags of a note body: frontmatter tags
// plus inline #tags, lowercased, deduplicated, in first-seen order.
func ExtractTags(content []byte) []string {
	var tags []string
	seen := map[string]bool{}
	add := func(raw string) {
		t := NormalizeTag(raw)
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		tags = append(tags, t)
	}

	body := content
	if fm, rest, ok := splitFrontmatter(content); ok {
		var header frontmatter
		if err := yaml.Unmarshal(fm, &header); err == nil {
			for _, t := range coerceTags(header.Tags) {
				add(t)
			}
		}
		body = rest
	}

	for _, m := range inlineTagPattern.FindAllSubmatch(body, -1) {
		add(string(m[1]))
	}
	return tags
}

// NormalizeTag lowercases a tag and strips any leading hashes and
// surrounding whitespace.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(tag), "#"))
}

// DisplayName derives a note's display name from its path: the base file
// name without the markdown extension.
func DisplayName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// splitFrontmatter separates a leading YAML frontmatter block from the note
// body.
//
// Postcondition: Returns (header, body, true) when the note starts with a
// "---" fence and a closing fence exists; (nil, content, false) otherwise.
func splitFrontmatter(content []byte) ([]byte, []byte, bool) {
	s := string(content)
	if !strings.HasPrefix(s, "---\n") && !strings.HasPrefix(s, "---\r\n") {
		return nil, content, false
	}
	rest := s[strings.Index(s, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, content, false
	}
	header := rest[:end]
	body := rest[end+len("\n---"):]
	return []byte(header), []byte(body), true
}

// coerceTags flattens the loosely-typed frontmatter tags value into strings.
// Supported shapes: a YAML list, a single string, and a comma-separated
// string.
func coerceTags(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		parts := strings.Split(t, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
