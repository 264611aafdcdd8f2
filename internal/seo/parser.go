package seo

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

const (
	MaxTitleLength       = 60
	MaxDescriptionLength = 160

	// upper bound for one JSON object candidate in model output
	maxObjectScan = 64 << 10
)

var (
	fenceOpen  = regexp.MustCompile("(?m)^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("(?m)\\s*```$")

	lineTitle       = regexp.MustCompile(`(?i)meta_title[:\s]+(.+)`)
	lineDescription = regexp.MustCompile(`(?i)meta_description[:\s]+(.+)`)
	lineKeywords    = regexp.MustCompile(`(?i)meta_keywords[:\s]+(.+)`)
)

const lineTrimSet = " \t\n\r\"'"

// Parser turns free-form model text into structured writer and auditor
// results. It never fails: unparseable output degrades to fallbacks.
type Parser struct {
	Log logrus.FieldLogger
}

func NewParser(log logrus.FieldLogger) *Parser {
	return &Parser{Log: log}
}

func StripFences(text string) string {
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func (p *Parser) ParseWriter(text string) GeneratedContent {
	text = StripFences(text)

	if obj, ok := extractObject(text, "meta_title"); ok {
		return p.enforceLimits(GeneratedContent{
			MetaTitle:       asString(obj["meta_title"]),
			MetaDescription: asString(obj["meta_description"]),
			MetaKeywords:    keywords(obj["meta_keywords"]),
		})
	}

	var out GeneratedContent
	if m := lineTitle.FindStringSubmatch(text); m != nil {
		out.MetaTitle = strings.Trim(m[1], lineTrimSet)
	}
	if m := lineDescription.FindStringSubmatch(text); m != nil {
		out.MetaDescription = strings.Trim(m[1], lineTrimSet)
	}
	if m := lineKeywords.FindStringSubmatch(text); m != nil {
		out.MetaKeywords = strings.Trim(m[1], lineTrimSet)
	}
	return p.enforceLimits(out)
}

func (p *Parser) ParseAuditor(text string) AuditResult {
	stripped := StripFences(text)

	if obj, ok := extractObject(stripped, "is_safe"); ok {
		return AuditResult{
			IsSafe:                  asBool(obj["is_safe"]),
			ConfidenceScore:         clamp01(asFloat(obj["confidence_score"])),
			PotentialHallucinations: asFlags(obj["potential_hallucinations"]),
		}
	}

	p.logger().WithField("response", stripped).Warn("could not parse auditor response, using conservative defaults")
	return AuditFallback()
}

// AuditFallback is the fail-closed verdict for unparseable auditor output.
func AuditFallback() AuditResult {
	return AuditResult{
		IsSafe:          false,
		ConfidenceScore: 0.5,
		PotentialHallucinations: []AuditFlag{{
			Type:     "parse_error",
			Message:  "Could not parse auditor response",
			Severity: "medium",
		}},
	}
}

func (p *Parser) enforceLimits(c GeneratedContent) GeneratedContent {
	if n := utf8.RuneCountInString(c.MetaTitle); n > MaxTitleLength {
		p.logger().WithFields(logrus.Fields{"original_length": n, "original": c.MetaTitle}).
			Warn("meta_title exceeds 60 chars, truncating")
		c.MetaTitle = truncateRunes(c.MetaTitle, MaxTitleLength-3) + "..."
	}
	if n := utf8.RuneCountInString(c.MetaDescription); n > MaxDescriptionLength {
		p.logger().WithFields(logrus.Fields{"original_length": n, "original": c.MetaDescription}).
			Warn("meta_description exceeds 160 chars, truncating")
		c.MetaDescription = truncateRunes(c.MetaDescription, MaxDescriptionLength-3) + "..."
	}
	return c
}

func (p *Parser) logger() logrus.FieldLogger {
	if p == nil || p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// extractObject finds the first balanced JSON object in text that decodes
// and carries a non-null value for key at its top level.
func extractObject(text, key string) (map[string]any, bool) {
	needle := `"` + key + `"`
	if !strings.Contains(text, needle) {
		return nil, false
	}
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end > start {
			candidate := text[start : end+1]
			if strings.Contains(candidate, needle) {
				var obj map[string]any
				if err := json.Unmarshal([]byte(candidate), &obj); err == nil && obj[key] != nil {
					return obj, true
				}
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, false
}

// matchBrace returns the index of the brace closing the object opened at
// start, or -1. String literals are skipped.
func matchBrace(text string, start int) int {
	depth := 0
	inString, escaped := false, false
	limit := len(text)
	if start+maxObjectScan < limit {
		limit = start + maxObjectScan
	}
	for i := start; i < limit; i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

func keywords(v any) string {
	list, ok := v.([]any)
	if !ok {
		return asString(v)
	}
	parts := make([]string, 0, len(list))
	for _, item := range list {
		if s := strings.TrimSpace(asString(item)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
		return t != ""
	}
	return false
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil {
			return f
		}
	case bool:
		if t {
			return 1
		}
	}
	return 0
}

func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func asFlags(v any) []AuditFlag {
	list, ok := v.([]any)
	if !ok {
		return []AuditFlag{}
	}
	flags := make([]AuditFlag, 0, len(list))
	for _, item := range list {
		switch t := item.(type) {
		case map[string]any:
			flags = append(flags, AuditFlag{
				Type:     asString(t["type"]),
				Field:    asString(t["field"]),
				Claim:    asString(t["claim"]),
				Issue:    asString(t["issue"]),
				Message:  asString(t["message"]),
				Severity: asString(t["severity"]),
				Reason:   asString(t["reason"]),
				Attempts: int(asFloat(t["attempts"])),
			})
		case string:
			flags = append(flags, AuditFlag{Message: t})
		}
	}
	return flags
}
