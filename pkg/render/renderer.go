// Package render turns raw model answers into display-safe HTML with
// section formatting and glossary term highlighting.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"aided-be/pkg/citation"
	"aided-be/pkg/glossary"
)

// Rendered is a display-ready answer.
type Rendered struct {
	HTML      string            `json:"html"`
	Citations []citation.Record `json:"citations"`
}

type Renderer struct {
	headerRes []headerRule
	termRe    *regexp.Regexp
}

func NewRenderer() *Renderer {
	return &Renderer{
		headerRes: buildHeaderRes(),
		termRe:    buildTermRe(),
	}
}

// Render produces the final HTML for an answer whose citations were
// already parsed and validated. Citation marker lines are stripped from
// the body; the records travel alongside the HTML.
func (r *Renderer) Render(answer string, citations []citation.Record) Rendered {
	body := citation.StripLines(answer)
	body = r.FormatSections(body)
	body = SafeHTML(body)
	body = r.HighlightTerms(body)
	body = strings.ReplaceAll(body, "\n", "<br/>")
	return Rendered{HTML: body, Citations: citations}
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the five HTML special characters.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

var sectionHeaders = []string{
	"From the plan:",
	"Next steps:",
	"Find Urgent Care Centers:",
	"Appointment/Walk-Ins:",
	"Call script:",
	"Prep checklist:",
}

type headerRule struct {
	re     *regexp.Regexp
	header string
}

var dashBulletRe = regexp.MustCompile(`\s-\s+`)

var blankRunRe = regexp.MustCompile(`\n{3,}`)

func buildHeaderRes() []headerRule {
	rules := make([]headerRule, 0, len(sectionHeaders))
	for _, h := range sectionHeaders {
		rules = append(rules, headerRule{
			re:     regexp.MustCompile(`(?i)\s*` + regexp.QuoteMeta(h) + `\s*`),
			header: h,
		})
	}
	return rules
}

// FormatSections normalizes known section headers onto their own lines
// and turns inline dash bullets into list lines.
func (r *Renderer) FormatSections(text string) string {
	out := text
	for _, rule := range r.headerRes {
		out = rule.re.ReplaceAllString(out, "\n\n"+rule.header+"\n")
	}
	out = dashBulletRe.ReplaceAllString(out, "\n- ")
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

var (
	allowedTagRe = regexp.MustCompile(`(?i)<\s*(/?)\s*(b|a)\b([^>]*)>`)
	hrefRe       = regexp.MustCompile(`(?i)href\s*=\s*["']([^"']+)["']`)
	httpRe       = regexp.MustCompile(`(?i)^https?://`)
	tokenRe      = regexp.MustCompile(`@@TOKEN_(\d+)@@`)
)

// SafeHTML escapes everything except <b> tags and <a> tags with http(s)
// hrefs. Allowed tags are swapped for placeholder tokens before escaping
// and restored after, so escaping never mangles them.
func SafeHTML(text string) string {
	var tokens []string
	withTokens := allowedTagRe.ReplaceAllStringFunc(text, func(full string) string {
		m := allowedTagRe.FindStringSubmatch(full)
		closing, tag, attrs := m[1], strings.ToLower(m[2]), m[3]

		var safe string
		switch {
		case closing == "/":
			safe = "</" + tag + ">"
		case tag == "b":
			safe = "<b>"
		case tag == "a":
			href := hrefRe.FindStringSubmatch(attrs)
			if href == nil || !httpRe.MatchString(href[1]) {
				return EscapeHTML(full)
			}
			safe = fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">`, href[1])
		default:
			return EscapeHTML(full)
		}

		tokens = append(tokens, safe)
		return fmt.Sprintf("@@TOKEN_%d@@", len(tokens)-1)
	})

	escaped := EscapeHTML(withTokens)

	return tokenRe.ReplaceAllStringFunc(escaped, func(tok string) string {
		var idx int
		if _, err := fmt.Sscanf(tok, "@@TOKEN_%d@@", &idx); err != nil || idx >= len(tokens) {
			return tok
		}
		return tokens[idx]
	})
}

func buildTermRe() *regexp.Regexp {
	terms := glossary.Terms()
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// HighlightTerms wraps glossary terms in clickable spans. Runs on
// already-escaped HTML, so matches never fall inside tag attributes
// except for text we generated ourselves.
func (r *Renderer) HighlightTerms(html string) string {
	return r.termRe.ReplaceAllStringFunc(html, func(match string) string {
		return fmt.Sprintf(
			`<span class="term-link" data-term="%s" title="Click to see definition">%s</span>`,
			EscapeHTML(glossary.NormalizeKey(match)), match,
		)
	})
}
