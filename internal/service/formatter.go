package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Formatter renders raw LLM response text into semantically-styled HTML
// paragraphs honoring Brazilian legal-document typography. It is not a
// Markdown parser: classification is line-oriented, driven by pattern
// predicates plus the position of two anchor lines (the judge-addressing
// opener and the DOS FATOS section header) that split the document into
// header, qualification and body regions.
//
// The transform is one-way: feeding its own HTML output back in would
// double-wrap every paragraph.
type Formatter struct{}

// NewFormatter creates a Formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// region is the classifier's position relative to the two anchor lines.
type region int

const (
	regionHeader        region = iota // before the addressing line
	regionQualification               // between addressing and DOS FATOS
	regionBody                        // from DOS FATOS onward
)

// Paragraph kinds, in classification precedence order.
const (
	styleCentered      = `text-align: center; font-weight: bold; text-indent: 0;`
	styleSection       = `font-weight: bold; text-indent: 0;`
	styleQuote         = `margin-left: 4cm; font-size: 0.9em; text-align: justify; text-indent: 0;`
	styleQualification = `text-align: justify; text-indent: 0;`
	styleDefault       = `text-align: justify; text-indent: 1.25cm;`
)

var (
	reBold      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reUnderline = regexp.MustCompile(`__(.+?)__`)
	reItalic    = regexp.MustCompile(`\*(.+?)\*`)
	reHeading   = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	reLink      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	reCode      = regexp.MustCompile("`([^`]*)`")
	reBullet    = regexp.MustCompile(`(?m)^[ \t]*[-•]\s+`)
	reTrailWS   = regexp.MustCompile(`(?m)[ \t]+$`)
	reBlankRuns = regexp.MustCompile(`\n{3,}`)

	// Roman-numeral section prefix, e.g. "II - " or "IV – ".
	reRomanPrefix = regexp.MustCompile(`^[IVXLCDM]+\s*[-–.]\s*`)

	// DOS FATOS header alternatives, optionally Roman-prefixed.
	reFactsHeader = regexp.MustCompile(`(?i)^(?:[IVXLCDM]+\s*[-–.]\s*)?(?:DOS?\s+FATOS?|FATOS)\s*:?\s*$`)
)

// addressingPrefixes open the formal judge-addressing line, matched
// case-insensitively against the start of the line.
var addressingPrefixes = []string{
	"EXCELENTÍSSIMO",
	"EXCELENTISSIMO",
	"EXMO",
	"EXMA",
}

// Format renders the raw model response as ordered HTML paragraphs.
// Every non-empty input line (after pre-cleaning) produces exactly one
// paragraph element: lines are never dropped or merged.
func (f *Formatter) Format(raw string) string {
	lines := preclean(raw)
	addrIdx, factsIdx := findAnchors(lines)

	var out strings.Builder
	for i, line := range lines {
		if line == "" {
			continue
		}
		out.WriteString(f.renderLine(line, regionAt(i, addrIdx, factsIdx), i == addrIdx))
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n")
}

// renderLine classifies one line and emits its paragraph. Precedence:
// addressing, action name, section title, citation, qualification, default.
func (f *Formatter) renderLine(line string, reg region, isAddressing bool) string {
	switch {
	case isAddressing:
		return paragraph(styleCentered, line)
	case reg == regionQualification && isActionName(line):
		return paragraph(styleCentered, line)
	case isSectionTitle(line):
		return paragraph(styleSection, stripRomanPrefix(line))
	case isQuoteLine(line):
		return paragraph(styleQuote, strings.TrimSpace(strings.TrimPrefix(line, ">")))
	case reg == regionQualification:
		return paragraph(styleQualification, line)
	default:
		return paragraph(styleDefault, line)
	}
}

func paragraph(style, text string) string {
	return fmt.Sprintf(`<p style="%s">%s</p>`, style, text)
}

// preclean collapses markdown markers to HTML tags, strips structural
// markdown noise and normalizes blank lines, then splits into lines with
// trailing whitespace trimmed.
func preclean(raw string) []string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = reUnderline.ReplaceAllString(s, "<u>$1</u>")
	s = reItalic.ReplaceAllString(s, "<em>$1</em>")
	s = reHeading.ReplaceAllString(s, "")
	s = reLink.ReplaceAllString(s, "$1")
	s = reCode.ReplaceAllString(s, "$1")
	s = reBullet.ReplaceAllString(s, "")
	s = reTrailWS.ReplaceAllString(s, "")
	s = reBlankRuns.ReplaceAllString(s, "\n\n")
	return strings.Split(s, "\n")
}

// findAnchors locates the addressing line and the DOS FATOS header.
// Either index is -1 when not found; the action-name and qualification
// rules depend on both being valid and degrade gracefully otherwise.
func findAnchors(lines []string) (addrIdx, factsIdx int) {
	addrIdx, factsIdx = -1, -1
	for i, line := range lines {
		if addrIdx == -1 && isAddressingLine(line) {
			addrIdx = i
			continue
		}
		if addrIdx != -1 && factsIdx == -1 && isFactsHeader(line) {
			factsIdx = i
			break
		}
	}
	return addrIdx, factsIdx
}

// regionAt maps a line index onto the three-region state machine. Without
// both anchors there is no qualification region and everything is body.
func regionAt(i, addrIdx, factsIdx int) region {
	if addrIdx == -1 || factsIdx == -1 {
		return regionBody
	}
	switch {
	case i < addrIdx:
		return regionHeader
	case i > addrIdx && i < factsIdx:
		return regionQualification
	default:
		return regionBody
	}
}

// --- classification predicates ---

// isAddressingLine reports whether the line opens with the formal
// judge-addressing formula.
func isAddressingLine(line string) bool {
	upper := strings.ToUpper(strings.TrimSpace(line))
	for _, prefix := range addressingPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// isFactsHeader reports whether the line is the DOS FATOS section header.
func isFactsHeader(line string) bool {
	return reFactsHeader.MatchString(strings.TrimSpace(line))
}

// isActionName reports whether a qualification-region line reads as the
// action's formal name: all caps and at least 8 characters long.
func isActionName(line string) bool {
	return isAllCaps(line) && len([]rune(strings.TrimSpace(line))) >= 8
}

// isSectionTitle reports whether the line is a body section header:
// a Roman-numeral-dash prefix, a DOS/DAS prefix in caps, or a short
// all-caps line under 50 characters.
func isSectionTitle(line string) bool {
	trimmed := strings.TrimSpace(line)
	if reRomanPrefix.MatchString(trimmed) && isAllCaps(trimmed) {
		return true
	}
	if (strings.HasPrefix(trimmed, "DOS ") || strings.HasPrefix(trimmed, "DAS ")) && isAllCaps(trimmed) {
		return true
	}
	return isAllCaps(trimmed) && len([]rune(trimmed)) < 50
}

// isQuoteLine reports whether the line is a jurisprudence/doctrine citation.
func isQuoteLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), ">")
}

// isAllCaps reports whether the line contains at least one letter and no
// lowercase letters. Accented uppercase counts as caps.
func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// stripRomanPrefix removes a leading Roman-numeral dash prefix from a
// section title, e.g. "II - DO DIREITO" becomes "DO DIREITO".
func stripRomanPrefix(line string) string {
	return reRomanPrefix.ReplaceAllString(strings.TrimSpace(line), "")
}
