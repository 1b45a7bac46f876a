package export

import (
	"regexp"
	"strings"
)

type lineKind int

const (
	lineText lineKind = iota
	lineHeading
	lineBullet
	lineCode
	lineBlank
)

type mdLine struct {
	kind  lineKind
	level int // heading level, 1..6
	text  string
}

// scanLines splits markdown into coarse block-level lines: headings,
// bullets, fenced code, blanks, and plain text. The PDF and DOCX exporters
// only need this much structure; inline markup is handled by stripInline.
func scanLines(content string) []mdLine {
	var out []mdLine
	inFence := false
	for _, raw := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			out = append(out, mdLine{kind: lineCode, text: strings.TrimRight(raw, " \t")})
			continue
		}
		switch {
		case trimmed == "":
			out = append(out, mdLine{kind: lineBlank})
		case isHeading(trimmed):
			level, text := splitHeading(trimmed)
			out = append(out, mdLine{kind: lineHeading, level: level, text: text})
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			out = append(out, mdLine{kind: lineBullet, text: strings.TrimSpace(trimmed[2:])})
		default:
			out = append(out, mdLine{kind: lineText, text: trimmed})
		}
	}
	return out
}

func isHeading(line string) bool {
	level, _ := splitHeading(line)
	return level > 0
}

func splitHeading(line string) (int, string) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return 0, ""
	}
	return level, strings.TrimSpace(line[level:])
}

var inlineLink = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

// stripInline removes the common inline markers so exported text reads as
// prose. Single-character emphasis is left alone to avoid mangling ordinary
// punctuation.
func stripInline(s string) string {
	s = inlineLink.ReplaceAllString(s, "$1")
	for _, marker := range []string{"**", "__", "`"} {
		s = strings.ReplaceAll(s, marker, "")
	}
	return s
}
