package wiki

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Link is an internal link in cleaned text. Start and End are rune offsets of
// the rendered label, End exclusive.
type Link struct {
	Target string `json:"target"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// Tags whose content never contributes prose.
var droppedTags = map[string]bool{
	"ref":             true,
	"math":            true,
	"gallery":         true,
	"timeline":        true,
	"score":           true,
	"syntaxhighlight": true,
	"source":          true,
	"imagemap":        true,
	"references":      true,
	"chem":            true,
}

// Link namespaces whose links are dropped together with their caption.
var droppedNamespaces = map[string]bool{
	"file":      true,
	"image":     true,
	"media":     true,
	"category":  true,
	"datei":     true,
	"bild":      true,
	"kategorie": true,
	"wikipedia": true,
	"wp":        true,
	"help":      true,
	"hilfe":     true,
	"portal":    true,
	"template":  true,
	"vorlage":   true,
}

var (
	reTag        = regexp.MustCompile(`^<(/?)([a-zA-Z][a-zA-Z0-9]*)\b[^<>]*?(/?)>`)
	reEntity     = regexp.MustCompile(`^&(?:#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)
	reMagic      = regexp.MustCompile(`__[A-Z]+__`)
	reInterwiki  = regexp.MustCompile(`^[a-z]{2,3}(?:-[a-z]+)?$`)
	reHeading    = regexp.MustCompile(`^=+.*=+$`)
	reBlankLines = regexp.MustCompile(`\n[ \t]*\n`)
)

// Clean converts wikitext to plain text and returns the internal links found
// in it. The input is NFC-normalised first, so offsets refer to NFC text.
//
// Templates, tables, comments, references, file and category links, headings,
// list items and bold/italic markup are removed; [[target|label]] renders as
// label, including any link trail ("[[bank]]s" renders as "banks").
func Clean(wikitext string) (string, []Link) {
	s := norm.NFC.String(wikitext)
	s = stripBlocks(s)
	s = stripLines(s)
	return renderInline(s)
}

// stripBlocks removes comments, templates, tables and dropped tags, and strips
// the markup of all other HTML tags.
func stripBlocks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			end := strings.Index(rest[4:], "-->")
			if end < 0 {
				return b.String()
			}
			i += 4 + end + 3
		case strings.HasPrefix(rest, "{{"):
			i += skipNested(rest, "{{", "}}")
		case strings.HasPrefix(rest, "{|") && atLineStart(s, i):
			i += skipNested(rest, "{|", "|}")
		case rest[0] == '<':
			m := reTag.FindStringSubmatch(rest)
			if m == nil {
				b.WriteByte('<')
				i++
				continue
			}
			name := strings.ToLower(m[2])
			i += len(m[0])
			if m[1] == "" && m[3] == "" && droppedTags[name] {
				end := strings.Index(s[i:], "</"+name)
				if end < 0 {
					end = indexFold(s[i:], "</"+name)
				}
				if end < 0 {
					return b.String()
				}
				i += end
				if gt := strings.IndexByte(s[i:], '>'); gt >= 0 {
					i += gt + 1
				} else {
					i = len(s)
				}
			}
			if name == "br" || name == "p" {
				b.WriteByte(' ')
			}
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

// skipNested returns the length of the balanced open/close block at the start
// of s, or len(s) when it is unterminated.
func skipNested(s, open, close string) int {
	depth := 0
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], open):
			depth++
			i += len(open)
		case strings.HasPrefix(s[i:], close):
			depth--
			i += len(close)
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return len(s)
}

func atLineStart(s string, i int) bool {
	return i == 0 || s[i-1] == '\n'
}

func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}

// stripLines blanks headings, list items, indented lines, table leftovers and
// horizontal rules. Blanked lines separate paragraphs.
func stripLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		t := strings.TrimSpace(line)
		switch {
		case t == "":
			lines[i] = ""
		case reHeading.MatchString(t):
			lines[i] = ""
		case strings.HasPrefix(t, "----"):
			lines[i] = ""
		case strings.ContainsRune("*#:;|!", rune(t[0])):
			lines[i] = ""
		default:
			lines[i] = reMagic.ReplaceAllString(line, "")
		}
	}
	return strings.Join(lines, "\n")
}

// renderInline resolves links, external links, bold/italic markup and
// character entities, tracking rune offsets of link labels.
func renderInline(s string) (string, []Link) {
	var (
		b     strings.Builder
		links []Link
		pos   int
	)
	write := func(t string) {
		b.WriteString(t)
		pos += utf8.RuneCountInString(t)
	}

	for i := 0; i < len(s); {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, "[["):
			n := skipNested(rest, "[[", "]]")
			if n == len(rest) && !strings.HasSuffix(rest, "]]") {
				write(rest[:2])
				i += 2
				continue
			}
			i += n
			target, label, ok := parseLink(rest[2 : n-2])
			if !ok {
				continue
			}
			trail := linkTrail(s[i:])
			i += len(trail)
			label = stripQuotes(html.UnescapeString(label)) + trail
			if strings.TrimSpace(label) == "" {
				continue
			}
			start := pos
			write(label)
			if target != "" {
				links = append(links, Link{Target: target, Start: start, End: pos})
			}
		case rest[0] == '[' && isExternal(rest[1:]):
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				write(rest[:1])
				i++
				continue
			}
			if sp := strings.IndexAny(rest[:end], " \t"); sp >= 0 {
				write(stripQuotes(rest[sp+1 : end]))
			}
			i += end + 1
		case strings.HasPrefix(rest, "''"):
			j := 0
			for j < len(rest) && rest[j] == '\'' {
				j++
			}
			i += j
		case rest[0] == '&':
			if m := reEntity.FindString(rest); m != "" {
				write(strings.ReplaceAll(html.UnescapeString(m), "\u00a0", " "))
				i += len(m)
				continue
			}
			write("&")
			i++
		default:
			r, size := utf8.DecodeRuneInString(rest)
			if r == '\u00a0' {
				r = ' '
			}
			write(string(r))
			i += size
		}
	}
	return b.String(), links
}

// parseLink splits the inside of [[...]] into a normalised target and a label.
// ok is false for links that render nothing.
func parseLink(inner string) (target, label string, ok bool) {
	leadingColon := strings.HasPrefix(inner, ":")
	inner = strings.TrimPrefix(inner, ":")

	target, label, piped := strings.Cut(inner, "|")
	if !piped {
		label = target
	}
	if ns, _, found := strings.Cut(target, ":"); found && !leadingColon {
		key := strings.ToLower(strings.TrimSpace(ns))
		if droppedNamespaces[key] || reInterwiki.MatchString(key) {
			return "", "", false
		}
	}
	if piped && label == "" {
		// Pipe trick: [[Bank (Geographie)|]] renders as "Bank".
		label = target
		if p := strings.Index(label, " ("); p > 0 {
			label = label[:p]
		}
	}
	if strings.Contains(label, "[[") {
		label, _ = renderInline(label)
	}
	return NormalizeTitle(target), label, true
}

func linkTrail(s string) string {
	end := 0
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !unicode.IsLetter(r) {
			break
		}
		end += size
	}
	return s[:end]
}

func isExternal(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "//")
}

func stripQuotes(s string) string {
	for strings.Contains(s, "''") {
		s = strings.ReplaceAll(s, "'''", "")
		s = strings.ReplaceAll(s, "''", "")
	}
	return s
}

var upper = cases.Upper(language.Und)

// NormalizeTitle converts a link target to the canonical page title form:
// fragment removed, underscores as spaces, whitespace collapsed and the first
// letter upper-cased.
func NormalizeTitle(target string) string {
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = target[:i]
	}
	target = strings.ReplaceAll(target, "_", " ")
	target = strings.Join(strings.Fields(html.UnescapeString(target)), " ")
	if target == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(target)
	return upper.String(string(r)) + target[size:]
}

// Paragraph is a block of cleaned text between blank lines. Offset is the
// rune offset of Text in the cleaned page; link offsets are page offsets too.
type Paragraph struct {
	Offset int    `json:"offset"`
	Text   string `json:"text"`
	Links  []Link `json:"links,omitempty"`
}

// Paragraphs cleans the page text and splits it into non-empty paragraphs.
func Paragraphs(page *Page) []Paragraph {
	text, links := Clean(page.Text)
	return SplitParagraphs(text, links)
}

// SplitParagraphs splits cleaned text on blank lines and assigns each link to
// the paragraph containing it.
func SplitParagraphs(text string, links []Link) []Paragraph {
	var paras []Paragraph
	runePos := 0
	bytePos := 0
	for _, loc := range append(reBlankLines.FindAllStringIndex(text, -1), []int{len(text), len(text)}) {
		block := text[bytePos:loc[0]]
		lead := len(block) - len(strings.TrimLeftFunc(block, unicode.IsSpace))
		trimmed := strings.TrimSpace(block)
		if trimmed != "" {
			offset := runePos + utf8.RuneCountInString(block[:lead])
			p := Paragraph{Offset: offset, Text: trimmed}
			end := offset + utf8.RuneCountInString(trimmed)
			for _, l := range links {
				if l.Start >= offset && l.End <= end {
					p.Links = append(p.Links, l)
				}
			}
			paras = append(paras, p)
		}
		runePos += utf8.RuneCountInString(text[bytePos:loc[1]])
		bytePos = loc[1]
	}
	return paras
}
