// Package wiki reads MediaWiki XML dumps and turns wikitext into plain
// paragraphs with link annotations.
package wiki

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Page is one <page> element of a dump.
type Page struct {
	ID        int64
	Namespace int
	Title     string
	// Redirect is the redirect target title, empty for articles.
	Redirect string
	Text     string
}

// IsArticle reports whether the page is a main-namespace, non-redirect page.
func (p *Page) IsArticle() bool {
	return p.Namespace == 0 && p.Redirect == ""
}

var (
	exprTitle    = xpath.MustCompile("title")
	exprNS       = xpath.MustCompile("ns")
	exprID       = xpath.MustCompile("id")
	exprRedirect = xpath.MustCompile("redirect/@title")
	exprText     = xpath.MustCompile("revision[last()]/text")
)

// DumpReader streams pages from a dump without loading it into memory.
type DumpReader struct {
	parser *xmlquery.StreamParser
	err    error
}

// NewDumpReader creates a reader over an uncompressed XML stream.
func NewDumpReader(r io.Reader) (*DumpReader, error) {
	sp, err := xmlquery.CreateStreamParser(r, "//page")
	if err != nil {
		return nil, fmt.Errorf("create stream parser: %w", err)
	}
	return &DumpReader{parser: sp}, nil
}

// Next returns the next page, or io.EOF after the last one.
func (d *DumpReader) Next() (*Page, error) {
	if d.err != nil {
		return nil, d.err
	}
	n, err := d.parser.Read()
	if err != nil {
		// The stream parser must not be read again after an error.
		if err == io.EOF {
			d.err = io.EOF
		} else {
			d.err = fmt.Errorf("parsing XML: %w", err)
		}
		return nil, d.err
	}

	page := &Page{
		Title:    strings.TrimSpace(innerText(n, exprTitle)),
		Redirect: strings.TrimSpace(innerText(n, exprRedirect)),
		Text:     innerText(n, exprText),
	}
	if s := innerText(n, exprNS); s != "" {
		ns, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("page %q: invalid ns %q", page.Title, s)
		}
		page.Namespace = ns
	}
	if s := innerText(n, exprID); s != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("page %q: invalid id %q", page.Title, s)
		}
		page.ID = id
	}
	return page, nil
}

// Each calls fn for every page until fn returns an error or the dump ends.
func (d *DumpReader) Each(fn func(*Page) error) error {
	for {
		page, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(page); err != nil {
			return err
		}
	}
}

func innerText(n *xmlquery.Node, expr *xpath.Expr) string {
	found := xmlquery.QuerySelector(n, expr)
	if found == nil {
		return ""
	}
	return found.InnerText()
}
