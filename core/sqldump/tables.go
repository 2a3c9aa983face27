package sqldump

import (
	"fmt"
	"io"
	"strings"
)

// Page is a row of the page table.
type Page struct {
	ID        int64
	Namespace int
	Title     string
	Redirect  bool
}

// CategoryLink is a row of the categorylinks table.
type CategoryLink struct {
	From     int64
	Category string
}

// Column positions in the current MediaWiki schema.
const (
	pageID         = 0
	pageNamespace  = 1
	pageTitle      = 2
	pageIsRedirect = 3

	clFrom = 0
	clTo   = 1
)

// PageRows calls fn for every row of a page table dump. Titles use spaces
// instead of underscores, as in the XML dump.
func PageRows(r io.Reader, fn func(Page) error) error {
	return Scan(r, "page", func(row Row) error {
		if len(row) <= pageIsRedirect {
			return fmt.Errorf("page row has %d columns", len(row))
		}
		id, err := row[pageID].Int()
		if err != nil {
			return fmt.Errorf("page_id: %w", err)
		}
		ns, err := row[pageNamespace].Int()
		if err != nil {
			return fmt.Errorf("page_namespace: %w", err)
		}
		redirect, err := row[pageIsRedirect].Int()
		if err != nil {
			return fmt.Errorf("page_is_redirect: %w", err)
		}
		return fn(Page{
			ID:        id,
			Namespace: int(ns),
			Title:     DisplayTitle(row[pageTitle].String()),
			Redirect:  redirect != 0,
		})
	})
}

// CategoryLinkRows calls fn for every row of a categorylinks table dump.
func CategoryLinkRows(r io.Reader, fn func(CategoryLink) error) error {
	return Scan(r, "categorylinks", func(row Row) error {
		if len(row) <= clTo {
			return fmt.Errorf("categorylinks row has %d columns", len(row))
		}
		from, err := row[clFrom].Int()
		if err != nil {
			return fmt.Errorf("cl_from: %w", err)
		}
		return fn(CategoryLink{
			From:     from,
			Category: DisplayTitle(row[clTo].String()),
		})
	})
}

// DisplayTitle converts a database title ("New_York_City") to its display form.
func DisplayTitle(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
