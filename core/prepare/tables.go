package prepare

import (
	"context"
	"time"

	"github.com/FocuswithJustin/wikiwsd/core/errors"
	"github.com/FocuswithJustin/wikiwsd/core/sqldump"
	"github.com/FocuswithJustin/wikiwsd/internal/archive"
	"github.com/FocuswithJustin/wikiwsd/internal/logging"
)

// loadPages copies the page table into the store.
func (c *Converter) loadPages(ctx context.Context, path string, stats *Stats) error {
	f, err := archive.Open(path)
	if err != nil {
		return errors.NewIO("open", path, err)
	}
	defer f.Close()

	start := time.Now()
	batch := make([]sqldump.Page, 0, tableBatch)
	err = sqldump.PageRows(f, func(p sqldump.Page) error {
		batch = append(batch, p)
		if len(batch) < tableBatch {
			return nil
		}
		stats.Pages += int64(len(batch))
		logging.StageProgress(ctx, "pages", stats.Pages)
		err := c.store.InsertPages(ctx, batch)
		batch = batch[:0]
		return err
	})
	if err != nil {
		return &errors.ParseError{Format: "page table", Path: path, Message: err.Error(), Err: err}
	}
	if err := c.store.InsertPages(ctx, batch); err != nil {
		return err
	}
	stats.Pages += int64(len(batch))
	logging.StageDone(ctx, "pages", stats.Pages, time.Since(start))
	return nil
}

// loadCategories copies the categorylinks table into the store.
func (c *Converter) loadCategories(ctx context.Context, path string, stats *Stats) error {
	f, err := archive.Open(path)
	if err != nil {
		return errors.NewIO("open", path, err)
	}
	defer f.Close()

	start := time.Now()
	batch := make([]sqldump.CategoryLink, 0, tableBatch)
	err = sqldump.CategoryLinkRows(f, func(l sqldump.CategoryLink) error {
		batch = append(batch, l)
		if len(batch) < tableBatch {
			return nil
		}
		stats.Categories += int64(len(batch))
		err := c.store.InsertCategories(ctx, batch)
		batch = batch[:0]
		return err
	})
	if err != nil {
		return &errors.ParseError{Format: "categorylinks table", Path: path, Message: err.Error(), Err: err}
	}
	if err := c.store.InsertCategories(ctx, batch); err != nil {
		return err
	}
	stats.Categories += int64(len(batch))
	logging.StageDone(ctx, "categories", stats.Categories, time.Since(start))
	return nil
}
