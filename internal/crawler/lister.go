package crawler

import (
	"context"
	"fmt"
)

// PageList is the ordered set of listing page URLs for one account.
type PageList struct {
	URLs      []string
	ItemCount int
}

// ListPages samples page 1 to learn the account's total item count, then
// builds the URL of every page. On any failure it returns an empty PageList
// together with the error.
func (c *Client) ListPages(ctx context.Context, accountID int64) (PageList, error) {
	resp, err := c.session.Get(ctx, c.PageURL(accountID, 1))
	if err != nil {
		return PageList{}, fmt.Errorf("failed to fetch first page: %w", err)
	}

	listing, err := decodeListing(resp.Body)
	if err != nil {
		return PageList{}, fmt.Errorf("failed to decode first page: %w", err)
	}

	itemCount := listing.Data.TList.Total()

	return c.BuildPageList(accountID, itemCount), nil
}

// BuildPageList returns the URLs of pages 1..ceil(itemCount/pageSize).
func (c *Client) BuildPageList(accountID int64, itemCount int) PageList {
	count := PageCount(itemCount, c.cfg.PageSize)

	urls := make([]string, 0, count)
	for page := 1; page <= count; page++ {
		urls = append(urls, c.PageURL(accountID, page))
	}

	return PageList{URLs: urls, ItemCount: itemCount}
}

// PageURL returns the listing URL of one page.
func (c *Client) PageURL(accountID int64, page int) string {
	return fmt.Sprintf("%s?mid=%d&pagesize=%d&tid=0&page=%d&keyword=&order=pubdate",
		c.cfg.ListURL, accountID, c.cfg.PageSize, page)
}

// PageCount returns ceil(items/pageSize), or 0 for non-positive inputs.
func PageCount(items, pageSize int) int {
	if items <= 0 || pageSize <= 0 {
		return 0
	}

	return (items + pageSize - 1) / pageSize
}
