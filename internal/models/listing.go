// Package models defines the records handled by the crawler and the upstream
// listing API payloads.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ListingResponse is the body returned by the submission listing endpoint.
type ListingResponse struct {
	Message string      `json:"message"`
	Data    ListingData `json:"data"`
	Code    int         `json:"code"`
}

// ListingData holds the per-category counts and the videos of one page.
type ListingData struct {
	TList CategoryCounts `json:"tlist"`
	VList []ListedVideo  `json:"vlist"`
}

// ListedVideo is a single entry of data.vlist.
type ListedVideo struct {
	Title string `json:"title"`
	AID   int64  `json:"aid"`
}

// Category is one entry of data.tlist.
type Category struct {
	Name  string  `json:"name"`
	TID   int     `json:"tid"`
	Count FlexInt `json:"count"`
}

// CategoryCounts maps category keys to their counts. The API sends an empty
// array instead of an object when the account has no uploads.
type CategoryCounts map[string]Category

// UnmarshalJSON accepts an object, an empty array or null.
func (c *CategoryCounts) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*c = nil

		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return fmt.Errorf("tlist: %w", err)
		}

		if len(arr) != 0 {
			return fmt.Errorf("tlist: unexpected non-empty array of %d entries", len(arr))
		}

		*c = CategoryCounts{}

		return nil
	}

	m := map[string]Category{}
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return fmt.Errorf("tlist: %w", err)
	}

	*c = m

	return nil
}

// Total sums the counts of every category.
func (c CategoryCounts) Total() int {
	total := 0
	for _, cat := range c {
		total += int(cat.Count)
	}

	return total
}

// FlexInt decodes a JSON number or a numeric string.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		*f = 0

		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid count %q: %w", s, err)
	}

	*f = FlexInt(n)

	return nil
}
