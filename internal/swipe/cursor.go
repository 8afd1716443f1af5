package swipe

import "github.com/jwong2529/humor-study/internal/domain/model"

// Cursor walks a fixed sequence of feed items forward only.
type Cursor struct {
	items []model.FeedItem
	pos   int
}

func NewCursor(items []model.FeedItem) *Cursor {
	return &Cursor{items: append([]model.FeedItem(nil), items...)}
}

// Current returns false once every item has been consumed.
func (c *Cursor) Current() (model.FeedItem, bool) {
	if c.pos >= len(c.items) {
		return model.FeedItem{}, false
	}
	return c.items[c.pos], true
}

// Advance moves forward by one. It is a no-op once exhausted.
func (c *Cursor) Advance() bool {
	if c.pos >= len(c.items) {
		return false
	}
	c.pos++
	return true
}

func (c *Cursor) Position() int {
	return c.pos
}

func (c *Cursor) Len() int {
	return len(c.items)
}

func (c *Cursor) Remaining() int {
	return len(c.items) - c.pos
}

func (c *Cursor) Exhausted() bool {
	return c.pos >= len(c.items)
}
