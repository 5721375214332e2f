package logic

// Navigator moves a cursor through a pane and keeps it inside the viewport
type Navigator struct {
	cursor         int
	viewportOffset int
	viewportHeight int
	total          int
}

// NewNavigator creates a navigator for a pane of total rows
func NewNavigator(cursor, offset, height, total int) *Navigator {
	n := &Navigator{
		cursor:         cursor,
		viewportOffset: offset,
		viewportHeight: height,
		total:          total,
	}
	n.clamp()
	return n
}

// Cursor returns the cursor row
func (n *Navigator) Cursor() int { return n.cursor }

// Offset returns the first visible row
func (n *Navigator) Offset() int { return n.viewportOffset }

// Move applies a direction: up, down, pageup, pagedown, home, end
func (n *Navigator) Move(direction string) {
	page := n.viewportHeight
	if page < 1 {
		page = 1
	}
	switch direction {
	case "up":
		n.cursor--
	case "down":
		n.cursor++
	case "pageup":
		n.cursor -= page
	case "pagedown":
		n.cursor += page
	case "home":
		n.cursor = 0
	case "end":
		n.cursor = n.total - 1
	}
	n.clamp()
}

func (n *Navigator) clamp() {
	if n.cursor >= n.total {
		n.cursor = n.total - 1
	}
	if n.cursor < 0 {
		n.cursor = 0
	}
	n.ensureSelectedVisible()
}

func (n *Navigator) ensureSelectedVisible() {
	if n.viewportHeight <= 0 {
		n.viewportOffset = 0
		return
	}
	if n.cursor < n.viewportOffset {
		n.viewportOffset = n.cursor
	}
	if n.cursor >= n.viewportOffset+n.viewportHeight {
		n.viewportOffset = n.cursor - n.viewportHeight + 1
	}
	maxOffset := n.total - n.viewportHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	if n.viewportOffset > maxOffset {
		n.viewportOffset = maxOffset
	}
	if n.viewportOffset < 0 {
		n.viewportOffset = 0
	}
}
