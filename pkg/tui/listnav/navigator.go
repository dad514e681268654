// Package listnav tracks the cursor and scroll window of a table.
package listnav

// Nav holds cursor and scroll state. It does not render.
type Nav struct {
	cursor int
	offset int
	count  int
	height int
}

// New returns a Nav with a ten row viewport.
func New() *Nav {
	return &Nav{height: 10}
}

func (n *Nav) Cursor() int { return n.cursor }

func (n *Nav) Offset() int { return n.offset }

// Sync updates the row count and viewport height, then clamps.
// Call it whenever the underlying list or the terminal size changes.
func (n *Nav) Sync(count, height int) {
	n.count = max(0, count)
	n.height = max(1, height)
	n.clamp()
}

// Move shifts the cursor by delta rows and scrolls to keep it visible.
// It reports whether anything changed.
func (n *Nav) Move(delta int) bool {
	before := *n
	n.cursor += delta
	n.clamp()
	return *n != before
}

// Page moves a whole viewport in the direction of dir (negative is up).
func (n *Nav) Page(dir int) bool {
	if dir < 0 {
		return n.Move(-n.height)
	}
	return n.Move(n.height)
}

func (n *Nav) Top() bool { return n.Move(-n.count) }

func (n *Nav) Bottom() bool { return n.Move(n.count) }

// Reset puts the cursor back on the first row.
func (n *Nav) Reset() {
	n.cursor, n.offset = 0, 0
}

// Window returns the half-open range of visible rows.
func (n *Nav) Window() (start, end int) {
	return n.offset, min(n.count, n.offset+n.height)
}

func (n *Nav) clamp() {
	if n.count == 0 {
		n.cursor, n.offset = 0, 0
		return
	}
	n.cursor = min(max(n.cursor, 0), n.count-1)
	if n.cursor < n.offset {
		n.offset = n.cursor
	}
	if n.cursor >= n.offset+n.height {
		n.offset = n.cursor - n.height + 1
	}
	n.offset = min(max(n.offset, 0), max(0, n.count-n.height))
}
