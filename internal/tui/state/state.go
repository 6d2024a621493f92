package state

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glabrego/fedi-cli/internal/timeline"
)

// ChromeLines is the toolbar plus the footer around the list body.
const ChromeLines = 2

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	return max(0, min(cursor, size-1))
}

// PageStep is the number of list lines visible below the chrome, and the
// distance a page key moves.
func PageStep(height int, hasStatus bool) int {
	if height <= 0 {
		return 10
	}
	visible := height - ChromeLines
	if hasStatus {
		visible--
	}
	return max(3, visible)
}

func HalfPage(height int, hasStatus bool) int {
	return max(1, PageStep(height, hasStatus)/2)
}

// CenteredWindow returns the [start, end) slice of rows to draw so the cursor
// stays near the middle of a body of the given height.
func CenteredWindow(totalRows, cursor, height int) (start, end int) {
	if height <= 0 || totalRows <= height {
		return 0, max(0, totalRows)
	}
	start = ClampCursor(cursor, totalRows) - height/2
	start = max(0, min(start, totalRows-height))
	return start, start + height
}

// RowIndexByID returns -1 when id is not in rows.
func RowIndexByID(rows []timeline.Row, id string) int {
	if id == "" {
		return -1
	}
	for i, row := range rows {
		if row.ID == id {
			return i
		}
	}
	return -1
}

// JumpTarget converts the 1-based row number typed at the jump prompt to a
// cursor position.
func JumpTarget(input string, size int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("not a row number: %q", input)
	}
	if n < 1 || n > size {
		return 0, fmt.Errorf("row %d out of range 1-%d", n, size)
	}
	return n - 1, nil
}
