package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderCount renders a selection counter bar like [████░░░░] 4/8.
// The bar turns green once the target is reached.
func RenderCount(n, target int) string {
	if target <= 0 {
		return ""
	}
	if n < 0 {
		n = 0
	}
	filled := n
	if filled > target {
		filled = target
	}
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, target-filled)

	style := StyleYellow
	switch {
	case n == 0:
		style = StyleDim
	case n >= target:
		style = StyleGreen
	}
	return fmt.Sprintf("[%s] %d/%d", style.Render(bar), n, target)
}
