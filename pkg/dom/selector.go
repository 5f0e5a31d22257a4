package dom

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/pkg/errors"
)

// parseSelector compiles a CSS selector group
func parseSelector(src string) (cascadia.Selector, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, errors.New("empty selector")
	}
	sel, err := cascadia.Compile(src)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid selector %q", src)
	}
	return sel, nil
}
