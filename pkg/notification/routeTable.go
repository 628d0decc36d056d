package notification

import (
	"regexp"
	"strings"
)

// Route maps a link pattern to a screen. In a pattern "*" matches any
// substring and every other character matches itself.
type Route struct {
	Pattern string
	Screen  string
}

type compiledRoute struct {
	matcher *regexp.Regexp
	screen  string
}

// RouteTable is an ordered, compiled set of routes. It is read-only and may
// be shared between goroutines.
type RouteTable struct {
	routes []compiledRoute
}

// CompileRoutes compiles routes in order.
func CompileRoutes(routes []Route) *RouteTable {
	table := &RouteTable{routes: make([]compiledRoute, 0, len(routes))}
	for _, route := range routes {
		table.routes = append(table.routes, compiledRoute{
			matcher: compilePattern(route.Pattern),
			screen:  route.Screen,
		})
	}
	return table
}

func compilePattern(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

// Resolve returns the screen of the first route whose pattern matches the
// whole link, or def when the link is empty or nothing matches.
func (t *RouteTable) Resolve(link string, def string) string {
	if t == nil || link == "" {
		return def
	}
	for _, route := range t.routes {
		if route.matcher.MatchString(link) {
			return route.screen
		}
	}
	return def
}

// Len returns the number of routes.
func (t *RouteTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.routes)
}
