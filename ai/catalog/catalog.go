// Package catalog defines the closed set of expert routes and their example utterances.
package catalog

import (
	"fmt"
	"strings"

	"github.com/hrygo/coursebot/ai/configloader"
)

// RouteName identifies an expert.
type RouteName string

const (
	RouteProgressReport RouteName = "progress_report"
	RouteProblemSolve   RouteName = "problem_solve"
	RouteMaterialInfo   RouteName = "material_info"
	RouteMentalSupport  RouteName = "mental_support"
	// RouteFallback has no utterances; it is selected only by the router.
	RouteFallback RouteName = "fallback"
)

// String returns the route name.
func (n RouteName) String() string {
	return string(n)
}

// knownRoutes is the closed set, fallback included.
var knownRoutes = map[RouteName]struct{}{
	RouteProgressReport: {},
	RouteProblemSolve:   {},
	RouteMaterialInfo:   {},
	RouteMentalSupport:  {},
	RouteFallback:       {},
}

// IsKnown reports whether name belongs to the closed set.
func IsKnown(name RouteName) bool {
	_, ok := knownRoutes[name]
	return ok
}

// ParseRouteName maps a classifier label to a routable expert.
// Returns false for empty labels, labels outside the closed set, and "fallback".
func ParseRouteName(label string) (RouteName, bool) {
	name := RouteName(strings.TrimSpace(label))
	if name == "" || name == RouteFallback || !IsKnown(name) {
		return "", false
	}
	return name, true
}

// Route pairs an expert with the phrases the classifier is calibrated on.
// Utterance order carries no meaning.
type Route struct {
	Name       RouteName `yaml:"name"`
	Utterances []string  `yaml:"utterances"`
}

// Catalog is an immutable, ordered list of routes.
type Catalog struct {
	routes []Route
}

// New validates routes and builds a catalog from them.
func New(routes []Route) (*Catalog, error) {
	if len(routes) == 0 {
		return nil, fmt.Errorf("catalog requires at least one route")
	}

	seen := make(map[RouteName]bool, len(routes))
	copied := make([]Route, 0, len(routes))
	for _, r := range routes {
		if !IsKnown(r.Name) {
			return nil, fmt.Errorf("unknown route %q", r.Name)
		}
		if r.Name == RouteFallback {
			return nil, fmt.Errorf("route %q cannot declare utterances", r.Name)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate route %q", r.Name)
		}
		seen[r.Name] = true

		utterances := make([]string, 0, len(r.Utterances))
		for _, u := range r.Utterances {
			if u = strings.TrimSpace(u); u != "" {
				utterances = append(utterances, u)
			}
		}
		if len(utterances) == 0 {
			return nil, fmt.Errorf("route %q has no utterances", r.Name)
		}
		copied = append(copied, Route{Name: r.Name, Utterances: utterances})
	}

	return &Catalog{routes: copied}, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultRoutes())
	if err != nil {
		// The built-in tables are static; failing here is a programming error.
		panic(err)
	}
	return c
}

// Routes returns a copy of the routes in declaration order.
func (c *Catalog) Routes() []Route {
	out := make([]Route, len(c.routes))
	for i, r := range c.routes {
		out[i] = Route{Name: r.Name, Utterances: append([]string(nil), r.Utterances...)}
	}
	return out
}

// Names returns the route names in declaration order.
func (c *Catalog) Names() []RouteName {
	names := make([]RouteName, len(c.routes))
	for i, r := range c.routes {
		names[i] = r.Name
	}
	return names
}

// UtteranceCount returns the size of the classifier reference set.
func (c *Catalog) UtteranceCount() int {
	n := 0
	for _, r := range c.routes {
		n += len(r.Utterances)
	}
	return n
}

// catalogFile is the YAML shape of routes.yaml.
type catalogFile struct {
	Routes []Route `yaml:"routes"`
}

// Load reads a YAML catalog through the loader.
// An empty path returns the built-in catalog.
func Load(loader *configloader.Loader, path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	var file catalogFile
	if err := loader.Load(path, &file); err != nil {
		return nil, fmt.Errorf("load route catalog: %w", err)
	}
	return New(file.Routes)
}
