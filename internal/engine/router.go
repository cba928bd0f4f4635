package engine

import (
	"fmt"
	"time"
)

// Route is one row of the static navigation table.
type Route struct {
	Screen    ScreenID      `yaml:"screen"`
	Next      ScreenID      `yaml:"next"`
	AutoRoute bool          `yaml:"auto_route"`
	Settle    time.Duration `yaml:"settle"`
}

// Router maps a screen to the screen after it. It holds no state.
type Router struct {
	routes map[ScreenID]Route
}

func NewRouter(routes []Route) (*Router, error) {
	r := &Router{routes: make(map[ScreenID]Route, len(routes))}
	for _, rt := range routes {
		if !KnownScreen(rt.Screen) {
			return nil, fmt.Errorf("%w: unknown screen %q", ErrInvalidCatalog, rt.Screen)
		}
		if !KnownScreen(rt.Next) {
			return nil, fmt.Errorf("%w: route %q points to unknown screen %q", ErrInvalidCatalog, rt.Screen, rt.Next)
		}
		if _, dup := r.routes[rt.Screen]; dup {
			return nil, fmt.Errorf("%w: duplicate route for %q", ErrInvalidCatalog, rt.Screen)
		}
		if rt.Settle < 0 {
			rt.Settle = 0
		}
		r.routes[rt.Screen] = rt
	}
	return r, nil
}

// Next is the destination for screen, used by skip actions.
func (r *Router) Next(screen ScreenID) (ScreenID, bool) {
	rt, ok := r.routes[screen]
	if !ok {
		return "", false
	}
	return rt.Next, true
}

// Auto returns the route only when auto-routing is enabled for screen.
func (r *Router) Auto(screen ScreenID) (Route, bool) {
	rt, ok := r.routes[screen]
	if !ok || !rt.AutoRoute {
		return Route{}, false
	}
	return rt, true
}

// Route returns the raw table row.
func (r *Router) Route(screen ScreenID) (Route, bool) {
	rt, ok := r.routes[screen]
	return rt, ok
}

// Navigator performs a screen transition on behalf of the engine.
type Navigator interface {
	Navigate(to ScreenID)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(to ScreenID)

func (f NavigatorFunc) Navigate(to ScreenID) { f(to) }
