// Package theme holds the closed set of UI themes the shell can inject into
// the embedded page. The bridge only validates and tracks the active name;
// applying the CSS is the shell's job.
package theme

import "fmt"

// Name identifies one of the built-in themes.
type Name string

const (
	Default  Name = "default"
	Dracula  Name = "dracula"
	Solar    Name = "solar"
	Minty    Name = "minty"
	Cerulean Name = "cerulean"
	DarkPlus Name = "darkplus"
)

// UnknownThemeError is returned when a theme name outside the closed set is
// requested.
type UnknownThemeError struct {
	Theme string
}

func (e *UnknownThemeError) Error() string {
	return fmt.Sprintf("unknown theme %q", e.Theme)
}

var all = map[Name]string{
	Default:  "",
	Dracula:  ":root{--dd-bg:#282a36;--dd-fg:#f8f8f2;--dd-accent:#bd93f9;}",
	Solar:    ":root{--dd-bg:#fdf6e3;--dd-fg:#657b83;--dd-accent:#b58900;}",
	Minty:    ":root{--dd-bg:#f6fff9;--dd-fg:#2b5d4a;--dd-accent:#78c2ad;}",
	Cerulean: ":root{--dd-bg:#f4f9fd;--dd-fg:#033c73;--dd-accent:#2fa4e7;}",
	DarkPlus: ":root{--dd-bg:#1e1e1e;--dd-fg:#d4d4d4;--dd-accent:#569cd6;}",
}

// Valid reports whether s names a built-in theme.
func Valid(s string) bool {
	_, ok := all[Name(s)]
	return ok
}

// Parse returns the theme name for s, or an UnknownThemeError.
func Parse(s string) (Name, error) {
	if s == "" {
		return Default, nil
	}
	if !Valid(s) {
		return "", &UnknownThemeError{Theme: s}
	}
	return Name(s), nil
}

// CSS returns the stylesheet for a theme. The default theme has no override
// CSS: the page renders as shipped.
func CSS(n Name) string {
	return all[n]
}

// Names lists every valid theme name.
func Names() []string {
	return []string{
		string(Default), string(Dracula), string(Solar),
		string(Minty), string(Cerulean), string(DarkPlus),
	}
}
