// Package theme holds the color palettes used by prompts and terminal output.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors used when rendering prompts and notices.
type Theme struct {
	Accent    lipgloss.Color
	AccentFg  lipgloss.Color // text drawn on Accent
	Border    lipgloss.Color
	BorderDim lipgloss.Color
	MutedFg   lipgloss.Color
	TextFg    lipgloss.Color
	SuccessFg lipgloss.Color
	WarnFg    lipgloss.Color
	ErrorFg   lipgloss.Color
}

// Theme names.
const (
	AutoName            = "auto"
	DraculaName         = "dracula"
	DraculaLightName    = "dracula-light"
	NordName            = "nord"
	GruvboxDarkName     = "gruvbox-dark"
	SolarizedLightName  = "solarized-light"
	CatppuccinMochaName = "catppuccin-mocha"
)

type entry struct {
	build func() *Theme
	light bool
}

var registry = map[string]entry{
	DraculaName:         {build: Dracula},
	DraculaLightName:    {build: DraculaLight, light: true},
	NordName:            {build: Nord},
	GruvboxDarkName:     {build: GruvboxDark},
	SolarizedLightName:  {build: SolarizedLight, light: true},
	CatppuccinMochaName: {build: CatppuccinMocha},
}

// Dracula returns the Dracula theme (dark background, vibrant colors).
func Dracula() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#BD93F9"),
		AccentFg:  lipgloss.Color("#282A36"),
		Border:    lipgloss.Color("#6272A4"),
		BorderDim: lipgloss.Color("#44475A"),
		MutedFg:   lipgloss.Color("#6272A4"),
		TextFg:    lipgloss.Color("#F8F8F2"),
		SuccessFg: lipgloss.Color("#50FA7B"),
		WarnFg:    lipgloss.Color("#FFB86C"),
		ErrorFg:   lipgloss.Color("#FF5555"),
	}
}

// DraculaLight returns the Dracula palette adapted for light backgrounds.
func DraculaLight() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#7C3AED"),
		AccentFg:  lipgloss.Color("#FFFFFF"),
		Border:    lipgloss.Color("#D0D7DE"),
		BorderDim: lipgloss.Color("#E8E8E8"),
		MutedFg:   lipgloss.Color("#6E7781"),
		TextFg:    lipgloss.Color("#24292F"),
		SuccessFg: lipgloss.Color("#059669"),
		WarnFg:    lipgloss.Color("#D97706"),
		ErrorFg:   lipgloss.Color("#DC2626"),
	}
}

// Nord returns the Nord theme.
func Nord() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#88C0D0"),
		AccentFg:  lipgloss.Color("#2E3440"),
		Border:    lipgloss.Color("#4C566A"),
		BorderDim: lipgloss.Color("#434C5E"),
		MutedFg:   lipgloss.Color("#81A1C1"),
		TextFg:    lipgloss.Color("#E5E9F0"),
		SuccessFg: lipgloss.Color("#A3BE8C"),
		WarnFg:    lipgloss.Color("#EBCB8B"),
		ErrorFg:   lipgloss.Color("#BF616A"),
	}
}

// GruvboxDark returns the Gruvbox dark theme.
func GruvboxDark() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#FABD2F"),
		AccentFg:  lipgloss.Color("#282828"),
		Border:    lipgloss.Color("#504945"),
		BorderDim: lipgloss.Color("#3C3836"),
		MutedFg:   lipgloss.Color("#928374"),
		TextFg:    lipgloss.Color("#EBDBB2"),
		SuccessFg: lipgloss.Color("#B8BB26"),
		WarnFg:    lipgloss.Color("#FE8019"),
		ErrorFg:   lipgloss.Color("#FB4934"),
	}
}

// SolarizedLight returns the Solarized light theme.
func SolarizedLight() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#268BD2"),
		AccentFg:  lipgloss.Color("#FDF6E3"),
		Border:    lipgloss.Color("#93A1A1"),
		BorderDim: lipgloss.Color("#EEE8D5"),
		MutedFg:   lipgloss.Color("#839496"),
		TextFg:    lipgloss.Color("#586E75"),
		SuccessFg: lipgloss.Color("#859900"),
		WarnFg:    lipgloss.Color("#B58900"),
		ErrorFg:   lipgloss.Color("#DC322F"),
	}
}

// CatppuccinMocha returns the Catppuccin Mocha theme.
func CatppuccinMocha() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#B4BEFE"),
		AccentFg:  lipgloss.Color("#1E1E2E"),
		Border:    lipgloss.Color("#45475A"),
		BorderDim: lipgloss.Color("#313244"),
		MutedFg:   lipgloss.Color("#6C7086"),
		TextFg:    lipgloss.Color("#CDD6F4"),
		SuccessFg: lipgloss.Color("#A6E3A1"),
		WarnFg:    lipgloss.Color("#F9E2AF"),
		ErrorFg:   lipgloss.Color("#F38BA8"),
	}
}

// Lookup returns the named theme. "auto" and the empty name pick the
// default matching the terminal background.
func Lookup(name string) (*Theme, bool) {
	if name == "" || name == AutoName {
		return Detect(), true
	}
	e, ok := registry[name]
	if !ok {
		return nil, false
	}
	return e.build(), true
}

// GetTheme returns a theme by name, or Dracula if not found.
func GetTheme(name string) *Theme {
	if thm, ok := Lookup(name); ok {
		return thm
	}
	return Dracula()
}

// Detect picks the default theme for the terminal background.
func Detect() *Theme {
	if lipgloss.HasDarkBackground() {
		return registry[DefaultDark()].build()
	}
	return registry[DefaultLight()].build()
}

// IsLight reports whether name is a light theme.
func IsLight(name string) bool {
	return registry[name].light
}

// DefaultDark returns the default dark theme name.
func DefaultDark() string {
	return DraculaName
}

// DefaultLight returns the default light theme name.
func DefaultLight() string {
	return DraculaLightName
}

// AvailableThemes returns the sorted theme names, "auto" excluded.
func AvailableThemes() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
