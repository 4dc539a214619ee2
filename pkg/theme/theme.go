// Package theme holds the fixed presentation styles for calculator cards.
// Nothing in the calculation core depends on it.
package theme

import "fmt"

// Name identifies one of the closed set of card themes.
type Name string

const (
	Blue   Name = "blue"
	Orange Name = "orange"
	Green  Name = "green"
	Purple Name = "purple"
)

// Style is the set of CSS utility classes a host page applies to a card.
type Style struct {
	Background    string `json:"bg" yaml:"bg"`
	Header        string `json:"header" yaml:"header"`
	Border        string `json:"border" yaml:"border"`
	Ring          string `json:"ring" yaml:"ring"`
	Icon          string `json:"icon" yaml:"icon"`
	Button        string `json:"button" yaml:"button"`
	Highlight     string `json:"highlight" yaml:"highlight"`
	TextHighlight string `json:"textHighlight" yaml:"textHighlight"`
}

var styles = map[Name]Style{
	Blue: {
		Background:    "bg-white",
		Header:        "bg-blue-50 text-blue-800",
		Border:        "border-blue-100",
		Ring:          "focus:ring-blue-500",
		Icon:          "text-blue-500",
		Button:        "bg-blue-600 hover:bg-blue-700",
		Highlight:     "bg-blue-50",
		TextHighlight: "text-blue-900",
	},
	Orange: {
		Background:    "bg-white",
		Header:        "bg-orange-50 text-orange-800",
		Border:        "border-orange-100",
		Ring:          "focus:ring-orange-500",
		Icon:          "text-orange-500",
		Button:        "bg-orange-600 hover:bg-orange-700",
		Highlight:     "bg-orange-50",
		TextHighlight: "text-orange-900",
	},
	Green: {
		Background:    "bg-white",
		Header:        "bg-emerald-50 text-emerald-800",
		Border:        "border-emerald-100",
		Ring:          "focus:ring-emerald-500",
		Icon:          "text-emerald-500",
		Button:        "bg-emerald-600 hover:bg-emerald-700",
		Highlight:     "bg-emerald-50",
		TextHighlight: "text-emerald-900",
	},
	Purple: {
		Background:    "bg-white",
		Header:        "bg-purple-50 text-purple-800",
		Border:        "border-purple-100",
		Ring:          "focus:ring-purple-500",
		Icon:          "text-purple-500",
		Button:        "bg-purple-600 hover:bg-purple-700",
		Highlight:     "bg-purple-50",
		TextHighlight: "text-purple-900",
	},
}

// All returns the theme names in a stable order.
func All() []Name {
	return []Name{Blue, Orange, Green, Purple}
}

// Parse converts a string into a known theme name.
func Parse(value string) (Name, error) {
	name := Name(value)
	if _, ok := styles[name]; !ok {
		return "", fmt.Errorf("unknown theme %q", value)
	}
	return name, nil
}

// Styles returns the style table entry for name. Unknown names fall back to Blue.
func Styles(name Name) Style {
	if style, ok := styles[name]; ok {
		return style
	}
	return styles[Blue]
}
