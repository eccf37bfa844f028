package styles

// HighContrastTheme favors legibility on low-quality terminals.
var HighContrastTheme = Theme{
	Name:        "high-contrast",
	BorderStyle: "double",
	Base: BaseColors{
		Background: "16",
		Foreground: "231",
		Muted:      "250",
		Accent:     "51",
		Border:     "231",
	},
	Verdict: VerdictColors{
		Valid:   "46",
		Invalid: "196",
		Unknown: "250",
		Pending: "226",
	},
	Chrome: ChromeColors{
		Header:       "117",
		Footer:       "159",
		ActiveTab:    "51",
		InactiveTab:  "250",
		SelectedItem: "51",
		Secret:       "229",
	},
	Borders: BorderColors{
		ActivePane:   "231",
		InactivePane: "250",
		Divider:      "248",
	},
}
