package styles

// DefaultTheme is the baseline dark palette.
var DefaultTheme = Theme{
	Name:        "default",
	BorderStyle: "rounded",
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Verdict: VerdictColors{
		Valid:   "41",
		Invalid: "203",
		Unknown: "243",
		Pending: "220",
	},
	Chrome: ChromeColors{
		Header:       "111",
		Footer:       "110",
		ActiveTab:    "75",
		InactiveTab:  "245",
		SelectedItem: "75",
		Secret:       "214",
	},
	Borders: BorderColors{
		ActivePane:   "75",
		InactivePane: "240",
		Divider:      "238",
	},
}
