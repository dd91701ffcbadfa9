package export

// Theme holds the colours of a generated list, as "#RRGGBB".
type Theme struct {
	TitleBackground   string
	TitleText         string
	HeaderBackground  string
	HeaderText        string
	SectionBackground string
	SectionText       string
	DateBackground    string
	CellBackground    string
	CellText          string
	Border            string
}

// DefaultTheme is the blue house style of the printed lists.
var DefaultTheme = Theme{
	TitleBackground:   "#4472C4",
	TitleText:         "#FFFFFF",
	HeaderBackground:  "#D9E2F3",
	HeaderText:        "#000000",
	SectionBackground: "#B4C6E7",
	SectionText:       "#000000",
	DateBackground:    "#E8F4FF",
	CellBackground:    "#FFFFFF",
	CellText:          "#000000",
	Border:            "#000000",
}

// orDefault fills empty colours from DefaultTheme.
func (t Theme) orDefault() Theme {
	pick := func(value, fallback string) string {
		if value == "" {
			return fallback
		}
		return value
	}
	d := DefaultTheme
	return Theme{
		TitleBackground:   pick(t.TitleBackground, d.TitleBackground),
		TitleText:         pick(t.TitleText, d.TitleText),
		HeaderBackground:  pick(t.HeaderBackground, d.HeaderBackground),
		HeaderText:        pick(t.HeaderText, d.HeaderText),
		SectionBackground: pick(t.SectionBackground, d.SectionBackground),
		SectionText:       pick(t.SectionText, d.SectionText),
		DateBackground:    pick(t.DateBackground, d.DateBackground),
		CellBackground:    pick(t.CellBackground, d.CellBackground),
		CellText:          pick(t.CellText, d.CellText),
		Border:            pick(t.Border, d.Border),
	}
}
