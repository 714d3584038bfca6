package viz

import "strings"

const marqueeSep = " • "

// Marquee scrolls a repeated title one column per Advance.
type Marquee struct {
	text   []rune
	offset int
}

func NewMarquee(title string) *Marquee {
	if title == "" {
		title = "DOTPORTRAIT"
	}
	return &Marquee{text: []rune(strings.ToUpper(title) + marqueeSep)}
}

func (m *Marquee) Advance() {
	m.offset = (m.offset + 1) % len(m.text)
}

// Frame returns width runes of the endless strip at the current offset.
func (m *Marquee) Frame(width int) string {
	if width <= 0 {
		return ""
	}
	out := make([]rune, width)
	for i := range out {
		out[i] = m.text[(m.offset+i)%len(m.text)]
	}
	return string(out)
}
