package layout

import (
	"regexp"
	"strings"
)

// Ink selects which of the two display layers a glyph span is drawn on.
type Ink int

const (
	// Primary is the default ink (black on a black/red panel).
	Primary Ink = iota
	// Accent is the second ink (red), used for parenthesized annotations.
	Accent
)

func (i Ink) String() string {
	if i == Accent {
		return "accent"
	}
	return "primary"
}

// Measurer reports the glyph box of a string in one font at one size.
type Measurer interface {
	Measure(s string) (w, h int)
}

// Placement is a measured span of text at a canvas position. X and Y are
// the top-left corner of the glyph box.
type Placement struct {
	Text string
	X, Y int
	W, H int
	Ink  Ink
}

// Segment is a run of task text that is either plain or an annotation.
type Segment struct {
	Text       string
	Annotation bool
}

// Word is one space-separated word of a segment. Spaced words carry the
// space that separated them from the previous word.
type Word struct {
	Text   string
	Spaced bool
}

var annotationRe = regexp.MustCompile(`\(.*?\)`)

// Segments splits text at parenthesized spans. Order and whitespace are
// kept; empty runs between adjacent matches are dropped.
func Segments(text string) []Segment {
	var segs []Segment
	last := 0
	for _, m := range annotationRe.FindAllStringIndex(text, -1) {
		if m[0] > last {
			segs = append(segs, Segment{Text: text[last:m[0]]})
		}
		segs = append(segs, Segment{Text: text[m[0]:m[1]], Annotation: true})
		last = m[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:]})
	}
	return segs
}

// Words splits a segment on single spaces. Every word but the first gets
// its separating space back as a prefix.
func Words(segment string) []Word {
	parts := strings.Split(segment, " ")
	words := make([]Word, 0, len(parts))
	for i, p := range parts {
		if i == 0 {
			words = append(words, Word{Text: p})
			continue
		}
		words = append(words, Word{Text: " " + p, Spaced: true})
	}
	return words
}

const (
	// TaskPrefix starts every task paragraph.
	TaskPrefix = "- "
	// LineGap is added below the tallest glyph of a line on a wrap.
	LineGap = 3
	// TaskGap is added below the tallest glyph of a task's last line.
	TaskGap = 5
)

// TaskFlow lays out task paragraphs as left-flowing, word-wrapped text.
type TaskFlow struct {
	Measurer Measurer
	// Left is the line start column and Right the content boundary no
	// word may cross unless it is the first on its line.
	Left, Right int
	// Top is the y of the first line.
	Top int
	// Limit stops the flow before a task that would start below it.
	Limit int
	// Bottom is the lowest edge any glyph box may reach.
	Bottom int
}

// Layout places every word of tasks. Wrapping is decided once per word,
// whichever ink it lands on. The returned flag reports whether tasks or
// lines were dropped for lack of space.
func (f TaskFlow) Layout(tasks []string) ([]Placement, bool) {
	var out []Placement
	y := f.Top
	for _, task := range tasks {
		if y > f.Limit {
			return out, true
		}
		x := f.Left
		tallest := 0
		for _, seg := range Segments(TaskPrefix + task) {
			ink := Primary
			if seg.Annotation {
				ink = Accent
			}
			for _, word := range Words(seg.Text) {
				if word.Text == "" {
					continue
				}
				text := word.Text
				w, h := f.Measurer.Measure(text)
				if x+w > f.Right && x > f.Left {
					y += tallest + LineGap
					x = f.Left
					tallest = 0
					if word.Spaced {
						text = text[1:]
						if text == "" {
							continue
						}
						w, h = f.Measurer.Measure(text)
					}
				}
				if y+h > f.Bottom {
					return out, true
				}
				out = append(out, Placement{Text: text, X: x, Y: y, W: w, H: h, Ink: ink})
				x += w
				if h > tallest {
					tallest = h
				}
			}
		}
		y += tallest + TaskGap
	}
	return out, false
}
