package depthfx

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
)

// Headline timing, in seconds.
const (
	wordInterval   = 0.6  // one more word becomes visible every interval
	subtitleHold   = 0.8  // after the last word, before the subtitle
	fadeDuration   = 0.7  // opacity transition length
	wordStagger    = 0.13 // per-index transition delay
	wordJitter     = 0.07 // random extra word delay, [0, jitter)
	subtitleLead   = 0.2  // extra subtitle delay after the word staggers
	subtitleJitter = 0.1  // random extra subtitle delay, [0, jitter)
)

const (
	defaultTitleSize = 56.0
	defaultSubSize   = 22.0
	defaultWordGap   = 14.0
	defaultLineGap   = 24.0
	defaultMaxWidth  = 640.0
	accentWord       = "ANTIFRAGILE"
	defaultTitle     = "The Antifragile Way"
	defaultSubtitle  = "Generative Engine Optimization to grow systems that scale with you."
)

// AccentColor tints the title word containing "ANTIFRAGILE" (#1D40B0).
var AccentColor = Color{R: 29.0 / 255, G: 64.0 / 255, B: 176.0 / 255, A: 1}

// RevealEntry is one element of the headline timeline. The element is
// flagged visible at VisibleAt and its fade starts Delay seconds later.
type RevealEntry struct {
	Text      string
	VisibleAt float64
	Delay     float64
	Accent    bool
	Subtitle  bool
}

// FadeStart returns the time the element's opacity transition begins.
func (r RevealEntry) FadeStart() float64 { return r.VisibleAt + r.Delay }

// HeadlineTimeline lays out the word-by-word reveal of title followed by the
// subtitle. rnd supplies the jitter in [0, 1); nil uses the global source.
func HeadlineTimeline(title, subtitle string, rnd *rand.Rand) []RevealEntry {
	float := rand.Float64
	if rnd != nil {
		float = rnd.Float64
	}
	words := strings.Fields(title)
	n := len(words)
	out := make([]RevealEntry, 0, n+1)
	for i, w := range words {
		out = append(out, RevealEntry{
			Text:      w,
			VisibleAt: float64(i+1) * wordInterval,
			Delay:     float64(i)*wordStagger + float()*wordJitter,
			Accent:    strings.Contains(strings.ToUpper(w), accentWord),
		})
	}
	if subtitle != "" {
		out = append(out, RevealEntry{
			Text:      subtitle,
			VisibleAt: float64(n)*wordInterval + subtitleHold,
			Delay:     float64(n)*wordStagger + subtitleLead + float()*subtitleJitter,
			Subtitle:  true,
		})
	}
	return out
}

// HeadlineConfig configures a Headline. Zero fields take defaults.
type HeadlineConfig struct {
	Title    string
	Subtitle string

	TitleSize    float64
	SubtitleSize float64
	MaxWidth     float64 // wrap width for title words, in pixels
	Ink          Color   // text color; zero means black

	Rand *rand.Rand
}

type revealState struct {
	RevealEntry
	tween *gween.Tween
	alpha float64
	done  bool
}

// Headline draws the title and subtitle fading in on a single clock.
type Headline struct {
	entries []revealState
	clock   float64

	titleFace *text.GoTextFace
	subFace   *text.GoTextFace
	maxWidth  float64
	ink       Color
}

// NewHeadline builds the timeline and loads the Go fonts.
func NewHeadline(cfg HeadlineConfig) (*Headline, error) {
	if cfg.Title == "" {
		cfg.Title = defaultTitle
		if cfg.Subtitle == "" {
			cfg.Subtitle = defaultSubtitle
		}
	}
	if cfg.TitleSize <= 0 {
		cfg.TitleSize = defaultTitleSize
	}
	if cfg.SubtitleSize <= 0 {
		cfg.SubtitleSize = defaultSubSize
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = defaultMaxWidth
	}
	if cfg.Ink == (Color{}) {
		cfg.Ink = Color{A: 1}
	}

	bold, err := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
	if err != nil {
		return nil, fmt.Errorf("headline: parse title font: %w", err)
	}
	medium, err := text.NewGoTextFaceSource(bytes.NewReader(gomedium.TTF))
	if err != nil {
		return nil, fmt.Errorf("headline: parse subtitle font: %w", err)
	}

	h := &Headline{
		titleFace: &text.GoTextFace{Source: bold, Size: cfg.TitleSize},
		subFace:   &text.GoTextFace{Source: medium, Size: cfg.SubtitleSize},
		maxWidth:  cfg.MaxWidth,
		ink:       cfg.Ink,
	}
	for _, e := range HeadlineTimeline(cfg.Title, cfg.Subtitle, cfg.Rand) {
		h.entries = append(h.entries, revealState{
			RevealEntry: e,
			tween:       gween.New(0, 1, fadeDuration, ease.InOutQuad),
		})
	}
	return h, nil
}

// Update advances the clock by dt seconds and the fades that have started.
func (h *Headline) Update(dt float64) {
	prev := h.clock
	h.clock += max(dt, 0)
	for i := range h.entries {
		e := &h.entries[i]
		if e.done {
			continue
		}
		start := e.FadeStart()
		if h.clock < start {
			continue
		}
		val, finished := e.tween.Update(float32(h.clock - max(prev, start)))
		e.alpha = float64(val)
		if finished {
			e.alpha, e.done = 1, true
		}
	}
}

// Len returns the number of timeline entries.
func (h *Headline) Len() int { return len(h.entries) }

// Entry returns timeline entry i.
func (h *Headline) Entry(i int) RevealEntry { return h.entries[i].RevealEntry }

// Alpha returns the current opacity of entry i in [0, 1].
func (h *Headline) Alpha(i int) float64 { return clamp01(h.entries[i].alpha) }

// Done reports whether every fade has finished.
func (h *Headline) Done() bool {
	for i := range h.entries {
		if !h.entries[i].done {
			return false
		}
	}
	return true
}

// Draw renders the headline with its top-left corner at origin. Title words
// are upper case and wrap at MaxWidth.
func (h *Headline) Draw(screen *ebiten.Image, origin Vec2) {
	tm := h.titleFace.Metrics()
	titleLH := tm.HAscent + tm.HDescent + tm.HLineGap
	x, y := origin.X, origin.Y
	wroteTitle := false

	for i := range h.entries {
		e := &h.entries[i]
		if e.Subtitle {
			if wroteTitle {
				y += titleLH + defaultLineGap
			}
			h.drawText(screen, e.Text, h.subFace, origin.X, y, h.ink, e.alpha)
			continue
		}
		word := strings.ToUpper(e.Text)
		w := text.Advance(word, h.titleFace)
		if x > origin.X && x+w > origin.X+h.maxWidth {
			x = origin.X
			y += titleLH
		}
		c := h.ink
		if e.Accent {
			c = AccentColor
		}
		h.drawText(screen, word, h.titleFace, x, y, c, e.alpha)
		x += w + defaultWordGap
		wroteTitle = true
	}
}

func (h *Headline) drawText(screen *ebiten.Image, s string, face *text.GoTextFace, x, y float64, c Color, alpha float64) {
	a := clamp01(alpha) * c.A
	if a <= 0 {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.Scale(float32(c.R*a), float32(c.G*a), float32(c.B*a), float32(a))
	text.Draw(screen, s, face, op)
}
