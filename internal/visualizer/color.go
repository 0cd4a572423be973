package visualizer

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

type colorProfile uint8

const (
	colorNone colorProfile = iota
	colorANSI16
	colorANSI256
	colorTrueColor
)

var (
	profileOnce sync.Once
	profile     colorProfile
	seqCache    sync.Map
)

func currentColorProfile() colorProfile {
	profileOnce.Do(func() {
		profile = detectColorProfile(os.LookupEnv)
	})
	return profile
}

func detectColorProfile(lookup func(string) (string, bool)) colorProfile {
	if _, disabled := lookup("NO_COLOR"); disabled {
		return colorNone
	}
	term, _ := lookup("TERM")
	colorTerm, _ := lookup("COLORTERM")
	term = strings.ToLower(term)
	colorTerm = strings.ToLower(colorTerm)
	switch {
	case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
		return colorTrueColor
	case strings.Contains(term, "256color"):
		return colorANSI256
	case term == "", term == "dumb":
		return colorNone
	default:
		return colorANSI16
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func rgbKey(c colorful.Color) uint32 {
	r, g, b := c.Clamped().RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// ansiState suppresses repeated colour sequences within one rendered frame.
type ansiState struct {
	profile colorProfile
	fg      uint32
	bg      uint32
}

const noColor = ^uint32(0)

func newANSIState(p colorProfile) ansiState {
	return ansiState{profile: p, fg: noColor, bg: noColor}
}

func (s *ansiState) setFg(sb *strings.Builder, c colorful.Color) {
	if s.profile == colorNone {
		return
	}
	key := rgbKey(c)
	if key == s.fg {
		return
	}
	sb.WriteString(colorSequence(s.profile, key, false))
	s.fg = key
}

func (s *ansiState) setBg(sb *strings.Builder, c colorful.Color) {
	if s.profile == colorNone {
		return
	}
	key := rgbKey(c)
	if key == s.bg {
		return
	}
	sb.WriteString(colorSequence(s.profile, key, true))
	s.bg = key
}

func (s *ansiState) reset(sb *strings.Builder) {
	if s.profile == colorNone || (s.fg == noColor && s.bg == noColor) {
		return
	}
	sb.WriteString("\x1b[0m")
	s.fg = noColor
	s.bg = noColor
}

var ansi16Palette = [8][3]int{
	{0, 0, 0},
	{205, 49, 49},
	{13, 188, 121},
	{229, 229, 16},
	{36, 114, 200},
	{188, 63, 188},
	{17, 168, 205},
	{229, 229, 229},
}

func colorSequence(p colorProfile, rgb uint32, background bool) string {
	cacheKey := uint64(p)<<32 | uint64(rgb)
	if background {
		cacheKey |= 1 << 40
	}
	if seq, ok := seqCache.Load(cacheKey); ok {
		return seq.(string)
	}

	r := int(rgb >> 16 & 0xff)
	g := int(rgb >> 8 & 0xff)
	b := int(rgb & 0xff)

	var seq string
	switch p {
	case colorTrueColor:
		code := 38
		if background {
			code = 48
		}
		seq = fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", code, r, g, b)
	case colorANSI256:
		code := 38
		if background {
			code = 48
		}
		idx := 16 + 36*(r*5/255) + 6*(g*5/255) + b*5/255
		seq = fmt.Sprintf("\x1b[%d;5;%dm", code, idx)
	case colorANSI16:
		best := 0
		bestDist := math.MaxFloat64
		for i, pal := range ansi16Palette {
			dr := float64(r - pal[0])
			dg := float64(g - pal[1])
			db := float64(b - pal[2])
			d := dr*dr + dg*dg + db*db
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		base := 30
		if background {
			base = 40
		}
		seq = fmt.Sprintf("\x1b[%dm", base+best)
	}

	seqCache.Store(cacheKey, seq)
	return seq
}
