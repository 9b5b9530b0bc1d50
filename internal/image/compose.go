package imagepkg

import (
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
)

// Share image layout.
const (
	ShareWidth  = 1200
	ShareHeight = 630

	margin    = 40
	qrSide    = ShareHeight - 2*margin
	barHeight = 60
	curveTop  = margin + barHeight + margin
	curveMax  = 7 // costs above this share the last column
)

var factionColors = map[cards.Faction]color.NRGBA{
	cards.FactionDM:      {R: 0x6a, G: 0x3d, B: 0x9a, A: 0xff},
	cards.FactionPG:      {R: 0x1f, G: 0x78, B: 0xb4, A: 0xff},
	cards.FactionWH:      {R: 0xe3, G: 0x1a, B: 0x1c, A: 0xff},
	cards.FactionAO:      {R: 0x33, G: 0xa0, B: 0x2c, A: 0xff},
	cards.FactionNeutral: {R: 0x99, G: 0x99, B: 0x99, A: 0xff},
}

var (
	background = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	curveColor = color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
)

// ComposeShareImage draws a preview of a deck: a bar split by faction share,
// the mana curve below it and the QR code of the share link on the right.
// qr may be nil.
func ComposeShareImage(catalog *cards.Catalog, s *deck.State, qr image.Image) *image.NRGBA {
	canvas := imaging.New(ShareWidth, ShareHeight, background)
	chartWidth := ShareWidth - 3*margin - qrSide

	byFaction := map[cards.Faction]int{}
	curve := make([]int, curveMax+1)
	total := 0
	for _, e := range s.Entries() {
		c, ok := catalog.Lookup(e.Name)
		if !ok {
			continue
		}
		byFaction[c.Faction] += e.Count
		curve[min(c.Cost, curveMax)] += e.Count
		total += e.Count
	}

	// faction share bar
	if total > 0 {
		x := margin
		for _, f := range cards.Factions {
			n := byFaction[f]
			if n == 0 {
				continue
			}
			w := n * chartWidth / total
			canvas = paintRect(canvas, x, margin, w, barHeight, factionColors[f])
			x += w
		}
	}

	// mana curve, scaled to the tallest column
	tallest := 0
	for _, n := range curve {
		tallest = max(tallest, n)
	}
	if tallest > 0 {
		colWidth := chartWidth / len(curve)
		maxHeight := ShareHeight - margin - curveTop
		for i, n := range curve {
			if n == 0 {
				continue
			}
			h := n * maxHeight / tallest
			canvas = paintRect(canvas, margin+i*colWidth+4, ShareHeight-margin-h, colWidth-8, h, curveColor)
		}
	}

	if qr != nil {
		q := imaging.Resize(qr, qrSide, qrSide, imaging.NearestNeighbor)
		canvas = imaging.Paste(canvas, q, image.Pt(ShareWidth-margin-qrSide, margin))
	}
	return canvas
}

func paintRect(dst *image.NRGBA, x, y, w, h int, c color.NRGBA) *image.NRGBA {
	if w <= 0 || h <= 0 {
		return dst
	}
	return imaging.Paste(dst, imaging.New(w, h, c), image.Pt(x, y))
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}
