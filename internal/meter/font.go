package meter

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// newFace builds a label face from TTF data at the given point size, falling
// back to a bitmap face when no data is supplied or parsing fails.
func newFace(data []byte, size float64) font.Face {
	if size < 6 {
		size = 6
	}
	if len(data) > 0 {
		if ttf, err := opentype.Parse(data); err == nil {
			face, err := opentype.NewFace(ttf, &opentype.FaceOptions{
				Size:    size,
				DPI:     96,
				Hinting: font.HintingFull,
			})
			if err == nil {
				return face
			}
		}
	}
	return basicfont.Face7x13
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

func faceAscent(face font.Face) int { return face.Metrics().Ascent.Ceil() }

func faceHeight(face font.Face) int { return face.Metrics().Height.Ceil() }

// drawText renders s with its baseline starting at pt.
func drawText(dst *image.RGBA, face font.Face, col color.NRGBA, pt image.Point, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(pt.X, pt.Y),
	}
	d.DrawString(s)
}
