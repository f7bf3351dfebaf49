// Package render draws board snapshots as SVG documents and PNG thumbnails.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/colornames"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

const (
	MinSize     = 32
	MaxSize     = 1024
	DefaultSize = 192

	viewBox  = 300
	cellSize = viewBox / 3
	inset    = 25
	radius   = 30
)

var (
	backgroundColor = colornames.White
	gridColor       = colornames.Darkslategray
	highlightColor  = colornames.Khaki
	markXColor      = colornames.Crimson
	markOColor      = colornames.Royalblue
)

// ClampSize keeps a requested thumbnail size within [MinSize, MaxSize].
// Zero selects DefaultSize.
func ClampSize(size int) int {
	switch {
	case size == 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	default:
		return size
	}
}

// BoardSVG returns an SVG document of the board. Cells of line, when given, are highlighted.
func BoardSVG(board entity.Board, line *entity.Line) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, viewBox, viewBox, viewBox, viewBox)
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, viewBox, viewBox, hex(backgroundColor))

	if line != nil {
		for _, cell := range line {
			x, y := cellOrigin(cell)
			fmt.Fprintf(&sb, `<rect class="win" x="%d" y="%d" width="%d" height="%d" fill="%s"/>`, x, y, cellSize, cellSize, hex(highlightColor))
		}
	}

	for i := 1; i < 3; i++ {
		pos := i * cellSize
		fmt.Fprintf(&sb, `<line x1="%d" y1="0" x2="%d" y2="%d" stroke="%s" stroke-width="6"/>`, pos, pos, viewBox, hex(gridColor))
		fmt.Fprintf(&sb, `<line x1="0" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="6"/>`, pos, viewBox, pos, hex(gridColor))
	}

	for cell, mark := range board {
		x, y := cellOrigin(cell)

		switch mark {
		case entity.PlayerX:
			stroke := hex(markXColor)
			fmt.Fprintf(&sb, `<line class="x" x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="10" stroke-linecap="round"/>`,
				x+inset, y+inset, x+cellSize-inset, y+cellSize-inset, stroke)
			fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="10" stroke-linecap="round"/>`,
				x+cellSize-inset, y+inset, x+inset, y+cellSize-inset, stroke)
		case entity.PlayerO:
			fmt.Fprintf(&sb, `<circle class="o" cx="%d" cy="%d" r="%d" fill="none" stroke="%s" stroke-width="10"/>`,
				x+cellSize/2, y+cellSize/2, radius, hex(markOColor))
		}
	}

	sb.WriteString(`</svg>`)

	return sb.String()
}

// BoardPNG rasterises BoardSVG into a size x size PNG.
func BoardPNG(ctx context.Context, board entity.Board, line *entity.Line, size int) ([]byte, error) {
	size = ClampSize(size)

	icon, err := oksvg.ReadIconStream(strings.NewReader(BoardSVG(board, line)))
	if err != nil {
		return nil, fmt.Errorf("parse board svg: %w", err)
	}

	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	var pngBuf bytes.Buffer
	if err = png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return pngBuf.Bytes(), nil
}

func cellOrigin(cell int) (int, int) {
	return (cell % 3) * cellSize, (cell / 3) * cellSize
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
