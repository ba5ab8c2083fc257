package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	chartWidth  = 900
	chartHeight = 480

	chartMarginLeft   = 70
	chartMarginRight  = 30
	chartMarginTop    = 50
	chartMarginBottom = 60
)

type trendSeries struct {
	name    string
	r, g, b float64
	values  []float64
}

// RenderMoodTrendChart draws per-day positive/neutral/negative percentage
// lines across the stored history and writes the result as a PNG. A missing
// or broken font falls back to gg's built-in face.
func RenderMoodTrendChart(history []DailyMood, path, fontPath string) error {
	if len(history) == 0 {
		return fmt.Errorf("no data points to chart")
	}

	dc := gg.NewContext(chartWidth, chartHeight)

	if fontPath != "" {
		face, err := loadChartFace(fontPath, 13)
		if err != nil {
			log.Printf("chart font load error path=%s (non-fatal): %v", fontPath, err)
		} else {
			dc.SetFontFace(face)
		}
	}

	dc.SetRGB(1, 1, 1)
	dc.Clear()

	plotLeft := float64(chartMarginLeft)
	plotRight := float64(chartWidth - chartMarginRight)
	plotTop := float64(chartMarginTop)
	plotBottom := float64(chartHeight - chartMarginBottom)

	xAt := func(i int) float64 {
		if len(history) == 1 {
			return (plotLeft + plotRight) / 2
		}
		return plotLeft + (plotRight-plotLeft)*float64(i)/float64(len(history)-1)
	}
	yAt := func(pct float64) float64 {
		return plotBottom - (plotBottom-plotTop)*pct/100
	}

	// Gridlines and y-axis labels every 25%.
	for pct := 0.0; pct <= 100; pct += 25 {
		y := yAt(pct)
		dc.SetRGB(0.90, 0.90, 0.90)
		dc.DrawLine(plotLeft, y, plotRight, y)
		dc.Stroke()

		label := fmt.Sprintf("%.0f%%", pct)
		w, h := dc.MeasureString(label)
		dc.SetRGB(0.35, 0.35, 0.35)
		dc.DrawString(label, plotLeft-w-8, y+h/2)
	}

	dc.SetRGB(0.20, 0.20, 0.20)
	dc.DrawLine(plotLeft, plotTop, plotLeft, plotBottom)
	dc.DrawLine(plotLeft, plotBottom, plotRight, plotBottom)
	dc.Stroke()

	series := []trendSeries{
		{name: "Positive", r: 0.18, g: 0.60, b: 0.25, values: make([]float64, len(history))},
		{name: "Neutral", r: 0.55, g: 0.55, b: 0.55, values: make([]float64, len(history))},
		{name: "Negative", r: 0.80, g: 0.20, b: 0.20, values: make([]float64, len(history))},
	}
	for i, day := range history {
		pos, neu, neg := day.Counts.Percentages()
		series[0].values[i] = pos
		series[1].values[i] = neu
		series[2].values[i] = neg
	}

	for _, s := range series {
		dc.SetRGB(s.r, s.g, s.b)
		for i := 1; i < len(s.values); i++ {
			dc.DrawLine(xAt(i-1), yAt(s.values[i-1]), xAt(i), yAt(s.values[i]))
		}
		dc.Stroke()
		for i, v := range s.values {
			dc.DrawCircle(xAt(i), yAt(v), 3)
			dc.Fill()
		}
	}

	// Day labels, thinned out when the history is long.
	step := 1
	if len(history) > 12 {
		step = len(history) / 12
	}
	dc.SetRGB(0.35, 0.35, 0.35)
	for i := 0; i < len(history); i += step {
		label := history[i].Day.Format("01-02")
		w, h := dc.MeasureString(label)
		dc.DrawString(label, xAt(i)-w/2, plotBottom+h+10)
	}

	title := "Mood Trends Over Time"
	dc.SetRGB(0.10, 0.10, 0.10)
	tw, _ := dc.MeasureString(title)
	dc.DrawString(title, (float64(chartWidth)-tw)/2, float64(chartMarginTop)/2+5)

	// Legend in the top-right corner of the plot.
	legendX := plotRight - 110
	legendY := plotTop + 8
	for _, s := range series {
		dc.SetRGB(s.r, s.g, s.b)
		dc.DrawRectangle(legendX, legendY-7, 14, 14)
		dc.Fill()
		dc.SetRGB(0.20, 0.20, 0.20)
		_, h := dc.MeasureString(s.name)
		dc.DrawString(s.name, legendX+20, legendY+h/2)
		legendY += 20
	}

	return dc.SavePNG(path)
}

func loadChartFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}
