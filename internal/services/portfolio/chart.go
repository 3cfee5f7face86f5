package portfolio

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/haito/internal/models"
)

// ErrNoChartData is returned when no holding has a positive market value.
var ErrNoChartData = errors.New("no market value to chart")

// sectorColors follows models.Sectors order.
var sectorColors = []string{
	"2563eb", "16a34a", "0891b2", "dc2626", "7c3aed", "db2777", "ea580c",
	"ca8a04", "65a30d", "0d9488", "4f46e5", "b91c1c", "6b7280",
}

// SectorAllocation is the market value held in one sector.
type SectorAllocation struct {
	Sector string
	Value  float64
}

// AllocateBySector sums market value per sector, largest first. Holdings with
// an empty sector count as SectorOther.
func AllocateBySector(holdings []models.Holding) []SectorAllocation {
	totals := make(map[string]float64)
	for _, h := range holdings {
		sector := h.Sector
		if sector == "" {
			sector = models.SectorOther
		}
		totals[sector] += h.MarketValue
	}

	out := make([]SectorAllocation, 0, len(totals))
	for s, v := range totals {
		if v > 0 {
			out = append(out, SectorAllocation{Sector: s, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}

func sectorColor(sector string) drawing.Color {
	for i, s := range models.Sectors {
		if s == sector {
			return drawing.ColorFromHex(sectorColors[i%len(sectorColors)])
		}
	}
	return drawing.ColorFromHex(sectorColors[len(sectorColors)-1])
}

// RenderSectorChart renders a PNG pie chart of market value by sector.
// Labels are romanised since the default chart font has no CJK glyphs.
func RenderSectorChart(holdings []models.Holding) ([]byte, error) {
	alloc := AllocateBySector(holdings)
	if len(alloc) == 0 {
		return nil, ErrNoChartData
	}

	values := make([]chart.Value, len(alloc))
	for i, a := range alloc {
		values[i] = chart.Value{
			Value: a.Value,
			Label: models.SectorLabel(a.Sector),
			Style: chart.Style{FillColor: sectorColor(a.Sector)},
		}
	}

	graph := chart.PieChart{
		Title:  "Sector Allocation",
		Width:  600,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
