package portfolio

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/haito/internal/models"
)

func TestAllocateBySector(t *testing.T) {
	alloc := AllocateBySector([]models.Holding{
		{Ticker: "9432", Sector: models.SectorTelecom, MarketValue: 150000},
		{Ticker: "9433", Sector: models.SectorTelecom, MarketValue: 50000},
		{Ticker: "8306", Sector: models.SectorBank, MarketValue: 300000},
		{Ticker: "1111", Sector: "", MarketValue: 1000},
		{Ticker: "2222", Sector: models.SectorFood, MarketValue: 0},
	})

	require.Len(t, alloc, 3)
	assert.Equal(t, SectorAllocation{Sector: models.SectorBank, Value: 300000}, alloc[0])
	assert.Equal(t, SectorAllocation{Sector: models.SectorTelecom, Value: 200000}, alloc[1])
	assert.Equal(t, SectorAllocation{Sector: models.SectorOther, Value: 1000}, alloc[2])
}

func TestRenderSectorChart_PNG(t *testing.T) {
	png, err := RenderSectorChart([]models.Holding{
		{Ticker: "9432", Sector: models.SectorTelecom, MarketValue: 150000},
		{Ticker: "8306", Sector: models.SectorBank, MarketValue: 300000},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "expected PNG signature")
}

func TestRenderSectorChart_NoData(t *testing.T) {
	_, err := RenderSectorChart(nil)
	assert.True(t, errors.Is(err, ErrNoChartData))
}
