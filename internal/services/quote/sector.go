package quote

import (
	"strings"

	"github.com/bobmcallan/haito/internal/models"
)

// sectorMap maps provider sector names (English GICS-style and TSE 33-industry
// Japanese names) onto the holdings taxonomy.
var sectorMap = map[string]string{
	"Technology":             models.SectorElectronics,
	"Consumer Cyclical":      models.SectorAutomotive,
	"Consumer Defensive":     models.SectorFood,
	"Financial Services":     models.SectorBank,
	"Healthcare":             models.SectorPharma,
	"Industrials":            models.SectorElectronics,
	"Communication Services": models.SectorTelecom,
	"Energy":                 models.SectorEnergy,
	"Real Estate":            models.SectorRealEstate,
	"Basic Materials":        models.SectorOther,
	"Utilities":              models.SectorInfra,

	"情報・通信業":     models.SectorTelecom,
	"銀行業":        models.SectorBank,
	"保険業":        models.SectorInsurance,
	"証券、商品先物取引業": models.SectorBank,
	"その他金融業":     models.SectorBank,
	"輸送用機器":      models.SectorAutomotive,
	"電気機器":       models.SectorElectronics,
	"機械":         models.SectorElectronics,
	"精密機器":       models.SectorElectronics,
	"医薬品":        models.SectorPharma,
	"食料品":        models.SectorFood,
	"卸売業":        models.SectorTrading,
	"小売業":        models.SectorRetail,
	"不動産業":       models.SectorRealEstate,
	"電気・ガス業":     models.SectorInfra,
	"陸運業":        models.SectorInfra,
	"海運業":        models.SectorInfra,
	"空運業":        models.SectorInfra,
	"石油・石炭製品":    models.SectorEnergy,
	"鉱業":         models.SectorEnergy,
	"サービス業":      models.SectorOther,
	"建設業":        models.SectorInfra,
	"鉄鋼":         models.SectorOther,
	"非鉄金属":       models.SectorOther,
	"化学":         models.SectorOther,
}

// MapSector returns the taxonomy sector for a raw provider sector, or
// SectorOther when the name is empty or unmapped.
func MapSector(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.SectorOther
	}
	if s, ok := sectorMap[raw]; ok {
		return s
	}
	return models.SectorOther
}
