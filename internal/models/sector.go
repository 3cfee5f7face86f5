package models

// Sector taxonomy used for holdings. Values are the labels stored in the
// holdings document and shown by the client.
const (
	SectorTelecom     = "通信"
	SectorBank        = "銀行"
	SectorInsurance   = "保険"
	SectorAutomotive  = "自動車"
	SectorElectronics = "電機"
	SectorPharma      = "医薬"
	SectorFood        = "食品"
	SectorTrading     = "商社"
	SectorRetail      = "小売"
	SectorRealEstate  = "不動産"
	SectorInfra       = "インフラ"
	SectorEnergy      = "エネルギー"
	SectorOther       = "その他"
)

// Sectors lists the taxonomy in display order.
var Sectors = []string{
	SectorTelecom, SectorBank, SectorInsurance, SectorAutomotive, SectorElectronics,
	SectorPharma, SectorFood, SectorTrading, SectorRetail, SectorRealEstate,
	SectorInfra, SectorEnergy, SectorOther,
}

// sectorLabels holds romanised labels for renderers without CJK glyphs.
var sectorLabels = map[string]string{
	SectorTelecom:     "Telecom",
	SectorBank:        "Banking",
	SectorInsurance:   "Insurance",
	SectorAutomotive:  "Automotive",
	SectorElectronics: "Electronics",
	SectorPharma:      "Pharma",
	SectorFood:        "Food",
	SectorTrading:     "Trading",
	SectorRetail:      "Retail",
	SectorRealEstate:  "Real Estate",
	SectorInfra:       "Infrastructure",
	SectorEnergy:      "Energy",
	SectorOther:       "Other",
}

// SectorLabel returns the romanised label for a sector, or s itself when unknown.
func SectorLabel(s string) string {
	if l, ok := sectorLabels[s]; ok {
		return l
	}
	return s
}
