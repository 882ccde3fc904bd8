package catalog

// Processing option ids of the built-in price list.
const (
	GlazeBoxHG            = "GlazeBoxHG"
	GlazeGradeBoxHG       = "GlazeGradeBoxHG"
	GlazeGradeSleeveBoxHG = "GlazeGradeSleeveBoxHG"
	FilletSkinOnPBI       = "FilletSKON_PBI_D_VP"
	FilletSkinOnPBO       = "FilletSKON_PBO_D_VP"
	DressedHeadOn         = "DressedHeadOn"
)

var priceList = []Option{
	{ID: GlazeBoxHG, Name: "Glaze & Box Salmon H&G", AddedCost: 0.30, RecoveryRate: 0.75},
	{ID: GlazeGradeBoxHG, Name: "Glaze Grade & Box Salmon H&G", AddedCost: 0.35, RecoveryRate: 0.75},
	{ID: GlazeGradeSleeveBoxHG, Name: "Glaze Grade Sleeve & Box Salmon H&G", AddedCost: 0.41, RecoveryRate: 0.75},
	{ID: FilletSkinOnPBI, Name: "Salmon Fillet sk/on PBI D VP", AddedCost: 1.53, RecoveryRate: 0.60},
	{ID: FilletSkinOnPBO, Name: "Salmon Fillet sk/on PBO D VP", AddedCost: 1.97, RecoveryRate: 0.60},
	{ID: DressedHeadOn, Name: "Dressed Head On", AddedCost: 0.55, RecoveryRate: 0.85},
}

var defaultCatalog = mustNew(priceList...)

// Default returns the compiled-in processing price list.
func Default() *Catalog {
	return defaultCatalog
}

func mustNew(options ...Option) *Catalog {
	c, err := New(options...)
	if err != nil {
		panic(err)
	}
	return c
}
