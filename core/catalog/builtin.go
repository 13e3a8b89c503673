package catalog

var (
	starterPool = []string{
		"SPECIES_PIKACHU", "SPECIES_CLEFAIRY", "SPECIES_JIGGLYPUFF", "SPECIES_EEVEE",
		"SPECIES_VULPIX", "SPECIES_GROWLITHE", "SPECIES_MEOWTH", "SPECIES_PSYDUCK",
		"SPECIES_POLIWAG", "SPECIES_MAGIKARP", "SPECIES_STARYU", "SPECIES_HORSEA",
	}

	midPool = append(clonePool(starterPool),
		"SPECIES_GOLDEEN", "SPECIES_CUBONE", "SPECIES_EXEGGCUTE", "SPECIES_VOLTORB",
		"SPECIES_MAGNEMITE",
	)

	latePool = append(clonePool(midPool),
		"SPECIES_DITTO", "SPECIES_PORYGON", "SPECIES_CHANSEY",
		"SPECIES_LAPRAS", "SPECIES_SNORLAX",
	)

	defaultCatalog = MustNew([]Entry{
		{Bucket: Bucket{Min: 1, Max: 5}, Candidates: starterPool},
		{Bucket: Bucket{Min: 6, Max: 15}, Candidates: midPool},
		{Bucket: Bucket{Min: 16, Max: 30}, Candidates: latePool},
		{Bucket: Bucket{Min: 31, Max: 50}, Candidates: latePool},
		{Bucket: Bucket{Min: 51, Max: 100}, Candidates: latePool},
	})
)

func clonePool(p []string) []string {
	return append([]string(nil), p...)
}

// Default returns the built-in catalog: five buckets over [1,100] with pools that
// grow as the level rises.
func Default() *Catalog {
	return defaultCatalog
}
