package streak

import "selapp/internal/model"

// Levels is the static tier table. Thresholds are cumulative seed
// totals and strictly increasing; the first tier starts at zero.
var Levels = []model.Level{
	{Level: 1, Name: "Semilla", Icon: "🌱", SeedsRequired: 0, Description: "Comenzando tu viaje en la Palabra"},
	{Level: 2, Name: "Brote", Icon: "🌿", SeedsRequired: 100, Description: "Creciendo en fe día a día"},
	{Level: 3, Name: "Planta", Icon: "🪴", SeedsRequired: 300, Description: "Arraigado en la Palabra"},
	{Level: 4, Name: "Árbol Joven", Icon: "🌳", SeedsRequired: 600, Description: "Fuerte y firme en la fe"},
	{Level: 5, Name: "Árbol Fuerte", Icon: "🌲", SeedsRequired: 1000, Description: "Como árbol plantado junto a corrientes de agua"},
	{Level: 6, Name: "Bosque", Icon: "🌴", SeedsRequired: 1500, Description: "Abundante en frutos del Espíritu"},
	{Level: 7, Name: "Maestro", Icon: "📚", SeedsRequired: 2100, Description: "Enseñando la Palabra con sabiduría"},
	{Level: 8, Name: "Sabio", Icon: "👴", SeedsRequired: 2800, Description: "Lleno de conocimiento y discernimiento"},
	{Level: 9, Name: "Profeta", Icon: "⚡", SeedsRequired: 3600, Description: "Hablando la verdad de Dios con poder"},
	{Level: 10, Name: "Santo", Icon: "✨", SeedsRequired: 4500, Description: "Resplandeciendo con la gloria de Dios"},
}

// CurrentLevel returns the highest tier whose threshold the seed total
// has reached. Falls back to the first tier.
func CurrentLevel(totalSeeds int) model.Level {
	for i := len(Levels) - 1; i >= 0; i-- {
		if totalSeeds >= Levels[i].SeedsRequired {
			return Levels[i]
		}
	}
	return Levels[0]
}

// NextLevel returns the tier one above the given level number, or nil
// at the maximum tier.
func NextLevel(level int) *model.Level {
	for i := range Levels {
		if Levels[i].Level == level+1 {
			next := Levels[i]
			return &next
		}
	}
	return nil
}

type Progress struct {
	CurrentLevel       model.Level
	NextLevel          *model.Level
	SeedsToNextLevel   int
	ProgressPercentage float64
}

// ProgressToNextLevel reports how far the seed total has advanced
// within the current tier. At the maximum tier progress is 100%.
func ProgressToNextLevel(totalSeeds int) Progress {
	current := CurrentLevel(totalSeeds)
	next := NextLevel(current.Level)

	if next == nil {
		return Progress{
			CurrentLevel:       current,
			NextLevel:          nil,
			SeedsToNextLevel:   0,
			ProgressPercentage: 100,
		}
	}

	earned := float64(totalSeeds - current.SeedsRequired)
	needed := float64(next.SeedsRequired - current.SeedsRequired)
	pct := earned / needed * 100
	if pct > 100 {
		pct = 100
	}

	return Progress{
		CurrentLevel:       current,
		NextLevel:          next,
		SeedsToNextLevel:   next.SeedsRequired - totalSeeds,
		ProgressPercentage: pct,
	}
}
