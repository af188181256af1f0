package model

// ScoreCategory — категория пригодности вакансии по unified score.
type ScoreCategory string

const (
	// CategorySuitable — score >= 0.35
	CategorySuitable ScoreCategory = "suitable"
	// CategoryNeedsReview — 0.25 <= score < 0.35
	CategoryNeedsReview ScoreCategory = "needs_review"
	// CategoryUnsuitable — score < 0.25
	CategoryUnsuitable ScoreCategory = "unsuitable"
)

// Границы классификации.
const (
	suitableThreshold   = 0.35
	unsuitableThreshold = 0.25
)

// ClassifyScore относит score к одной из трёх категорий.
// Функция тотальна: NaN попадает в CategoryNeedsReview.
func ClassifyScore(score float64) ScoreCategory {
	switch {
	case score >= suitableThreshold:
		return CategorySuitable
	case score < unsuitableThreshold:
		return CategoryUnsuitable
	default:
		return CategoryNeedsReview
	}
}
