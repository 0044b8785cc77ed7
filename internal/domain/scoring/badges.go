package scoring

import (
	"time"

	"github.com/okian/salesdash/internal/domain/model"
)

// Hours at or above this count as full-time.
const fullTimeHours = 35

// Status derives the status badge from the letter and growth.
func Status(letter model.Letter, growth *float64) model.StatusResult {
	switch letter {
	case model.LetterA:
		return model.StatusResult{Status: "Excellent", Icon: "✅", Color: "#27ae60"}
	case model.LetterB:
		if growth != nil && *growth > 0 {
			return model.StatusResult{Status: "Improving", Icon: "📈", Color: "#3498db"}
		}
		return model.StatusResult{Status: "Strong", Icon: "✅", Color: "#3498db"}
	case model.LetterC:
		return model.StatusResult{Status: "Needs Help", Icon: "⚠️", Color: "#f39c12"}
	default:
		return model.StatusResult{Status: "Critical", Icon: "🔴", Color: "#e74c3c"}
	}
}

// TenureMonths counts whole calendar months from hire to now, ignoring the
// day of month. ok is false when hire is nil or after now.
func TenureMonths(hire *time.Time, now time.Time) (months int, ok bool) {
	if hire == nil {
		return 0, false
	}
	months = (now.Year()-hire.Year())*12 + int(now.Month()) - int(hire.Month())
	if months < 0 {
		return 0, false
	}
	return months, true
}

var tiers = []struct {
	below int
	tier  model.ExperienceTier
}{
	{3, model.ExperienceTier{Level: "new-hire", Label: "New Hire", Badge: "🌱"}},
	{12, model.ExperienceTier{Level: "junior", Label: "Junior", Badge: "📚"}},
	{24, model.ExperienceTier{Level: "mid", Label: "Established", Badge: "💼"}},
	{48, model.ExperienceTier{Level: "specialist", Label: "Specialist", Badge: "⭐"}},
	{84, model.ExperienceTier{Level: "senior", Label: "Senior", Badge: "🏆"}},
}

// UnknownExperience is the tier for employees without a usable hire date.
var UnknownExperience = model.ExperienceTier{Level: "unknown", Label: "Unknown", Badge: "?"}

// Experience buckets tenure months.
func Experience(months int, known bool) model.ExperienceTier {
	if !known || months < 0 {
		return UnknownExperience
	}
	for _, t := range tiers {
		if months < t.below {
			return t.tier
		}
	}
	return model.ExperienceTier{Level: "expert", Label: "Expert", Badge: "👑"}
}

// Employment classifies weekly hours; missing hours count as full-time.
func Employment(weeklyHours *float64) model.EmploymentType {
	if weeklyHours == nil || *weeklyHours >= fullTimeHours {
		return model.EmploymentType{Type: model.EmploymentFull, Label: "Full-time", Badge: "🟢", Color: "#27ae60"}
	}
	return model.EmploymentType{Type: model.EmploymentPart, Label: "Part-time", Badge: "🔵", Color: "#3498db"}
}
