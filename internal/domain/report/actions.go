package report

import "github.com/okian/salesdash/internal/domain/model"

// ActionPlan is the manager guidance shown on the detail view.
type ActionPlan struct {
	Icon        string   `json:"icon"`
	Background  string   `json:"background"`
	BorderColor string   `json:"borderColor"`
	Items       []string `json:"items"`
}

// Actions returns the action items for the employee's grade. Unrated
// employees get an empty plan.
func Actions(e model.EnrichedEmployee) ActionPlan {
	if e.Rating == nil {
		return ActionPlan{Icon: "🎯", Background: "#f0f8ff", BorderColor: "#3498db", Items: []string{}}
	}
	switch e.Rating.Letter {
	case model.LetterA:
		return ActionPlan{Icon: "✅", Background: "#d5f4e6", BorderColor: "#27ae60", Items: []string{
			"Eligible for performance bonus",
			"Consider for team lead or mentor role",
			"Strong candidate for advanced training",
			"Use as best practice example for team",
		}}
	case model.LetterB:
		plan := ActionPlan{Icon: "💡", Background: "#d6eaf8", BorderColor: "#3498db"}
		if e.Growth != nil && *e.Growth > 0 {
			plan.Items = []string{
				"Showing improvement - encourage progress",
				"Consider for advanced training opportunities",
				"Monitor continued growth trend",
			}
		} else {
			plan.Items = []string{
				"Solid performer - maintain current standards",
				"Opportunity for skill development",
				"Set goals for advancement to A rating",
			}
		}
		return plan
	case model.LetterC:
		return ActionPlan{Icon: "⚠️", Background: "#fef5e7", BorderColor: "#f39c12", Items: []string{
			"Schedule 1-on-1 performance review",
			"Identify specific areas for improvement",
			"Consider additional training or mentoring",
			"Set clear, achievable performance goals",
		}}
	default:
		return ActionPlan{Icon: "🔴", Background: "#fadbd8", BorderColor: "#e74c3c", Items: []string{
			"URGENT: Immediate intervention required",
			"Schedule formal performance review",
			"Develop detailed improvement plan",
			"Consider reassignment or additional support",
			"Document performance issues",
		}}
	}
}
