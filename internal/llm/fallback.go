package llm

import "github.com/ppiankov/persona/internal/model"

// fallbackAttributes is the generic persona substituted whenever the
// generator's reply cannot be used. It is the only copy; callers receive clones.
var fallbackAttributes = model.AttributeMap{
	model.AttrAgeRange:   model.Scalar("25-35"),
	model.AttrOccupation: model.Scalar("Professional or Student"),
	model.AttrInterests: model.List(
		"Technology", "Social Media", "Online Communities", "Current Events", "Entertainment",
	),
	model.AttrPersonalityTraits: model.List(
		"Engaged", "Curious", "Social", "Opinionated", "Active",
	),
	model.AttrValues: model.List(
		"Community participation", "Knowledge sharing", "Free expression", "Digital literacy", "Social connection",
	),
	model.AttrGoals: model.List(
		"Stay informed", "Connect with others", "Share knowledge", "Learn new things", "Engage in discussions",
	),
	model.AttrPainPoints: model.List(
		"Information overload", "Online toxicity", "Time management", "Privacy concerns", "Digital fatigue",
	),
	model.AttrCommunicationStyle:   model.Scalar("Casual and conversational with occasional technical language"),
	model.AttrActivityLevel:        model.Scalar("Regular and consistent Reddit user"),
	model.AttrTechnicalProficiency: model.Scalar("Intermediate to advanced"),
}

// FallbackAttributes returns a fresh copy of the fallback persona attributes
func FallbackAttributes() model.AttributeMap {
	return fallbackAttributes.Clone()
}
