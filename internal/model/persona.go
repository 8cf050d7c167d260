package model

// Persona is the final behavioral summary for one subject.
// Citations map each attribute name to permalinks supporting it.
type Persona struct {
	Name                        string                 `json:"name" yaml:"name"`
	AgeRange                    string                 `json:"age_range" yaml:"age_range"`
	Occupation                  string                 `json:"occupation" yaml:"occupation"`
	Interests                   []string               `json:"interests" yaml:"interests"`
	PersonalityTraits           []string               `json:"personality_traits" yaml:"personality_traits"`
	Values                      []string               `json:"values" yaml:"values"`
	Goals                       []string               `json:"goals" yaml:"goals"`
	PainPoints                  []string               `json:"pain_points" yaml:"pain_points"`
	PreferredCommunicationStyle string                 `json:"preferred_communication_style" yaml:"preferred_communication_style"`
	ActivityLevel               string                 `json:"activity_level" yaml:"activity_level"`
	TechnicalProficiency        string                 `json:"technical_proficiency" yaml:"technical_proficiency"`
	Citations                   map[Attribute][]string `json:"citations" yaml:"citations"`
}

// CitationCount returns the total number of citations across all attributes
func (p *Persona) CitationCount() int {
	n := 0
	for _, urls := range p.Citations {
		n += len(urls)
	}
	return n
}
