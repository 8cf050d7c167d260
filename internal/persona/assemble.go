// Package persona composes the final Persona value from parsed attributes
// and their citations.
package persona

import (
	"errors"
	"fmt"

	"github.com/ppiankov/persona/internal/model"
)

// ErrMissingAttribute is returned when a required attribute is absent or has the wrong shape
var ErrMissingAttribute = errors.New("missing required attribute")

// Assemble maps attrs onto a Persona for subject.
// Citation slices are copied; attributes without citations get an empty slice.
func Assemble(subject string, attrs model.AttributeMap, citations map[model.Attribute][]string) (*model.Persona, error) {
	for _, attr := range model.Attributes {
		value, ok := attrs[attr]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingAttribute, attr)
		}
		if value.IsList() != attr.IsList() {
			return nil, fmt.Errorf("%w: %s has the wrong shape", ErrMissingAttribute, attr)
		}
	}

	p := &model.Persona{
		Name:                        subject,
		AgeRange:                    attrs[model.AttrAgeRange].Text(),
		Occupation:                  attrs[model.AttrOccupation].Text(),
		Interests:                   attrs[model.AttrInterests].Items(),
		PersonalityTraits:           attrs[model.AttrPersonalityTraits].Items(),
		Values:                      attrs[model.AttrValues].Items(),
		Goals:                       attrs[model.AttrGoals].Items(),
		PainPoints:                  attrs[model.AttrPainPoints].Items(),
		PreferredCommunicationStyle: attrs[model.AttrCommunicationStyle].Text(),
		ActivityLevel:               attrs[model.AttrActivityLevel].Text(),
		TechnicalProficiency:        attrs[model.AttrTechnicalProficiency].Text(),
		Citations:                   make(map[model.Attribute][]string, len(model.Attributes)),
	}

	for _, attr := range model.Attributes {
		urls := make([]string, len(citations[attr]))
		copy(urls, citations[attr])
		p.Citations[attr] = urls
	}

	return p, nil
}
