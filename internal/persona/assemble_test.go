package persona

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/persona/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullAttrs() model.AttributeMap {
	return model.AttributeMap{
		model.AttrAgeRange:             model.Scalar("26-35"),
		model.AttrOccupation:           model.Scalar("Software Developer"),
		model.AttrInterests:            model.List("Gaming", "Cooking"),
		model.AttrPersonalityTraits:    model.List("Curious"),
		model.AttrValues:               model.List("Honesty"),
		model.AttrGoals:                model.List("Ship a game"),
		model.AttrPainPoints:           model.List("Meetings"),
		model.AttrCommunicationStyle:   model.Scalar("Casual"),
		model.AttrActivityLevel:        model.Scalar("Active"),
		model.AttrTechnicalProficiency: model.Scalar("Advanced"),
	}
}

func TestAssemble_MapsFields(t *testing.T) {
	citations := map[model.Attribute][]string{
		model.AttrOccupation: {"https://www.reddit.com/a"},
		model.AttrInterests:  {"https://www.reddit.com/b"},
	}

	got, err := Assemble("spez", fullAttrs(), citations)
	require.NoError(t, err)

	want := &model.Persona{
		Name:                        "spez",
		AgeRange:                    "26-35",
		Occupation:                  "Software Developer",
		Interests:                   []string{"Gaming", "Cooking"},
		PersonalityTraits:           []string{"Curious"},
		Values:                      []string{"Honesty"},
		Goals:                       []string{"Ship a game"},
		PainPoints:                  []string{"Meetings"},
		PreferredCommunicationStyle: "Casual",
		ActivityLevel:               "Active",
		TechnicalProficiency:        "Advanced",
		Citations: map[model.Attribute][]string{
			model.AttrAgeRange:             {},
			model.AttrOccupation:           {"https://www.reddit.com/a"},
			model.AttrInterests:            {"https://www.reddit.com/b"},
			model.AttrPersonalityTraits:    {},
			model.AttrValues:               {},
			model.AttrGoals:                {},
			model.AttrPainPoints:           {},
			model.AttrCommunicationStyle:   {},
			model.AttrActivityLevel:        {},
			model.AttrTechnicalProficiency: {},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assemble mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, got.CitationCount())
}

func TestAssemble_MissingAttribute(t *testing.T) {
	attrs := fullAttrs()
	delete(attrs, model.AttrValues)

	_, err := Assemble("spez", attrs, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAttribute))
	assert.Contains(t, err.Error(), "values")
}

func TestAssemble_WrongShape(t *testing.T) {
	attrs := fullAttrs()
	attrs[model.AttrOccupation] = model.List("Developer")

	_, err := Assemble("spez", attrs, nil)

	assert.ErrorIs(t, err, ErrMissingAttribute)
}

func TestAssemble_DoesNotAliasInputs(t *testing.T) {
	citations := map[model.Attribute][]string{
		model.AttrOccupation: {"u1"},
	}
	attrs := fullAttrs()

	got, err := Assemble("spez", attrs, citations)
	require.NoError(t, err)

	citations[model.AttrOccupation][0] = "changed"
	got.Interests[0] = "mutated"

	assert.Equal(t, []string{"u1"}, got.Citations[model.AttrOccupation])
	assert.Equal(t, []string{"Gaming", "Cooking"}, attrs[model.AttrInterests].Items())
}

func TestAssemble_IgnoresUnknownCitationKeys(t *testing.T) {
	citations := map[model.Attribute][]string{
		"favourite_colour": {"u1"},
	}

	got, err := Assemble("spez", fullAttrs(), citations)
	require.NoError(t, err)

	assert.NotContains(t, got.Citations, model.Attribute("favourite_colour"))
	assert.Equal(t, 0, got.CitationCount())
}
