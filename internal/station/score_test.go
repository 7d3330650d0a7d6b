package station

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/treinwijzer/treinwijzer/internal/transit"
)

func TestScoreContainmentOutranksHalfCoverage(t *testing.T) {
	// "msterdam cen" is contained in "amsterdam centraal" but only half
	// its tokens match loosely; containment must win.
	q := newQuery("msterdam cen", "", "")
	st := transit.Station{Code: "ASD", NameLong: "Amsterdam Centraal"}

	s, _ := score(q, st)
	assert.Equal(t, 0.75, s)
}

func TestScoreHalfCoverageWithoutContainment(t *testing.T) {
	// Half the tokens match (not the first) and the phrase is not a
	// substring of any name variant; the weaker coverage rung applies.
	q := newQuery("xyzzy zaandam", "", "")
	st := transit.Station{Code: "ZD", NameLong: "Zaandam"}

	s, _ := score(q, st)
	assert.Equal(t, 0.68, s)
}
