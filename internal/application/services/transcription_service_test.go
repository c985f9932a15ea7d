package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitleTakesFirstWords(t *testing.T) {
	title := deriveTitle("today I reviewed the krebs cycle and glycolysis in detail")
	assert.Equal(t, "today I reviewed the krebs cycle and glycolysis", title)
}

func TestDeriveTitleKeepsMultiByteRunesIntact(t *testing.T) {
	title := deriveTitle(strings.Repeat("é", 80))

	assert.True(t, utf8.ValidString(title))
	assert.Equal(t, 60, utf8.RuneCountInString(title))
}
