package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestNumber(t *testing.T) {
	p := message.NewPrinter(language.English)
	assert.Equal(t, "1,234.50", number(p, 1234.5))
	assert.Equal(t, "NaN", number(p, math.NaN()))
	assert.Equal(t, "Infinity", number(p, math.Inf(1)))
	assert.Equal(t, "-Infinity", number(p, math.Inf(-1)))
}
