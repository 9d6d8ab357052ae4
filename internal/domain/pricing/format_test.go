package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/price-catalog/internal/domain/pricing"
)

func TestFormatRub(t *testing.T) {
	assert.Equal(t, "999", pricing.FormatRub(999))
	assert.Equal(t, "0", pricing.FormatRub(0))

	s := pricing.FormatRub(1234567)
	assert.Contains(t, s, "234")
	assert.Contains(t, s, "567")
	assert.NotEqual(t, "1234567", s, "debe llevar separador de miles")
}

func TestFormatLineTotal(t *testing.T) {
	s := pricing.FormatLineTotal(1920, 5)
	assert.Contains(t, s, "9")
	assert.Contains(t, s, "600")
	assert.Equal(t, "0", pricing.FormatLineTotal(1920, 0))
}
