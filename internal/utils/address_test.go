package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mintgate/event-platform/internal/utils"
)

func TestNormalizeAddress(t *testing.T) {
	valid := "0x" + strings.Repeat("Ab", 20)

	addr, ok := utils.NormalizeAddress(valid)
	assert.True(t, ok)
	assert.Equal(t, strings.ToLower(valid), addr)

	// Surrounding whitespace is tolerated, the 0X prefix too.
	addr, ok = utils.NormalizeAddress("  0X" + strings.Repeat("ab", 20) + " ")
	assert.True(t, ok)
	assert.Equal(t, "0x"+strings.Repeat("ab", 20), addr)

	invalid := []string{
		"",
		"0x",
		"0x123",                             // too short
		"0x" + strings.Repeat("ab", 21),     // too long
		strings.Repeat("ab", 21),            // missing prefix
		"0x" + strings.Repeat("zz", 20),     // non-hex digits
		"1x" + strings.Repeat("ab", 20),     // wrong prefix
		"0x " + strings.Repeat("ab", 20)[1:], // inner whitespace
	}
	for _, in := range invalid {
		_, ok := utils.NormalizeAddress(in)
		assert.False(t, ok, "expected %q to be rejected", in)
	}
}

func TestIsHexAddress(t *testing.T) {
	assert.True(t, utils.IsHexAddress("0x"+strings.Repeat("0f", 20)))
	assert.False(t, utils.IsHexAddress("not an address"))
}
