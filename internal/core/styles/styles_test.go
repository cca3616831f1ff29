package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()

	assert.Contains(t, names, DefaultTheme)
	assert.IsIncreasing(t, names)
}

func TestUseTheme(t *testing.T) {
	t.Cleanup(func() { UseTheme(DefaultTheme) })

	require.True(t, UseTheme("gruvbox"))
	assert.Equal(t, themes["gruvbox"].Primary, ColorPrimary)

	require.False(t, UseTheme("nope"))
	assert.Equal(t, themes[DefaultTheme].Primary, ColorPrimary)
}

func TestColorForString_Deterministic(t *testing.T) {
	assert.Equal(t, ColorForString("Hiring"), ColorForString("Hiring"))
}

func TestUrgencyColor(t *testing.T) {
	assert.Equal(t, ColorSuccess, UrgencyColor(-5))
	assert.Equal(t, ColorWarning, UrgencyColor(50))
	assert.Equal(t, ColorError, UrgencyColor(140))

	mid := UrgencyColor(75)
	assert.NotEqual(t, ColorWarning, mid)
	assert.NotEqual(t, ColorError, mid)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, string(mid))
}

func TestHexPtr(t *testing.T) {
	require.NotNil(t, hexPtr("#7E9CD8"))
	assert.Equal(t, "#7e9cd8", *hexPtr("#7E9CD8"))
	assert.Nil(t, hexPtr(""))
	assert.Nil(t, hexPtr("212"))
}

func TestGlamourStyle_UsesPalette(t *testing.T) {
	cfg := GlamourStyle()

	require.NotNil(t, cfg.H2.Color)
	assert.Equal(t, string(ColorPrimary), *cfg.H2.Color)
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("The deck is **due Thursday**.", 40)
	require.NoError(t, err)
	assert.Contains(t, out, "due Thursday")
}
