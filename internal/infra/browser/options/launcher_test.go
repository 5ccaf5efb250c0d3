package options

import (
	"testing"

	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/stretchr/testify/assert"
)

func TestCreateLauncher(t *testing.T) {
	l := CreateLauncher(
		WithBin("/usr/bin/chromium"),
		WithHeadless(true),
		WithUserAgent("roster-test"),
		WithDisableBlinkFeatures("AutomationControlled"),
		WithDisableGPU(true),
		WithIgnoreCertificateErrors(true),
	)

	assert.Equal(t, "/usr/bin/chromium", l.Get(flags.Bin))
	assert.True(t, l.Has(flags.Headless))
	assert.Equal(t, "roster-test", l.Get("user-agent"))
	assert.Equal(t, "AutomationControlled", l.Get("disable-blink-features"))
	assert.True(t, l.Has("disable-gpu"))
	assert.True(t, l.Has("ignore-certificate-errors"))
	assert.True(t, l.Has("ignore-ssl-errors"))
}

func TestEmptyValuesAreSkipped(t *testing.T) {
	l := CreateLauncher(WithUserAgent(""), WithDisableBlinkFeatures(""), WithSwitch("disable-gpu", false))

	assert.False(t, l.Has("user-agent"))
	assert.False(t, l.Has("disable-blink-features"))
	assert.False(t, l.Has("disable-gpu"))
}
