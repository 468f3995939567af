package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
	assert.Equal(t, "1.5 MiB", FormatBytes(1_572_864))
	assert.Equal(t, "15.0 GiB", FormatBytes(16_106_127_360))
}

func TestFormatBitrate(t *testing.T) {
	assert.Equal(t, "900 b/s", FormatBitrate(900))
	assert.Equal(t, "820 kb/s", FormatBitrate(820_000))
	assert.Equal(t, "16.4 Mb/s", FormatBitrate(16_359_697))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", FormatDuration(45))
	assert.Equal(t, "5m 09s", FormatDuration(309))
	assert.Equal(t, "2h 00m 00s", FormatDuration(7200))
	assert.Equal(t, "1h 30m 01s", FormatDuration(5401))
}
