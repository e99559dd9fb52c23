package borg

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/MrSnakeDoc/borg-exporter/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestamp_FixedZone(t *testing.T) {
	utcPlus2 := time.FixedZone("UTC+2", 2*60*60)

	got, err := NormalizeTimestamp("2023-05-01T10:15:30.123456", utcPlus2)
	require.NoError(t, err)
	assert.Equal(t, int64(1682928930), got)

	got, err = NormalizeTimestamp("2023-05-01T10:15:30.123456", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(1682936130), got)
}

func TestNormalizeTimestamp_FractionIgnored(t *testing.T) {
	for _, s := range []string{
		"2023-05-01T10:15:30.1",
		"2023-05-01T10:15:30.123456",
		"2023-05-01T10:15:30.123456789123",
		"2023-05-01T10:15:30.",
		"2023-05-01T10:15:30.garbage",
	} {
		got, err := NormalizeTimestamp(s, time.UTC)
		require.NoError(t, err, s)
		assert.Equal(t, int64(1682936130), got, s)
	}
}

func TestNormalizeTimestamp_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no dot", input: "2023-05-01T10:15:30"},
		{name: "empty", input: ""},
		{name: "space separator", input: "2023-05-01 10:15:30.123"},
		{name: "date only", input: "2023-05-01.123"},
		{name: "out of range month", input: "2023-13-01T10:15:30.123"},
		{name: "zone suffix before dot", input: "2023-05-01T10:15:30Z.123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeTimestamp(tt.input, time.UTC)
			require.Error(t, err)
			assert.True(t, errs.Has(err, errs.Timestamp), "want TIMESTAMP, got %v", err)
		})
	}
}

func TestNormalizeTimestamp_DaylightSaving(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Clocks jump from 02:00 to 03:00 on 2023-03-26.
	_, err = NormalizeTimestamp("2023-03-26T02:30:00.000001", berlin)
	require.Error(t, err)
	assert.True(t, errs.Has(err, errs.Timestamp))
	assert.Contains(t, err.Error(), "does not exist")

	// Clocks fall back from 03:00 to 02:00 on 2023-10-29.
	_, err = NormalizeTimestamp("2023-10-29T02:30:00.000001", berlin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")

	// Either side of the gap is fine.
	got, err := NormalizeTimestamp("2023-03-26T01:30:00.5", berlin)
	require.NoError(t, err)
	assert.Equal(t, int64(1679790600), got)

	got, err = NormalizeTimestamp("2023-03-26T03:30:00.5", berlin)
	require.NoError(t, err)
	assert.Equal(t, int64(1679790600+3600), got)
}

func TestNormalizeTimestamp_NilLocationUsesLocal(t *testing.T) {
	want, err := NormalizeTimestamp("2023-05-01T10:15:30.0", time.Local)
	require.NoError(t, err)

	got, err := NormalizeTimestamp("2023-05-01T10:15:30.0", nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
