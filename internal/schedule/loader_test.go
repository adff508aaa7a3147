package schedule

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "schedule": [
    {"day": "Luni", "time": "08:00-10:00", "subject": "Programare", "location": "C309"},
    {"day": "Marți", "time": "10:00-12:00", "subject": "Matematică"}
  ]
}`

func TestLoadJSON(t *testing.T) {
	entries, err := LoadJSON(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{Day: "Luni", Time: "08:00-10:00", Subject: "Programare", Location: "C309"}, entries[0])
	assert.Equal(t, Entry{Day: "Marți", Time: "10:00-12:00", Subject: "Matematică"}, entries[1])
}

func TestLoadJSONTrimsFields(t *testing.T) {
	entries, err := LoadJSON(strings.NewReader(
		`{"schedule": [{"day": " Luni ", "time": " 08:00-10:00 ", "subject": " Programare ", "location": " C309 "}]}`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Day: "Luni", Time: "08:00-10:00", Subject: "Programare", Location: "C309"}, entries[0])
}

func TestLoadJSONErrors(t *testing.T) {
	_, err := LoadJSON(strings.NewReader(`{"items": []}`))
	assert.Error(t, err, "missing schedule key")

	_, err = LoadJSON(strings.NewReader(`{"schedule": [{"day": "Luni", "subject": "x"}]}`))
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = LoadJSON(strings.NewReader(`{"schedule": [{"day": "Luni", "time": "0800", "subject": "x"}]}`))
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)

	_, err = LoadJSON(strings.NewReader(`{"schedule": [{"day": "Funday", "time": "08:00-10:00", "subject": "x"}]}`))
	assert.ErrorIs(t, err, ErrUnknownWeekday)
}

func TestLoadCSV(t *testing.T) {
	src := "day,time,subject,location\nLuni,08:00-10:00,Programare,C309\nVineri,14:00-16:00,Sport,\n"
	entries, err := LoadCSV(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "C309", entries[0].Location)
	assert.Empty(t, entries[1].Location)
}

func TestLoadCSVWithoutLocationColumn(t *testing.T) {
	src := "day,time,subject\nLuni,08:00-10:00,Programare\n"
	entries, err := LoadCSV(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Location)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("day,subject\nLuni,Programare\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"time"`)
}

func TestRoundTripJSON(t *testing.T) {
	original, err := LoadJSON(strings.NewReader(sampleJSON))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, original))

	reloaded, err := LoadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, original, reloaded)
}

func TestRoundTripCSV(t *testing.T) {
	original, err := LoadJSON(strings.NewReader(sampleJSON))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, original))

	reloaded, err := LoadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, original, reloaded)
}
