package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/types"
)

func sampleRecords(n int) []types.SentimentRecord {
	out := make([]types.SentimentRecord, 0, n)
	labels := []types.Label{types.Bullish, types.Bearish, types.Mixed}
	for i := 0; i < n; i++ {
		out = append(out, types.SentimentRecord{
			DateKey:          "2025-01-" + string(rune('0'+i/10)) + string(rune('0'+i%10)),
			Label:            labels[i%len(labels)],
			ModelProvider:    "openai",
			ModelVersion:     "gpt-4",
			RawModelResponse: "Bullish. Rates cooled.",
		})
	}
	return out
}

func simScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	require.NoError(t, s.Init())
	s.SetSize(80, 24)
	t.Cleanup(s.Fini)
	return s
}

func row(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) > 0 {
			b.WriteRune(c.Runes[0])
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func TestLoadRecordsNewestFirst(t *testing.T) {
	recs := sampleRecords(3)
	app := newApp(simScreen(t), func() ([]types.SentimentRecord, error) { return recs, nil })
	require.NoError(t, app.loadRecords())

	assert.Equal(t, "2025-01-02", app.records[0].DateKey)
	assert.Equal(t, "2025-01-00", app.records[2].DateKey)
	assert.Equal(t, "Bullish 1 | Bearish 1 | Mixed 1 | Undetermined 0", app.statusMessage)
}

func TestLoadRecordsError(t *testing.T) {
	app := newApp(simScreen(t), func() ([]types.SentimentRecord, error) { return nil, errors.New("boom") })
	assert.Error(t, app.loadRecords())
}

func TestPagingKeys(t *testing.T) {
	recs := sampleRecords(20)
	app := newApp(simScreen(t), func() ([]types.SentimentRecord, error) { return recs, nil })
	require.NoError(t, app.loadRecords())

	app.handleKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	assert.Equal(t, 1, app.currentPage)
	assert.Equal(t, 15, app.selectedIdx)

	// Last page already reached.
	app.handleKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	assert.Equal(t, 1, app.currentPage)

	app.handleKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	assert.Equal(t, 0, app.currentPage)
	assert.Equal(t, 14, app.selectedIdx)

	app.handleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	assert.True(t, app.expandedItems[14])

	assert.True(t, app.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
}

func TestDrawShowsRecordLine(t *testing.T) {
	s := simScreen(t)
	recs := sampleRecords(1)
	app := newApp(s, func() ([]types.SentimentRecord, error) { return recs, nil })
	require.NoError(t, app.loadRecords())

	app.handleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	app.draw()

	assert.True(t, strings.HasPrefix(row(s, 0), "2025-01-00 Bullish"))
	assert.Contains(t, row(s, 0), "[openai gpt-4]")
	assert.Equal(t, "hash", row(s, 1)[2:6])
	assert.Equal(t, "  Bullish. Rates cooled.", row(s, 2))
}

func TestDrawTextWraps(t *testing.T) {
	s := simScreen(t)
	last := drawText(s, 0, 0, 10, tcell.StyleDefault, "alpha beta gamma")
	s.Show()

	assert.Equal(t, 1, last)
	assert.Equal(t, "alpha beta", row(s, 0))
	assert.Equal(t, "gamma", row(s, 1))
}

func TestDrawNarrowTerminal(t *testing.T) {
	s := simScreen(t)
	recs := sampleRecords(2)
	app := newApp(s, func() ([]types.SentimentRecord, error) { return recs, nil })
	require.NoError(t, app.loadRecords())
	app.handleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	for _, w := range []int{2, 1} {
		s.SetSize(w, 24)
		assert.NotPanics(t, app.draw, "width %d", w)
	}
}
