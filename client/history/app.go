package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/types"
)

type App struct {
	screen        tcell.Screen
	records       []types.SentimentRecord
	selectedIdx   int
	expandedItems map[int]bool
	currentPage   int
	itemsPerPage  int
	statusMessage string
	load          func() ([]types.SentimentRecord, error)
}

func newApp(screen tcell.Screen, load func() ([]types.SentimentRecord, error)) *App {
	return &App{
		screen:        screen,
		expandedItems: make(map[int]bool),
		itemsPerPage:  15,
		load:          load,
	}
}

// loadRecords shows the most recent day first.
func (a *App) loadRecords() error {
	records, err := a.load()
	if err != nil {
		return err
	}
	reversed := make([]types.SentimentRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		reversed = append(reversed, records[i])
	}
	a.records = reversed
	a.currentPage = 0
	a.selectedIdx = 0
	a.expandedItems = make(map[int]bool)
	a.statusMessage = summarize(a.records)
	return nil
}

// summarize counts labels, e.g. "Bullish 3 | Bearish 1 | Mixed 0 | Undetermined 0".
func summarize(records []types.SentimentRecord) string {
	counts := map[types.Label]int{}
	for _, r := range records {
		counts[r.Label]++
	}
	var parts []string
	for _, l := range []types.Label{types.Bullish, types.Bearish, types.Mixed, types.Undetermined} {
		parts = append(parts, fmt.Sprintf("%s %d", l, counts[l]))
	}
	return strings.Join(parts, " | ")
}

func labelStyle(base tcell.Style, label types.Label) tcell.Style {
	switch label {
	case types.Bullish:
		return base.Foreground(tcell.ColorGreen)
	case types.Bearish:
		return base.Foreground(tcell.ColorRed)
	case types.Mixed:
		return base.Foreground(tcell.ColorYellow)
	default:
		return base.Foreground(tcell.Color248)
	}
}

func (a *App) numPages() int {
	return int(math.Ceil(float64(len(a.records)) / float64(a.itemsPerPage)))
}

func (a *App) draw() {
	a.screen.Clear()
	width, height := a.screen.Size()
	style := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorWhite)
	selectedStyle := tcell.StyleDefault.Background(tcell.Color24).Foreground(tcell.ColorWhite)
	detailStyle := style.Foreground(tcell.Color248)

	startIdx := a.currentPage * a.itemsPerPage
	endIdx := min(startIdx+a.itemsPerPage, len(a.records))

	lineIdx := 0
	for idx := startIdx; idx < endIdx; idx++ {
		record := a.records[idx]
		itemHeight := 1
		if a.expandedItems[idx] && record.RawModelResponse != "" {
			if width > 2 {
				itemHeight += (len(record.RawModelResponse)+width-3)/(width-2) + 2
			} else {
				itemHeight += len(strings.Fields(record.RawModelResponse)) + 2
			}
		}
		if lineIdx+itemHeight >= height-1 {
			break
		}

		currentStyle := labelStyle(style, record.Label)
		if idx == a.selectedIdx {
			currentStyle = selectedStyle
		}
		line := fmt.Sprintf("%s  %-12s  %s  [%s %s]", record.DateKey, record.Label, record.PublishDateRaw, record.ModelProvider, record.ModelVersion)
		lineIdx = drawText(a.screen, 0, lineIdx, width, currentStyle, line)

		if a.expandedItems[idx] {
			lineIdx++
			lineIdx = drawText(a.screen, 2, lineIdx, width-2, detailStyle, "hash "+record.ContentHash)
			if record.RawModelResponse != "" {
				lineIdx++
				lineIdx = drawText(a.screen, 2, lineIdx, width-2, detailStyle, record.RawModelResponse)
			}
		}
		lineIdx++
	}

	helpText := fmt.Sprintf("^/v: Navigate (%d/%d) | <>: Change Page (%d/%d) | Enter: Expand/Collapse | R: Reload | Q: Quit",
		a.selectedIdx+1, len(a.records), a.currentPage+1, max(a.numPages(), 1))
	if height > 1 {
		drawText(a.screen, 0, height-2, width, style, helpText)
		drawText(a.screen, 0, height-1, width, style, a.statusMessage)
	}
	a.screen.Show()
}

// handleKey applies one key press and reports whether the app should quit.
func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		if a.selectedIdx > 0 {
			a.selectedIdx--
			a.currentPage = a.selectedIdx / a.itemsPerPage
		}
	case tcell.KeyDown:
		if a.selectedIdx < len(a.records)-1 {
			a.selectedIdx++
			a.currentPage = a.selectedIdx / a.itemsPerPage
		}
	case tcell.KeyRight:
		if (a.currentPage+1)*a.itemsPerPage < len(a.records) {
			a.currentPage++
			a.selectedIdx = a.currentPage * a.itemsPerPage
		}
	case tcell.KeyLeft:
		if a.currentPage > 0 {
			a.currentPage--
			a.selectedIdx = a.currentPage * a.itemsPerPage
		}
	case tcell.KeyEnter:
		if len(a.records) > 0 {
			a.expandedItems[a.selectedIdx] = !a.expandedItems[a.selectedIdx]
		}
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		case 'r', 'R':
			if err := a.loadRecords(); err != nil {
				a.statusMessage = fmt.Sprintf("reload failed: %v", err)
			}
		}
	}
	return false
}

func (a *App) run() error {
	if err := a.loadRecords(); err != nil {
		return err
	}
	for {
		a.draw()
		switch ev := a.screen.PollEvent().(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			if a.handleKey(ev) {
				return nil
			}
		case nil:
			return nil
		}
	}
}

func drawText(screen tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return y
	}

	currentLine := words[0]
	currentY := y

	for _, word := range words[1:] {
		if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			drawLine(screen, x, currentY, style, currentLine)
			currentY++
			currentLine = word
		}
	}
	drawLine(screen, x, currentY, style, currentLine)

	return currentY
}

func drawLine(screen tcell.Screen, x, y int, style tcell.Style, line string) {
	i := 0
	for _, r := range line {
		screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}
