package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"phonebox/internal/device"
	"phonebox/internal/logger"
	"phonebox/internal/models"

	"github.com/mattn/go-runewidth"
)

// Display texts, sized for a 16-column row.
const (
	textEntryPrompt   = "Minutes then #"
	textNoInput       = "No input, retry"
	textInvalidInput  = "Invalid, retry"
	textPauseHint     = "# to pause"
	textMenuVital     = "A: Vital notif."
	textMenuGiveUp    = "B: Give up"
	textPaused        = "Paused"
	textResumePrompt  = "# to resume"
	textUnlocked      = "Unlocked!"
	textDoorOpened    = "Door opened!"
	textSessionFailed = "Session failed"
	textRestartHint   = "* new session"
)

// FormatClock renders seconds as MM:SS. Minutes grow past two digits when needed.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// pauseSummary renders the per-reason tallies on one line.
func pauseSummary(counts map[models.PauseReason]int) string {
	return fmt.Sprintf("Vital:%d GiveUp:%d", counts[models.PauseVitalNotification], counts[models.PauseGiveUp])
}

// screen writes whole-screen messages to the display, fitted to its grid.
type screen struct {
	display device.Display
	log     *logger.Logger
}

func (s *screen) size() (int, int) { return s.display.Size() }

// show clears the display and writes each message wrapped to the grid width.
// Lines past the last row are dropped.
func (s *screen) show(messages ...string) {
	rows, cols := s.size()
	if err := s.display.Clear(); err != nil {
		s.warn("display_clear_failed", err)
	}
	row := 0
	for _, m := range messages {
		for _, line := range wrap(m, cols) {
			if row >= rows {
				return
			}
			s.line(row, line)
			row++
		}
	}
}

// line overwrites a full row, padding so shorter text erases what was there.
func (s *screen) line(row int, text string) {
	rows, cols := s.size()
	if row >= rows {
		row = rows - 1
	}
	text = runewidth.FillRight(runewidth.Truncate(text, cols, ""), cols)
	if err := s.display.Write(row, 0, text); err != nil {
		s.warn("display_write_failed", err, "row", row)
	}
}

// lastRow is where live values (clock, typed digits) go.
func (s *screen) lastRow() int {
	rows, _ := s.size()
	if rows < 2 {
		return 0
	}
	return 1
}

func (s *screen) warn(msg string, err error, kv ...interface{}) {
	if s.log == nil {
		return
	}
	s.log.Warnw(msg, append([]interface{}{"err", err}, kv...)...)
}

// wrap splits text into lines no wider than width, breaking on spaces and
// hard-splitting words that do not fit.
func wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var (
		lines []string
		cur   string
	)
	for _, w := range words {
		for runewidth.StringWidth(w) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			head := runewidth.Truncate(w, width, "")
			if head == "" {
				_, size := utf8.DecodeRuneInString(w)
				head = w[:size]
			}
			lines = append(lines, head)
			w = w[len(head):]
		}
		switch {
		case cur == "":
			cur = w
		case runewidth.StringWidth(cur)+1+runewidth.StringWidth(w) <= width:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// tail keeps the right-most part of s that fits in width.
func tail(s string, width int) string {
	for runewidth.StringWidth(s) > width {
		_, size := utf8.DecodeRuneInString(s)
		s = s[size:]
	}
	return s
}
