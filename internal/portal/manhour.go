package portal

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ozo-extended/ozo-agent/internal/domain/attendance"
	"github.com/ozo-extended/ozo-agent/internal/pkg/browser"
)

const (
	// BreakMinutes is deducted from any workday longer than it.
	BreakMinutes = 60

	minutesPerDay  = 24 * 60
	maxLabelLength = 50
)

var workTimeRowID = regexp.MustCompile(`^div_sub_editlist_WORK_TIME_row\d+$`)

// ParseClock converts "H:MM" or "HH:MM" to minutes after midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if n, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil || n != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return h*60 + m, nil
}

// WorkMinutes is the span from in to out. An out earlier than in crosses midnight.
func WorkMinutes(in, out string) (int, error) {
	start, err := ParseClock(in)
	if err != nil {
		return 0, err
	}
	end, err := ParseClock(out)
	if err != nil {
		return 0, err
	}
	diff := end - start
	if diff < 0 {
		diff += minutesPerDay
	}
	return diff, nil
}

// NetWorkMinutes is WorkMinutes less the break, when the span exceeds the break.
func NetWorkMinutes(in, out string) (int, error) {
	raw, err := WorkMinutes(in, out)
	if err != nil {
		return 0, err
	}
	return deductBreak(raw), nil
}

func deductBreak(raw int) int {
	if raw > BreakMinutes {
		return raw - BreakMinutes
	}
	if raw < 0 {
		return 0
	}
	return raw
}

// Allocate splits total evenly over n rows; the first row takes the remainder.
func Allocate(total, n int) []int {
	if n <= 0 {
		return nil
	}
	base, rem := total/n, total%n
	out := make([]int, n)
	for i := range out {
		out[i] = base
	}
	out[0] += rem
	return out
}

// FormatMinutes renders minutes as zero-padded "HH:MM".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// normalizeLabel collapses whitespace and caps the label at 50 characters.
func normalizeLabel(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxLabelLength {
		s = string([]rune(s)[:maxLabelLength]) + "..."
	}
	return s
}

// FillManHours spreads the net work time between in and out over the visible
// work-time rows of today's man-hour sheet and registers it. No rows is not an error.
func (c *Client) FillManHours(ctx context.Context, in, out string) ([]attendance.TaskAllocation, error) {
	if err := c.requireAuthenticated(ctx); err != nil {
		return nil, err
	}
	total, err := NetWorkMinutes(in, out)
	if err != nil {
		return nil, err
	}
	slog.Info("Starting man-hour entry", "clock_in", in, "clock_out", out, "minutes", total)

	if err := c.gotoOther(c.urls.ManHour); err != nil {
		return nil, fmt.Errorf("open man-hour page: %w", err)
	}
	c.settle(browser.LoadStateNetworkIdle, loadTimeout)

	if btn, err := c.page.WaitVisible(selCopyPrevious, copyButtonTimeout); err != nil {
		slog.Info("Copy previous day not available, filling rows as they are", "error", err)
	} else if err := btn.Click(); err != nil {
		slog.Warn("Copy previous day click failed", "error", err)
	} else {
		c.page.Wait(copySettle)
	}

	rows, err := c.workTimeRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		slog.Info("No man-hour rows to fill")
		return []attendance.TaskAllocation{}, nil
	}

	minutes := Allocate(total, len(rows))
	allocations := make([]attendance.TaskAllocation, 0, len(rows))
	for i, row := range rows {
		input, err := row.el.Query("input")
		if err != nil || input == nil {
			slog.Warn("Man-hour row has no input", "row", row.id)
			continue
		}

		value := FormatMinutes(minutes[i])
		if err := c.clearAndFill(input, value); err != nil {
			return allocations, fmt.Errorf("fill %s: %w", row.id, err)
		}
		slog.Debug("Filled man-hour row", "row", row.id, "value", value)

		allocations = append(allocations, attendance.TaskAllocation{
			RowID:   row.id,
			Minutes: minutes[i],
			Label:   c.rowLabel(i, row.el),
		})
	}

	if err := c.page.Click(selRegister); err != nil {
		return allocations, fmt.Errorf("register man-hours: %w", err)
	}
	c.page.Wait(registerSettle)
	c.settle(browser.LoadStateNetworkIdle, registerLoadTimeout)

	slog.Info("Man-hour entry registered", "rows", len(allocations))
	return allocations, nil
}

type workTimeRow struct {
	id string
	el browser.Element
}

func (c *Client) workTimeRows() ([]workTimeRow, error) {
	candidates, err := c.page.QueryAll(selWorkTimeRows)
	if err != nil {
		return nil, fmt.Errorf("query man-hour rows: %w", err)
	}
	rows := make([]workTimeRow, 0, len(candidates))
	for _, el := range candidates {
		id, err := el.Attribute("id")
		if err != nil || !workTimeRowID.MatchString(id) {
			continue
		}
		if visible, err := el.IsVisible(); err != nil || !visible {
			continue
		}
		rows = append(rows, workTimeRow{id: id, el: el})
	}
	return rows, nil
}

func (c *Client) clearAndFill(input browser.Element, value string) error {
	if err := input.Click(); err != nil {
		return err
	}
	if err := c.page.PressKey("Control+A"); err != nil {
		return err
	}
	if err := c.page.PressKey("Backspace"); err != nil {
		return err
	}
	return input.Fill(value)
}

// rowLabel prefers the project name input and falls back to the row text.
func (c *Client) rowLabel(i int, row browser.Element) string {
	var (
		text string
		err  error
	)
	project, qerr := c.page.Query(fmt.Sprintf(selProjectInput, i+1))
	if qerr == nil && project != nil {
		text, err = project.Attribute("value")
	} else {
		text, err = row.RowText()
	}
	if err != nil {
		slog.Warn("Man-hour row label unavailable", "row", i+1, "error", err)
		return ""
	}
	return normalizeLabel(text)
}
