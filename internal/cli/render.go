package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/stride/internal/engine"
	"github.com/roach88/stride/internal/model"
)

// renderTable lays rows out in left-aligned columns under a bold header.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style lipgloss.Style) {
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(style.Render(cell))
				break
			}
			b.WriteString(style.Width(widths[i] + 2).Render(cell))
		}
		b.WriteByte('\n')
	}
	writeRow(headers, headerStyle)
	for _, row := range rows {
		writeRow(row, lipgloss.NewStyle())
	}
	return b.String()
}

func formatTime(ns uint64) string {
	if ns == 0 {
		return "-"
	}
	return time.Unix(0, int64(ns)).UTC().Format(time.RFC3339)
}

func formatMinutes(m uint32) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func formatUint[T uint32 | uint64](n T) string {
	return strconv.FormatUint(uint64(n), 10)
}

// doneView reports a mutation.
type doneView struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

func (v doneView) Text() string {
	return fmt.Sprintf("%s %s\n", okStyle.Render(v.Action), v.ID)
}

type taskList []*model.Task

func (v taskList) Text() string {
	rows := make([][]string, len(v))
	for i, t := range v {
		title := t.Title
		if t.ParentID != "" {
			title = dimStyle.Render("↳ ") + title
		}
		rows[i] = []string{
			t.ID,
			title,
			string(t.Priority),
			badge(string(t.State)),
			formatTime(t.Deadline),
			formatUint(t.EstimatedTime) + "m",
			formatUint(t.RewardPoints),
		}
	}
	return renderTable([]string{"ID", "TITLE", "PRIORITY", "STATE", "DEADLINE", "ESTIMATE", "POINTS"}, rows)
}

type rewardList []*model.Reward

func (v rewardList) Text() string {
	rows := make([][]string, len(v))
	for i, r := range v {
		rows[i] = []string{r.ID, r.Title, formatUint(r.Cost), badge(string(r.State))}
	}
	return renderTable([]string{"ID", "TITLE", "COST", "STATE"}, rows)
}

type slotList []*model.TimeSlot

func (v slotList) Text() string {
	rows := make([][]string, len(v))
	for i, s := range v {
		rows[i] = []string{
			s.ID,
			formatMinutes(s.StartMinutes),
			formatMinutes(s.EndMinutes),
			string(s.SlotType),
			s.Recurrence.String(),
		}
	}
	return renderTable([]string{"ID", "START", "END", "TYPE", "REPEATS"}, rows)
}

type habitList []*model.Habit

func (v habitList) Text() string {
	rows := make([][]string, len(v))
	for i, h := range v {
		rows[i] = []string{h.ID, h.TaskID, h.Recurrence.String(), formatUint(h.Streak), formatTime(h.LastCompleted)}
	}
	return renderTable([]string{"ID", "TASK", "REPEATS", "STREAK", "LAST DONE"}, rows)
}

type completionView engine.Completion

func (v completionView) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", okStyle.Render("completed"), v.TaskID, pointsStyle.Render("+"+formatUint(v.Points)))
	for _, id := range v.Subtasks {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("subtask"), id)
	}
	if v.HabitID != "" {
		fmt.Fprintf(&b, "  habit %s streak %d, next due %s\n", v.HabitID, v.Streak, formatTime(v.NextDeadline))
	}
	return b.String()
}

type pointsView struct {
	Owner  string `json:"owner"`
	Points uint32 `json:"points"`
}

func (v pointsView) Text() string {
	return fmt.Sprintf("%s has %s points\n", v.Owner, pointsStyle.Render(formatUint(v.Points)))
}

type redeemView struct {
	ID      string `json:"id"`
	Balance uint32 `json:"balance"`
}

func (v redeemView) Text() string {
	return fmt.Sprintf("%s %s, %s points left\n", okStyle.Render("redeemed"), v.ID, pointsStyle.Render(formatUint(v.Balance)))
}

type streakView struct {
	ID     string `json:"id"`
	Streak uint32 `json:"streak"`
}

func (v streakView) Text() string {
	return fmt.Sprintf("%s streak %d\n", v.ID, v.Streak)
}

type historyView struct {
	ID          string   `json:"id"`
	Completions []uint64 `json:"completions"`
}

func (v historyView) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s completed %d times\n", v.ID, len(v.Completions))
	for _, at := range v.Completions {
		fmt.Fprintf(&b, "  %s\n", formatTime(at))
	}
	return b.String()
}
