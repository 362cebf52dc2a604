// Package render produces downloadable minutes documents.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/studentcouncil/portal/internal/domain"
)

// MinutesRenderer writes a plain-text minutes document. It implements
// service.DocumentRenderer.
type MinutesRenderer struct{}

func NewMinutesRenderer() *MinutesRenderer {
	return &MinutesRenderer{}
}

func (r *MinutesRenderer) Render(m *domain.Meeting, attendees []domain.User) ([]byte, string, error) {
	names := make(map[uuid.UUID]string, len(attendees))
	for _, u := range attendees {
		names[u.ID] = u.DisplayName
	}

	var b bytes.Buffer

	fmt.Fprintf(&b, "STUDENT COUNCIL — MEETING MINUTES\n")
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 50))
	fmt.Fprintf(&b, "Meeting:   %s\n", m.MeetingID)
	fmt.Fprintf(&b, "Title:     %s\n", m.Title)
	fmt.Fprintf(&b, "Date:      %s  %s-%s\n", m.Date, m.StartTime, m.EndTime)
	fmt.Fprintf(&b, "Venue:     %s\n", m.Venue)
	if m.Objective != "" {
		fmt.Fprintf(&b, "Objective: %s\n", m.Objective)
	}
	b.WriteString("\n")

	if len(m.Attendees) > 0 {
		b.WriteString("ATTENDANCE\n")
		for _, a := range m.Attendees {
			name := names[a.UserID]
			if name == "" {
				name = a.UserID.String()
			}
			line := fmt.Sprintf("  - %s: %s", name, a.Status)
			if a.Time != "" && a.Status != domain.AttendanceAbsent {
				line += fmt.Sprintf(" (%s)", a.Time)
			}
			if a.Notes != "" {
				line += " — " + a.Notes
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(m.Agenda) > 0 {
		b.WriteString("AGENDA\n")
		for i, item := range m.Agenda {
			fmt.Fprintf(&b, "  %d. %s (%d min)\n", i+1, item.Title, item.Duration)
			if item.Description != "" {
				fmt.Fprintf(&b, "     %s\n", item.Description)
			}
		}
		b.WriteString("\n")
	}

	if m.Minutes != nil {
		b.WriteString("SUMMARY\n")
		fmt.Fprintf(&b, "  %s\n\n", m.Minutes.Summary)

		if len(m.Minutes.Decisions) > 0 {
			b.WriteString("DECISIONS\n")
			for _, d := range m.Minutes.Decisions {
				fmt.Fprintf(&b, "  - %s\n", d)
			}
			b.WriteString("\n")
		}

		if len(m.Minutes.ActionItems) > 0 {
			b.WriteString("ACTION ITEMS\n")
			for _, item := range m.Minutes.ActionItems {
				assignee := names[item.Assignee]
				if assignee == "" {
					assignee = item.Assignee.String()
				}
				line := fmt.Sprintf("  [%s] %s — %s", item.Status, item.Task, assignee)
				if item.Deadline != nil {
					line += fmt.Sprintf(" (due %s)", item.Deadline.Format("2006-01-02"))
				}
				b.WriteString(line + "\n")
			}
			b.WriteString("\n")
		}

		if m.Minutes.NextMeeting != "" {
			fmt.Fprintf(&b, "NEXT MEETING\n  %s\n", m.Minutes.NextMeeting)
		}
	}

	return b.Bytes(), "text/plain; charset=utf-8", nil
}
