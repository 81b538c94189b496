// internal/app/chat/render.go
package chat

import (
	"time"

	"github.com/dalemusser/devhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/devhub/internal/domain/models"
)

const dayKeyLayout = "2006-01-02"

// DayGroup is the messages of one calendar day, in input order.
type DayGroup struct {
	Day      string // YYYY-MM-DD in the viewer's location
	Messages []models.Message
}

// GroupByDay buckets messages by the calendar day of their timestamp in
// loc. Messages without a timestamp have not round-tripped through the
// store and are left out. Days appear in order of first occurrence, so an
// ordered input yields ordered groups.
func GroupByDay(msgs []models.Message, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.UTC
	}
	var out []DayGroup
	idx := map[string]int{}
	for _, m := range msgs {
		if m.Timestamp == nil {
			continue
		}
		key := m.Timestamp.In(loc).Format(dayKeyLayout)
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, DayGroup{Day: key})
		}
		out[i].Messages = append(out[i].Messages, m)
	}
	return out
}

// MessageView is one message as a client should draw it.
type MessageView struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	UserPhoto  string    `json:"user_photo,omitempty"`
	Text       string    `json:"text"`
	HTML       string    `json:"html"` // Text escaped for insertion into a page, URLs linked
	Timestamp  time.Time `json:"timestamp"`
	IsOwn      bool      `json:"is_own"`
	ShowHeader bool      `json:"show_header"`
	HeaderName string    `json:"header_name,omitempty"`
	TimeLabel  string    `json:"time_label"`
}

// DayView is one day section of the rendered channel.
type DayView struct {
	Day      string        `json:"day"`
	Label    string        `json:"label"`
	Messages []MessageView `json:"messages"`
}

// Render applies the display rules to grouped messages. Within a day the
// sender header is shown only on the first message of a run from the same
// sender; the viewer's own header reads "You".
func Render(groups []DayGroup, viewerID string, now time.Time, loc *time.Location) []DayView {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]DayView, 0, len(groups))
	for _, g := range groups {
		dv := DayView{Day: g.Day, Label: g.Day, Messages: make([]MessageView, 0, len(g.Messages))}
		if d, err := time.ParseInLocation(dayKeyLayout, g.Day, loc); err == nil {
			dv.Label = d.Format("Monday, January 2, 2006")
		}

		prevSender := ""
		for _, m := range g.Messages {
			if m.Timestamp == nil {
				continue
			}
			ts := m.Timestamp.In(loc)
			mv := MessageView{
				ID:         m.ID.Hex(),
				UserID:     m.UserID,
				UserName:   m.UserName,
				UserPhoto:  m.UserPhoto,
				Text:       m.Text,
				HTML:       htmlsanitize.TextHTML(m.Text),
				Timestamp:  ts,
				IsOwn:      m.UserID == viewerID,
				ShowHeader: len(dv.Messages) == 0 || m.UserID != prevSender,
				TimeLabel:  TimeLabel(ts, now),
			}
			if mv.ShowHeader {
				mv.HeaderName = m.UserName
				if mv.IsOwn {
					mv.HeaderName = "You"
				}
			}
			prevSender = m.UserID
			dv.Messages = append(dv.Messages, mv)
		}
		out = append(out, dv)
	}
	return out
}

// TimeLabel is "15:04" for a timestamp less than a day before now and
// "Jan 2" otherwise.
func TimeLabel(ts, now time.Time) string {
	if now.Sub(ts) < 24*time.Hour {
		return ts.Format("15:04")
	}
	return ts.Format("Jan 2")
}
