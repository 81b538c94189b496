// internal/app/features/teamchat/types.go
package teamchat

import (
	"time"

	"github.com/dalemusser/devhub/internal/app/chat"
	"github.com/dalemusser/devhub/internal/domain/models"
)

type messagesResponse struct {
	TeamID  string                 `json:"team_id"`
	Days    []chat.DayView         `json:"days"`
	Members []models.MemberSummary `json:"members"`
}

type sendRequest struct {
	Text string `json:"text"`
}

type sentResponse struct {
	ID        string     `json:"id"`
	TeamID    string     `json:"team_id"`
	Text      string     `json:"text"`
	UserID    string     `json:"user_id"`
	UserName  string     `json:"user_name"`
	Timestamp *time.Time `json:"timestamp"`
}

// frame is one websocket message. Type is "snapshot" or "error".
type frame struct {
	Type   string         `json:"type"`
	TeamID string         `json:"team_id,omitempty"`
	Days   []chat.DayView `json:"days,omitempty"`
	Error  string         `json:"error,omitempty"`
}
