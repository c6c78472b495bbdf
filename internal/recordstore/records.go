package recordstore

import (
	"time"

	"github.com/hitoshi/scrumdesk/internal/model"
)

// レコードストアのワイヤ表現。フィールド名はストアのJSON規約
// （lowerCamelCase）に合わせている。

type userRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r userRecord) toModel() *model.User {
	return &model.User{
		ID:       r.ID,
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     model.Role(r.Role),
	}
}

func userToRecord(u *model.User) userRecord {
	return userRecord{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Role:     string(u.Role),
	}
}

type scrumRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (r scrumRecord) toModel() *model.Scrum {
	return &model.Scrum{ID: r.ID, Name: r.Name}
}

type historyRecord struct {
	Status string `json:"status"`
	Date   string `json:"date"`
}

type taskRecord struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	ScrumID     string          `json:"scrumId"`
	AssignedTo  string          `json:"assignedTo"`
	History     []historyRecord `json:"history"`
}

func (r taskRecord) toModel() *model.Task {
	history := make([]model.HistoryEntry, 0, len(r.History))
	for _, h := range r.History {
		history = append(history, model.HistoryEntry{
			Status: model.Status(h.Status),
			Date:   h.Date,
		})
	}
	return &model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      model.Status(r.Status),
		ScrumID:     r.ScrumID,
		AssignedTo:  r.AssignedTo,
		History:     history,
	}
}

func taskToRecord(t *model.Task) taskRecord {
	history := make([]historyRecord, 0, len(t.History))
	for _, h := range t.History {
		history = append(history, historyRecord{Status: string(h.Status), Date: h.Date})
	}
	return taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		ScrumID:     t.ScrumID,
		AssignedTo:  t.AssignedTo,
		History:     history,
	}
}

type sessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r sessionRecord) toModel() *model.Session {
	return &model.Session{
		ID:        r.ID,
		UserID:    r.UserID,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
	}
}
