package handler

import "github.com/hitoshi/scrumdesk/internal/model"

// userResponse はユーザー情報のAPIレスポンス。
// パスワードは資格情報であり、いかなるレスポンスにも含めない。
type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

func toUserResponses(users []*model.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// scrumResponse はスクラム情報のAPIレスポンス。
type scrumResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toScrumResponse(s *model.Scrum) scrumResponse {
	return scrumResponse{ID: s.ID, Name: s.Name}
}

// historyEntryResponse はタスク履歴エントリのAPIレスポンス。
type historyEntryResponse struct {
	Status string `json:"status"`
	Date   string `json:"date"`
}

// taskResponse はタスク情報のAPIレスポンス。履歴は挿入順で返す。
type taskResponse struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Status      string                 `json:"status"`
	ScrumID     string                 `json:"scrumId"`
	AssignedTo  string                 `json:"assignedTo"`
	History     []historyEntryResponse `json:"history"`
}

func toTaskResponse(t *model.Task) taskResponse {
	history := make([]historyEntryResponse, 0, len(t.History))
	for _, h := range t.History {
		history = append(history, historyEntryResponse{Status: string(h.Status), Date: h.Date})
	}
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		ScrumID:     t.ScrumID,
		AssignedTo:  t.AssignedTo,
		History:     history,
	}
}

func toTaskResponses(tasks []*model.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}
