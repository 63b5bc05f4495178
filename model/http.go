package model

import "time"

type UploadResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type TaskStatusResponse struct {
	TaskID    string          `json:"task_id"`
	Status    string          `json:"status"`
	Progress  int             `json:"progress"`
	Result    *AnalysisResult `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ActiveTasksResponse struct {
	Count int                  `json:"count"`
	Tasks []TaskStatusResponse `json:"tasks"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
