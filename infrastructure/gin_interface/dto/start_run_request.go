package dto

type StartRunRequest struct {
	Keyword string `json:"keyword" binding:"required"`
}
