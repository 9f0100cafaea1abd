package dto

import "github.com/google/uuid"

type SubmitResponse struct {
	Success   bool      `json:"success"`
	RequestID uuid.UUID `json:"requestId"`
	Status    string    `json:"status"`
}

type ListResponse[T any] struct {
	Requests []T `json:"requests"`
}

type UpdateResponse[T any] struct {
	Success bool `json:"success"`
	Request T    `json:"request"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
