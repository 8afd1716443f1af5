package dto

type MeResponse struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	SID  string `json:"sid"`
}
