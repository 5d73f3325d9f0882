package client

type StartRunRequest struct {
	Keywords []string `json:"keywords"`
}

type StartRunResponse struct {
	RunID   string `json:"run_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
