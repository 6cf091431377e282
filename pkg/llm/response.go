package llm

// ErrorResponse is the JSON body of every failed HTTP response.
type ErrorResponse struct {
	Error string `json:"error"`
}
