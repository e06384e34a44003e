package api

// Bodies exchanged with the vector store and model services.

type ChunkPayload struct {
	Text    string `json:"text"`
	ChunkId string `json:"chunk_id"`
}

type CreateIndexRequest struct {
	Chunks []ChunkPayload `json:"chunks"`
}

type CreateIndexResponse struct {
	Message    string `json:"message"`
	ChunkCount int    `json:"chunk_count"`
}

type QueryIndexRequest struct {
	Query string `json:"query"`
	K     *int   `json:"k,omitempty"`
}

type QueryIndexResponse struct {
	Results []string `json:"results"`
	Lexical bool     `json:"lexical,omitempty"`
}

type GenerateRequest struct {
	Context string `json:"context"`
	Query   string `json:"query"`
}

type GenerateResponse struct {
	Response string `json:"response"`
	Fallback bool   `json:"fallback,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorDetail struct {
	Detail string `json:"detail"`
}
