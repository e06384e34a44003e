package commonModels

import "time"

type Document struct {
	Id          string    `json:"document_id"`
	Name        string    `json:"document_name"`
	ContentType DocType   `json:"content_type"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// DocChunk is one retrievable passage; ChunkId is <document id>_chunk<n>.
type DocChunk struct {
	ChunkId string `json:"chunk_id"`
	Text    string `json:"text"`
}

type HistoryEntry struct {
	Query        string    `json:"query"`
	Answer       string    `json:"answer"`
	UsedFallback bool      `json:"used_fallback"`
	AskedAt      time.Time `json:"asked_at"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"
