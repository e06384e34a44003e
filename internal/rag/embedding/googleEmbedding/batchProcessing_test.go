package googleEmbedding

import (
	"errors"
	"testing"

	"github.com/akolanti/DocRAG/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGetContent(t *testing.T) {
	contents := getContent([]string{"a", "b"})
	if len(contents) != 2 || contents[1].Parts[0].Text != "b" {
		t.Errorf("unexpected contents: %+v", contents)
	}
}

func TestCollect(t *testing.T) {
	tests := []struct {
		name    string
		res     *genai.EmbedContentResponse
		want    int
		wantErr bool
	}{
		{"nil response", nil, 1, true},
		{"count mismatch", &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}}}, 2, true},
		{"empty vector", &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{}}}, 1, true},
		{"ok", &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}, {Values: []float32{2}}}}, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collect(tt.res, tt.want)
			if (err != nil) != tt.wantErr {
				t.Fatalf("collect() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(got) != tt.want {
				t.Errorf("got %d vectors, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDoRetry(t *testing.T) {
	log := logger_i.NewLogger("test")
	if !doRetry(genai.APIError{Code: 429}, log) {
		t.Error("429 should be retried")
	}
	if !doRetry(status.Error(codes.ResourceExhausted, "slow down"), log) {
		t.Error("ResourceExhausted should be retried")
	}
	if doRetry(errors.New("bad request"), log) {
		t.Error("plain errors should not be retried")
	}
}
