package googleEmbedding

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/DocRAG/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// the embed endpoint accepts at most 100 contents per request
const maxBatchSize = 100

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

// doRetry reports whether err is a rate limit worth one more attempt.
func doRetry(err error, log *logger_i.Logger) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		log.Error("Rate limit hit! ", "error", err)
		return true
	}
	if s, ok := status.FromError(err); ok {
		if s.Code() == codes.ResourceExhausted {
			log.Error("Rate limit hit! ", "error", err)
			return true
		}
	}
	return false
}

func collect(res *genai.EmbedContentResponse, want int) ([][]float32, error) {
	if res == nil || len(res.Embeddings) != want {
		got := 0
		if res != nil {
			got = len(res.Embeddings)
		}
		return nil, fmt.Errorf("google returned %d embeddings for %d texts", got, want)
	}
	results := make([][]float32, 0, want)
	for i, r := range res.Embeddings {
		if r == nil || len(r.Values) == 0 {
			return nil, fmt.Errorf("google returned an empty embedding at position %d", i)
		}
		results = append(results, r.Values)
	}
	return results, nil
}
