package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/akolanti/DocRAG/internal/adapter/utils"
	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("document_ingestion")

var unsafeIdChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func DocTypeOf(name string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	case ".txt", ".md":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

// ExtractText returns the raw text of the file at path, typed by its extension.
func ExtractText(path string) (string, commonModels.DocType, error) {
	docType := DocTypeOf(path)
	switch docType {
	case commonModels.PDF:
		text, err := extractPDF(path)
		return text, docType, err
	case commonModels.DOCX, commonModels.TXT:
		text, err := extractDocument(path)
		return text, docType, err
	default:
		return "", docType, fmt.Errorf("%w: %s", commonModels.ErrUnsupportedDocument, filepath.Ext(path))
	}
}

// NewDocument gives every ingest its own id, so loading the same file twice
// never overwrites the chunks of the first load.
func NewDocument(name string) commonModels.Document {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.Trim(unsafeIdChars.ReplaceAllString(base, "-"), "-")
	if base == "" {
		base = "document"
	}
	return commonModels.Document{
		Id:          base + "-" + utils.GetNewUUID()[:8],
		Name:        name,
		ContentType: DocTypeOf(name),
		IngestedAt:  time.Now(),
	}
}

// BuildChunks numbers the pieces from 1 in document order.
func BuildChunks(doc commonModels.Document, pieces []string) []commonModels.DocChunk {
	chunks := make([]commonModels.DocChunk, len(pieces))
	for i, text := range pieces {
		chunks[i] = commonModels.DocChunk{
			ChunkId: fmt.Sprintf("%s_chunk%d", doc.Id, i+1),
			Text:    text,
		}
	}
	return chunks
}
