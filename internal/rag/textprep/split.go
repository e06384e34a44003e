package textprep

import (
	"strings"
	"unicode/utf8"
)

// separators ordered from "best" to "worst" for semantic meaning
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// OverlapFor converts an overlap ratio into characters for the given chunk size.
func OverlapFor(size int, ratio float64) int {
	return int(float64(size) * ratio)
}

// Split breaks text into chunks of at most size characters, each sharing up to
// overlap characters of trailing context with the one before it. Paragraph
// breaks are preferred, then lines, sentences, words and finally characters.
// A chunk is only longer than size when it cannot be split any further.
func Split(text string, size int, overlap int) []string {
	if size < 1 {
		size = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	s := splitter{size: size, overlap: overlap}
	return s.split(text, separators)
}

type splitter struct {
	size    int
	overlap int
}

func (s splitter) split(text string, seps []string) []string {
	separator := seps[len(seps)-1]
	var remaining []string
	for i, sep := range seps {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = seps[i+1:]
			break
		}
	}

	pieces := strings.Split(text, separator)
	joinWith := separator
	if separator == ". " {
		//keep the full stop with its sentence
		for i := 0; i < len(pieces)-1; i++ {
			pieces[i] += "."
		}
		joinWith = " "
	}

	var chunks []string
	var fitting []string
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		if length(piece) < s.size {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			chunks = append(chunks, s.merge(fitting, joinWith)...)
			fitting = nil
		}
		if len(remaining) == 0 {
			chunks = appendChunk(chunks, piece)
			continue
		}
		chunks = append(chunks, s.split(piece, remaining)...)
	}
	if len(fitting) > 0 {
		chunks = append(chunks, s.merge(fitting, joinWith)...)
	}
	return chunks
}

// merge packs pieces into chunks, carrying the tail of each chunk into the next.
func (s splitter) merge(pieces []string, separator string) []string {
	sepLen := length(separator)
	var chunks []string
	var window []string
	total := 0

	for _, piece := range pieces {
		pieceLen := length(piece)
		if total+pieceLen+joinCost(window, sepLen) > s.size && len(window) > 0 {
			chunks = appendChunk(chunks, strings.Join(window, separator))
			//drop from the front until only the overlap is left and the next piece fits
			for total > s.overlap || (total+pieceLen+joinCost(window, sepLen) > s.size && total > 0) {
				total -= length(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += pieceLen
		if len(window) > 1 {
			total += sepLen
		}
	}
	return appendChunk(chunks, strings.Join(window, separator))
}

func joinCost(window []string, sepLen int) int {
	if len(window) == 0 {
		return 0
	}
	return sepLen
}

func appendChunk(chunks []string, chunk string) []string {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return chunks
	}
	return append(chunks, chunk)
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
