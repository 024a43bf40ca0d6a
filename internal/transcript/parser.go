package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// fileLine is one message in a JSONL transcript export. Both "content" and
// the older "text" key are accepted.
type fileLine struct {
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	Text      string          `json:"text"`
	Timestamp string          `json:"timestamp"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ParseFile reads a transcript from a JSON array or JSONL file.
func ParseFile(path string) (Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a transcript from r. A document starting with '[' is decoded as
// a JSON array; anything else is treated as JSONL, one turn per line, with
// malformed lines and unknown roles skipped.
func Parse(r io.Reader) (Transcript, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read: %w", err)
	}

	if first == '[' {
		var lines []fileLine
		if err := json.NewDecoder(br).Decode(&lines); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		var out Transcript
		for i := range lines {
			if turn, ok := lines[i].toTurn(); ok {
				out = append(out, turn)
			}
		}
		return out, nil
	}

	var out Transcript
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB line buffer
	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var line fileLine
		if err := json.Unmarshal(raw, &line); err != nil {
			continue // skip malformed lines
		}
		if turn, ok := line.toTurn(); ok {
			out = append(out, turn)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return out, nil
}

func (l *fileLine) toTurn() (Turn, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(l.Role)))
	if role != RoleUser && role != RoleAssistant {
		return Turn{}, false
	}
	text := l.Text
	if len(l.Content) > 0 {
		text = contentText(l.Content)
	}
	ts, _ := time.Parse(time.RFC3339Nano, l.Timestamp)
	return Turn{Role: role, Content: text, Timestamp: ts}, true
}

// contentText accepts either a plain string or an array of text blocks.
func contentText(raw json.RawMessage) string {
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
