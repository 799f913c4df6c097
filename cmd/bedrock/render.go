package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/eringen/bedrock"
	"github.com/eringen/bedrock/content"
	"github.com/eringen/bedrock/richtext"
)

// runRender prints the HTML body of a post or bare rich-text document.
// Media paths resolve against CMS_URL.
func runRender(path string, w io.Writer) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return err
	}
	origin := bedrock.EnvOr("CMS_URL", "http://localhost:3001")
	_, err = io.WriteString(w, richtext.Render(doc, origin)+"\n")
	return err
}

// decodeDocument accepts a post ({"content": {"root": ...}}) or a document
// ({"root": ...}).
func decodeDocument(data []byte) (*content.Document, error) {
	var shape struct {
		Content json.RawMessage `json:"content"`
		Root    json.RawMessage `json:"root"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(shape.Content) > 0 && !bytes.Equal(shape.Content, []byte("null")) {
		var post content.Post
		if err := json.Unmarshal(data, &post); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		return post.Content, nil
	}
	var doc content.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}
