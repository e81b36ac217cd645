package convert

import (
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// convertHTML converts an HTML file to markdown.
func convertHTML(path string) (string, error) {
	content, err := readFile(path)
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(string(content))
	if err != nil {
		return "", fmt.Errorf("converting html to markdown: %w", err)
	}
	return markdown, nil
}
