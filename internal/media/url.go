package media

import (
	"fmt"
	"regexp"
	"strings"
)

// videoIDPattern matches the 11-character id in the URL forms we accept:
// watch?v=, youtu.be/, shorts/, embed/, plus the v/ and vi/ variants.
var videoIDPattern = regexp.MustCompile(`(?:v=|vi=|v/|vi/|youtu\.be/|shorts/|embed/)([0-9A-Za-z_-]{11})`)

// ExtractVideoID pulls the canonical external id out of a YouTube URL.
func ExtractVideoID(url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("empty URL")
	}
	if !strings.Contains(url, "youtube.com") && !strings.Contains(url, "youtu.be") {
		return "", fmt.Errorf("not a YouTube URL: %s", url)
	}
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("could not extract video id from URL: %s", url)
	}
	return m[1], nil
}
