package markdown

import "strings"

// Markers returns the HTML comment pair that fences a generated block.
func Markers(name string) (string, string) {
	return "<!-- lootledger:" + name + ":start -->", "<!-- lootledger:" + name + ":end -->"
}

// ReplaceManagedBlock swaps the text between the markers of name for
// generated, or appends a new block. Text outside the block is kept.
func ReplaceManagedBlock(body, name, generated string) string {
	startMarker, endMarker := Markers(name)
	start := strings.Index(body, startMarker)
	end := strings.Index(body, endMarker)
	block := startMarker + "\n" + strings.TrimRight(generated, "\n") + "\n" + endMarker

	if start >= 0 && end > start {
		end += len(endMarker)
		return body[:start] + block + body[end:]
	}

	if strings.TrimSpace(body) == "" {
		return block + "\n"
	}
	if strings.HasSuffix(body, "\n") {
		return body + "\n" + block + "\n"
	}
	return body + "\n\n" + block + "\n"
}
