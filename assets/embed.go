package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed quotes.txt
var FS embed.FS

// QuoteLines returns the embedded fallback puzzle lines
// (encodedText|solutionText|author|difficulty), comments stripped.
func QuoteLines() ([]string, error) {
	f, err := FS.Open("quotes.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}
