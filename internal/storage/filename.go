package storage

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var invalidFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// FilenameForURL derives a descriptive markdown filename for a page URL.
// Confluence URLs are mapped to their space and page name; everything else
// gets domain, flattened path and a timestamp.
func FilenameForURL(rawURL string, now time.Time) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "page_" + now.Format("20060102_150405") + ".md"
	}

	domain := strings.TrimPrefix(parsed.Hostname(), "www.")

	var filename string
	if strings.Contains(domain, "confluence") {
		space, page := confluenceSpacePage(parsed.Path)
		filename = fmt.Sprintf("confluence_%s_%s.md", space, page)
	} else {
		path := strings.Trim(parsed.Path, "/")
		path = strings.ReplaceAll(path, "/", "_")
		if path == "" {
			path = "home"
		}
		filename = fmt.Sprintf("%s_%s_%s.md", domain, path, now.Format("20060102_150405"))
	}

	return invalidFilenameChars.ReplaceAllString(filename, "_")
}

// confluenceSpacePage extracts the space key and page name from the two
// Confluence URL layouts: /display/SPACE/Page+Name and
// /wiki/spaces/SPACE/pages/123456/Page+Name.
func confluenceSpacePage(path string) (space, page string) {
	space, page = "unknown", "page"
	parts := strings.Split(strings.Trim(path, "/"), "/")

	for i, p := range parts {
		switch p {
		case "display":
			if len(parts) > i+2 {
				space = parts[i+1]
				page = strings.ReplaceAll(parts[i+2], "+", "_")
			}
			return space, page
		case "spaces":
			if len(parts) > i+1 {
				space = parts[i+1]
			}
			for j := i; j < len(parts); j++ {
				if parts[j] == "pages" && len(parts) > j+2 {
					page = strings.ReplaceAll(parts[len(parts)-1], "+", "_")
					break
				}
			}
			return space, page
		}
	}
	return space, page
}
