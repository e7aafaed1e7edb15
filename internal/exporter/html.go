package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/imgpick/internal/storage"
)

// DefaultExportPath returns the default export file path for a format.
// Format: ~/Downloads/imgpick-history-YYYY-MM-DD.<ext>
func DefaultExportPath(ext string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("imgpick-history-%s.%s", time.Now().Format("2006-01-02"), ext)
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the upload history as a standalone gallery page.
func ExportHTML(docs []storage.Document) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html>\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<title>Uploads</title>\n")
	b.WriteString("<style>figure{display:inline-block;margin:8px;width:220px;vertical-align:top}img{max-width:100%}</style>\n")
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>Uploads (%d)</h1>\n", len(docs))

	for _, doc := range docs {
		writeFigure(&b, doc)
	}

	// Footer
	b.WriteString("</body>\n</html>\n")

	return b.String()
}

func writeFigure(b *strings.Builder, doc storage.Document) {
	const prefix = "    "

	fmt.Fprintf(b, "<figure data-filter=\"%s\">\n", html.EscapeString(doc.Filter))
	fmt.Fprintf(b, "%s<a href=\"%s\"><img src=\"%s\" alt=\"%s\"></a>\n",
		prefix,
		html.EscapeString(doc.URL),
		html.EscapeString(doc.URL),
		html.EscapeString(doc.Name),
	)

	caption := html.EscapeString(doc.Name)
	if doc.Description != "" {
		caption += " - " + html.EscapeString(doc.Description)
	}
	fmt.Fprintf(b, "%s<figcaption>%s <time datetime=\"%s\">%s</time></figcaption>\n",
		prefix,
		caption,
		doc.CreatedAt.UTC().Format(time.RFC3339),
		doc.CreatedAt.Format("2006-01-02 15:04"),
	)
	b.WriteString("</figure>\n")
}
