package extractor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

func extractPDF(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var out bytes.Buffer
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		if text == "" {
			continue
		}
		out.WriteString(text)
		out.WriteString("\n")
	}
	if out.Len() == 0 {
		plain, err := reader.GetPlainText()
		if err != nil {
			return "", fmt.Errorf("read pdf text: %w", err)
		}
		if _, err := io.Copy(&out, plain); err != nil {
			return "", fmt.Errorf("read pdf text: %w", err)
		}
	}
	return out.String(), nil
}
