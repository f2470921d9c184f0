package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// streamText decodes the text operators of every page content stream.
// Pages are separated by form feeds, like pdftotext output.
func streamText(path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return "", 0, fmt.Errorf("pdfcpu read: %w", err)
	}

	var b strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		if pageNr > 1 {
			b.WriteString("\f")
		}
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		b.WriteString(decodeContent(data))
	}
	if strings.TrimSpace(strings.ReplaceAll(b.String(), "\f", "")) == "" {
		return "", ctx.PageCount, fmt.Errorf("no text content found in PDF")
	}
	return b.String(), ctx.PageCount, nil
}

var (
	pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)
	operandsRe  = regexp.MustCompile(`-?\d*\.?\d+`)
)

// decodeContent rebuilds lines from a content stream. A vertical move starts a
// new line; a horizontal move inserts a column gap of two spaces so layout
// parsing can still split amounts.
func decodeContent(data []byte) string {
	var sb strings.Builder
	lastY, haveY := 0.0, false

	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}
	gap := func() {
		s := sb.String()
		if sb.Len() > 0 && !strings.HasSuffix(s, "\n") && !strings.HasSuffix(s, "  ") {
			sb.WriteString("  ")
		}
	}

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		switch {
		case len(line) == 0:
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			newline()
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			ops := operands(line)
			if len(ops) >= 2 && ops[1] != 0 {
				newline()
			} else {
				gap()
			}
		case bytes.HasSuffix(line, []byte("Tm")):
			ops := operands(line)
			if len(ops) >= 6 {
				if haveY && ops[5] != lastY {
					newline()
				} else {
					gap()
				}
				lastY, haveY = ops[5], true
			}
		case bytes.Equal(line, []byte("T*")), bytes.Equal(line, []byte("ET")):
			newline()
		}
	}
	return sb.String()
}

func operands(line []byte) []float64 {
	var out []float64
	for _, m := range operandsRe.FindAll(line, -1) {
		if v, err := strconv.ParseFloat(string(m), 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// decodePDFString handles the escape sequences of PDF literal strings.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] < '0' || raw[i] > '7' {
				sb.WriteByte(raw[i])
				continue
			}
			val := int(raw[i] - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}
