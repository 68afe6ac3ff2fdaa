package completion

import (
	"bytes"
	"context"
	"esign-web-server/internal/model"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// minimalPDF : одностраничный PDF заданного размера с пустым потоком содержимого
func minimalPDF(t *testing.T, width, height int) []byte {
	t.Helper()

	content := "q Q\n"
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << >> /Contents 4 0 R >>", width, height),
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// pageContent : содержимое страниц после pdfcpu, одной строкой
func pageContent(t *testing.T, pdf []byte) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "completed.pdf")
	require.NoError(t, os.WriteFile(path, pdf, 0o600))

	outDir := filepath.Join(dir, "content")
	require.NoError(t, os.Mkdir(outDir, 0o700))
	require.NoError(t, api.ExtractContentFile(path, outDir, nil, NewPDFLoader().conf))

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var content bytes.Buffer
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		require.NoError(t, err)
		content.Write(data)
	}
	return content.String()
}

func TestPDFLoader_ReadsPageSize(t *testing.T) {
	canvas, err := NewPDFLoader().Load(minimalPDF(t, 612, 792))
	require.NoError(t, err)

	assert.Equal(t, []Page{{Width: 612, Height: 792}}, canvas.Pages())
}

func TestPDFLoader_RejectsGarbage(t *testing.T) {
	engine := NewEngine(NewPDFLoader(), Options{})

	_, err := engine.Complete(context.Background(), []byte("not a pdf"), nil)
	assert.ErrorIs(t, err, ErrInvalidPDF)
}

func TestPDFCanvas_StampsFieldsAtMappedPosition(t *testing.T) {
	source := minimalPDF(t, 612, 792)
	original := append([]byte(nil), source...)
	signer := "rec-1"

	fields := []model.SignatureField{
		{UUID: "sig", PageNumber: 1, X: 150, Y: 650, Width: 200, Height: 60, Type: model.FieldTypeSignature,
			Value: encodePNG(t, 200, 60), CompletedBy: &signer},
		{UUID: "name", PageNumber: 1, X: 50, Y: 100, Width: 200, Height: 20, Type: model.FieldTypeText,
			Value: "Jane Doe", CompletedBy: &signer},
	}

	output, err := NewEngine(NewPDFLoader(), Options{}).Complete(context.Background(), source, fields)
	require.NoError(t, err)
	assert.Equal(t, original, source)
	assert.NotEqual(t, source, output)

	dims, err := api.PageDims(bytes.NewReader(output), NewPDFLoader().conf)
	require.NoError(t, err)
	require.Len(t, dims, 1)
	assert.Equal(t, 612.0, dims[0].Width)
	assert.Equal(t, 792.0, dims[0].Height)

	content := pageContent(t, output)
	assert.Regexp(t, regexp.MustCompile(`150(\.0+)? 82(\.0+)? cm`), content)
	assert.GreaterOrEqual(t, len(regexp.MustCompile(`\bDo\b`).FindAllString(content, -1)), 2)
}

func TestPDFCanvas_NoCompletedFieldsKeepsBytes(t *testing.T) {
	source := minimalPDF(t, 612, 792)

	output, err := NewEngine(NewPDFLoader(), Options{}).Complete(context.Background(), source,
		[]model.SignatureField{{UUID: "empty", PageNumber: 1, Width: 100, Height: 20, Type: model.FieldTypeText}})
	require.NoError(t, err)
	assert.Equal(t, source, output)
}

func TestEngine_CompleteRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	engine := NewEngine(NewPDFLoader(), Options{})
	engine.tracer = tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(recorder)).Tracer("test")

	_, err := engine.Complete(context.Background(), []byte("not a pdf"), nil)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "completion.Complete", spans[0].Name())
	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}
