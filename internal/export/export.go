package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"tasklist/internal/model"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Lister interface {
	List(ctx context.Context) ([]model.Task, error)
}

type Format struct {
	Name        string
	ContentType string
	Ext         string
}

var formats = map[string]Format{
	"json": {Name: "json", ContentType: "application/json; charset=utf-8", Ext: "json"},
	"csv":  {Name: "csv", ContentType: "text/csv; charset=utf-8", Ext: "csv"},
	"pdf":  {Name: "pdf", ContentType: "application/pdf", Ext: "pdf"},
}

// Lookup resolves a format name; an empty name means json.
func Lookup(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "json"
	}
	f, ok := formats[name]
	if !ok {
		return Format{}, fmt.Errorf("%w %q", ErrUnknownFormat, name)
	}
	return f, nil
}

type Exporter struct {
	tasks Lister
	now   func() time.Time
}

func NewExporter(tasks Lister) *Exporter {
	return &Exporter{tasks: tasks, now: func() time.Time { return time.Now().UTC() }}
}

func (e *Exporter) Export(ctx context.Context, f Format) ([]byte, error) {
	all, err := e.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	switch f.Name {
	case "json":
		return json.MarshalIndent(all, "", "  ")
	case "csv":
		return toCSV(all)
	case "pdf":
		return e.toPDF(all)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, f.Name)
	}
}

func toCSV(all []model.Task) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "text", "done", "created_at"})
	for _, t := range all {
		created := ""
		if t.CreatedAt != nil {
			created = t.CreatedAt.UTC().Format(time.RFC3339)
		}
		_ = w.Write([]string{t.ID.String(), t.Text, fmt.Sprint(t.Done), created})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (e *Exporter) toPDF(all []model.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Tasks", true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, e.now().Format("2006-01-02 15:04 MST"))
	pdf.Ln(10)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 11)
	done := 0
	for _, t := range all {
		mark := "[ ]"
		if t.Done {
			mark = "[x]"
			done++
		}
		line := fmt.Sprintf("%s  #%s  %s", mark, t.ID, tr(t.Text))
		pdf.MultiCell(0, 6, line, "0", "L", false)
	}
	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(40, 6, fmt.Sprintf("%d of %d done", done, len(all)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
