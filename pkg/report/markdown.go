package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/menta2k/cognitive-demos/pkg/types"
)

// WriteMarkdown writes a GitHub flavored markdown report for one analyzed image
func WriteMarkdown(w io.Writer, source string, result *types.AnalysisResult) error {
	md := markdown.NewMarkdown(w)

	md.H1("Image Analysis")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Image", "`" + source + "`"},
			{"Size", fmt.Sprintf("%dx%d", result.Metadata.Width, result.Metadata.Height)},
			{"Model", valueOr(result.ModelVersion, "unknown")},
		},
	})
	md.PlainText("")

	if result.Caption != nil {
		md.H2("Caption")
		md.PlainText("")
		md.PlainTextf("%s (%s)", result.Caption.Text, Percent(result.Caption.Confidence))
		md.PlainText("")
	}

	if len(result.DenseCaptions) > 0 {
		rows := make([][]string, 0, len(result.DenseCaptions))
		for _, c := range result.DenseCaptions {
			rows = append(rows, []string{c.Text, Percent(c.Confidence), boxString(c.BoundingBox)})
		}
		md.H2("Dense Captions")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"Caption", "Confidence", "Region"}, Rows: rows})
		md.PlainText("")
	}

	if len(result.Tags) > 0 {
		rows := make([][]string, 0, len(result.Tags))
		for _, t := range result.Tags {
			rows = append(rows, []string{t.Name, Percent(t.Confidence)})
		}
		md.H2("Tags")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"Tag", "Confidence"}, Rows: rows})
		md.PlainText("")
	}

	if len(result.Objects) > 0 {
		rows := make([][]string, 0, len(result.Objects))
		for i, o := range result.Objects {
			name, conf := "", ""
			if tag, ok := o.Primary(); ok {
				name, conf = tag.Name, Percent(tag.Confidence)
			}
			rows = append(rows, []string{strconv.Itoa(i + 1), name, conf, boxString(o.BoundingBox)})
		}
		md.H2("Objects")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"#", "Object", "Confidence", "Region"}, Rows: rows})
		md.PlainText("")
	}

	if len(result.People) > 0 {
		rows := make([][]string, 0, len(result.People))
		for i, p := range result.People {
			rows = append(rows, []string{strconv.Itoa(i + 1), Percent(p.Confidence), boxString(p.BoundingBox)})
		}
		md.H2("People")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"#", "Confidence", "Region"}, Rows: rows})
		md.PlainText("")
	}

	if len(result.Objects) == 0 && len(result.People) == 0 {
		md.Note("No objects or people were detected.")
	}

	return md.Build()
}

func boxString(b types.BoundingBox) string {
	return fmt.Sprintf("%d,%d %dx%d", b.X, b.Y, b.Width, b.Height)
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
