// Package report renders analysis results for people and for other tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/menta2k/cognitive-demos/pkg/types"
)

// Percent formats a [0,1] confidence as a percentage with two decimals
func Percent(confidence float64) string {
	return fmt.Sprintf("%.2f%%", confidence*100)
}

// WriteAnalysis prints every feature present in result in a plain console layout
func WriteAnalysis(w io.Writer, result *types.AnalysisResult) error {
	p := &printer{w: w}

	if result.Caption != nil {
		p.printf("\nCaption: '%s' (confidence: %s)\n", result.Caption.Text, Percent(result.Caption.Confidence))
	}

	if len(result.DenseCaptions) > 0 {
		p.printf("\nDense Captions:\n")
		for _, c := range result.DenseCaptions {
			p.printf(" Caption: '%s' (confidence: %s)\n", c.Text, Percent(c.Confidence))
		}
	}

	if len(result.Tags) > 0 {
		p.printf("\nTags:\n")
		for _, t := range result.Tags {
			p.printf(" Tag: '%s' (confidence: %s)\n", t.Name, Percent(t.Confidence))
		}
	}

	if len(result.Objects) > 0 {
		p.printf("\nObjects in image:\n")
		for _, o := range result.Objects {
			tag, ok := o.Primary()
			if !ok {
				p.printf(" <untagged> at %d,%d\n", o.BoundingBox.X, o.BoundingBox.Y)
				continue
			}
			p.printf(" %s (confidence: %s)\n", tag.Name, Percent(tag.Confidence))
		}
	}

	if len(result.People) > 0 {
		p.printf("\nPeople in image:\n")
		for _, person := range result.People {
			b := person.BoundingBox
			p.printf(" Person at %d,%d %dx%d (confidence: %s)\n", b.X, b.Y, b.Width, b.Height, Percent(person.Confidence))
		}
	}

	return p.err
}

// WriteJSON writes the raw result as indented JSON to path
func WriteJSON(path string, result *types.AnalysisResult) error {
	js, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(path, js, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// printer remembers the first write error so callers check once
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
