package language

import (
	"context"
	"strings"

	"github.com/menta2k/cognitive-demos/pkg/client"
)

// NoTextMessage is shown instead of calling the service when the input is blank
const NoTextMessage = "No text entered."

// MaxTextBytes is the per-document size limit of the synchronous API
const MaxTextBytes = 5120

// Describe returns what a user sees for text: the detected language name,
// NoTextMessage for blank input, or "Error: <msg>" when detection fails. The
// error is returned as well so callers can log it.
func Describe(ctx context.Context, detector client.LanguageDetector, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return NoTextMessage, nil
	}

	result, err := detector.DetectLanguage(ctx, Truncate(text, MaxTextBytes))
	if err != nil {
		return "Error: " + err.Error(), err
	}
	return result.Name, nil
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
