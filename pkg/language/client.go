// Package language calls the language detection task of the Azure AI Language service.
package language

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/menta2k/cognitive-demos/pkg/azure"
	"github.com/menta2k/cognitive-demos/pkg/types"
)

const (
	analyzeTextPath = "language/:analyze-text"

	// APIVersion of the analyze-text operation
	APIVersion = "2023-04-01"

	kindLanguageDetection = "LanguageDetection"
	documentID            = "1"
)

// Client detects the primary language of short texts
type Client struct {
	azure       *azure.Client
	countryHint string
}

// NewClient creates a language client. countryHint may be empty.
func NewClient(transport *azure.Client, countryHint string) *Client {
	return &Client{azure: transport, countryHint: countryHint}
}

type document struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	CountryHint string `json:"countryHint,omitempty"`
}

type detectRequest struct {
	Kind          string `json:"kind"`
	AnalysisInput struct {
		Documents []document `json:"documents"`
	} `json:"analysisInput"`
}

type detectResponse struct {
	Kind    string `json:"kind"`
	Results struct {
		Documents []struct {
			ID               string `json:"id"`
			DetectedLanguage struct {
				Name            string  `json:"name"`
				ISO6391Name     string  `json:"iso6391Name"`
				ConfidenceScore float64 `json:"confidenceScore"`
			} `json:"detectedLanguage"`
		} `json:"documents"`
		Errors []struct {
			ID    string            `json:"id"`
			Error azure.ErrorDetail `json:"error"`
		} `json:"errors"`
		ModelVersion string `json:"modelVersion"`
	} `json:"results"`
}

// DetectLanguage returns the primary language of text
func (c *Client) DetectLanguage(ctx context.Context, text string) (*types.LanguageResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is empty")
	}

	var req detectRequest
	req.Kind = kindLanguageDetection
	req.AnalysisInput.Documents = []document{{ID: documentID, Text: text, CountryHint: c.countryHint}}

	query := url.Values{}
	query.Set("api-version", APIVersion)

	body, err := c.azure.PostJSON(ctx, analyzeTextPath, query, req)
	if err != nil {
		return nil, err
	}

	var resp detectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse language response: %w", err)
	}

	// A rejected document still comes back as 200 with a per-document error
	for _, e := range resp.Results.Errors {
		if e.ID == documentID {
			msg := e.Error.Message
			if e.Error.InnerError != nil && e.Error.InnerError.Message != "" {
				msg = e.Error.InnerError.Message
			}
			return nil, &azure.ServiceError{StatusCode: 200, Reason: "OK", Code: e.Error.Code, Message: msg}
		}
	}

	for _, d := range resp.Results.Documents {
		if d.ID == documentID {
			return &types.LanguageResult{
				Name:            d.DetectedLanguage.Name,
				ISO6391Name:     d.DetectedLanguage.ISO6391Name,
				ConfidenceScore: d.DetectedLanguage.ConfidenceScore,
			}, nil
		}
	}

	return nil, fmt.Errorf("no result for document %s in response", documentID)
}
