package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/instafinder/backend/internal/domain"
)

// Fixed user-facing messages for contract and protocol failures
const (
	MessageNoResults     = "No results found in response"
	statusFailureMessage = "Request failed with status %d"
)

// successResponse is the body of a 2xx answer from the analysis service.
// Results is a pointer so an absent or null field can be told apart from [].
// Other fields, such as status, are ignored whatever their type.
type successResponse struct {
	Results *[]resultPayload `json:"results"`
}

type resultPayload struct {
	Object       string         `json:"object"`
	Confidence   float64        `json:"confidence"`
	CroppedImage *string        `json:"cropped_image"`
	Matches      []matchPayload `json:"matches"`
}

type matchPayload struct {
	Name            string  `json:"name"`
	ImageURL        string  `json:"image_url"`
	SimilarityScore float64 `json:"similarity_score"`
}

// errorResponse is the body of a non-2xx answer. Both fields stay raw so an
// unexpected type in one of them never hides the other; validation failures
// carry a list of objects in detail.
type errorResponse struct {
	Detail  json.RawMessage `json:"detail"`
	Message json.RawMessage `json:"message"`
}

// MapToGroups converts the service payload to domain groups, keeping order
func MapToGroups(results []resultPayload) []domain.ObjectMatchGroup {
	groups := make([]domain.ObjectMatchGroup, 0, len(results))
	for _, r := range results {
		matches := make([]domain.ProductMatch, 0, len(r.Matches))
		for _, m := range r.Matches {
			matches = append(matches, domain.ProductMatch{
				Name:            m.Name,
				ImageURL:        m.ImageURL,
				SimilarityScore: m.SimilarityScore,
			})
		}

		group := domain.ObjectMatchGroup{
			Object:     r.Object,
			Confidence: r.Confidence,
			Matches:    matches,
		}
		if r.CroppedImage != nil {
			group.CroppedImage = *r.CroppedImage
		}
		groups = append(groups, group)
	}
	return groups
}

// StatusFailureMessage is the fallback message for a non-2xx status
func StatusFailureMessage(code int) string {
	return fmt.Sprintf(statusFailureMessage, code)
}

// errorMessage picks detail, then message, then the status fallback.
// Empty strings fall through the same way missing fields do.
func (e errorResponse) errorMessage(code int) string {
	if detail := detailText(e.Detail); detail != "" {
		return detail
	}
	if message := scalarText(e.Message); message != "" {
		return message
	}
	return StatusFailureMessage(code)
}

// detailText reads detail as a scalar, or as a list of {"msg": ...} entries
func detailText(raw json.RawMessage) string {
	if text := scalarText(raw); text != "" {
		return text
	}

	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Msg != "" {
			msgs = append(msgs, entry.Msg)
		}
	}
	return strings.Join(msgs, "; ")
}

// scalarText renders a JSON string, number or true as text. Empty strings,
// zero, false, null, objects and arrays give "".
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return ""
		}
		return text
	case 't':
		if string(raw) == "true" {
			return "true"
		}
		return ""
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		n, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || n == 0 {
			return ""
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return ""
	}
}
