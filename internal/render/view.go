package render

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/instafinder/backend/internal/domain"
)

// Static labels shown by the page
const (
	PageTitle        = "Instagram Product Finder"
	SubmitLabel      = "Find Products"
	LoadingLabel     = "Processing..."
	InputPlaceholder = "Paste Instagram Reel/Post URL"
	InputTitle       = "Please enter a valid Instagram URL"
	ResultsHeading   = "Matching Products"
	NoMatchesText    = "No matches found for this object"

	DefaultFallbackImage   = "/static/fallback.svg"
	DefaultRefreshInterval = 2 * time.Second
)

// Options controls rendering details that come from configuration
type Options struct {
	FallbackImage   string
	RefreshInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.FallbackImage == "" {
		o.FallbackImage = DefaultFallbackImage
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = DefaultRefreshInterval
	}
	return o
}

// View is everything the page shows for one SubmissionState
type View struct {
	Title          string
	Input          InputView
	Submit         SubmitView
	Loading        bool
	RefreshSeconds int
	Validation     string
	Error          string
	ShowResults    bool
	Groups         []GroupView
	FallbackImage  string
}

// InputView is the URL text field
type InputView struct {
	Value       string
	Pattern     string
	Title       string
	Placeholder string
	Required    bool
}

// SubmitView is the submit control
type SubmitView struct {
	Label    string
	Disabled bool
}

// GroupView is one detected object with its cards
type GroupView struct {
	Object     string
	Confidence string
	Heading    string
	Thumbnail  template.URL
	Cards      []CardView
	NoMatches  bool
}

// CardView is one product match
type CardView struct {
	Name       string
	ImageURL   string
	Similarity string
}

// Build maps a state to its view. It has no side effects.
func Build(state domain.SubmissionState, opts Options) View {
	opts = opts.withDefaults()
	loading := state.Status() == domain.StatusLoading

	view := View{
		Title: PageTitle,
		Input: InputView{
			Value:       state.URL(),
			Pattern:     domain.InstagramURLPattern,
			Title:       InputTitle,
			Placeholder: InputPlaceholder,
			Required:    true,
		},
		Submit: SubmitView{
			Label:    SubmitLabel,
			Disabled: loading,
		},
		Loading:       loading,
		FallbackImage: opts.FallbackImage,
	}

	if loading {
		view.Submit.Label = LoadingLabel
		view.RefreshSeconds = int((opts.RefreshInterval + time.Second - 1) / time.Second)
	}

	switch state.Status() {
	case domain.StatusFailed:
		view.Error = state.Error()
	case domain.StatusSuccess:
		view.ShowResults = true
		view.Groups = buildGroups(state.Results())
	}

	return view
}

// WithValidation returns a copy of the view showing an input validation message
// for a value that was rejected before submission
func (v View) WithValidation(value, message string) View {
	v.Input.Value = value
	v.Validation = message
	return v
}

func buildGroups(results []domain.ObjectMatchGroup) []GroupView {
	groups := make([]GroupView, 0, len(results))
	for _, result := range results {
		confidence := FormatPercent(result.Confidence)
		group := GroupView{
			Object:     result.Object,
			Confidence: confidence,
			Heading:    fmt.Sprintf("Detected: %s (%s confidence)", result.Object, confidence),
			Thumbnail:  thumbnail(result.CroppedImage),
			NoMatches:  len(result.Matches) == 0,
		}
		for _, match := range result.Matches {
			group.Cards = append(group.Cards, CardView{
				Name:       match.Name,
				ImageURL:   match.ImageURL,
				Similarity: FormatPercent(match.SimilarityScore),
			})
		}
		groups = append(groups, group)
	}
	return groups
}

// thumbnail turns a base64 JPEG into a data URL; anything that is not valid
// base64 is dropped
func thumbnail(encoded string) template.URL {
	if encoded == "" {
		return ""
	}
	if _, err := base64.StdEncoding.DecodeString(encoded); err != nil {
		return ""
	}
	return template.URL("data:image/jpeg;base64," + encoded)
}
