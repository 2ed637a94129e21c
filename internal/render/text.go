package render

import (
	"fmt"
	"io"
)

// Text writes a plain-text rendition of a view, used by the command line
func Text(w io.Writer, view View) error {
	ew := &errWriter{w: w}

	switch {
	case view.Validation != "":
		ew.printf("Invalid input: %s\n", view.Validation)
	case view.Loading:
		ew.printf("%s\n", LoadingLabel)
	case view.Error != "":
		ew.printf("Error: %s\n", view.Error)
	}

	if view.ShowResults {
		ew.printf("%s\n", ResultsHeading)
		if len(view.Groups) == 0 {
			ew.printf("  (no objects detected)\n")
		}
		for _, group := range view.Groups {
			ew.printf("\n%s\n", group.Heading)
			if group.NoMatches {
				ew.printf("  %s\n", NoMatchesText)
				continue
			}
			for i, card := range group.Cards {
				ew.printf("  %d. %s\n     Similarity: %s\n     %s\n", i+1, card.Name, card.Similarity, card.ImageURL)
			}
		}
	}

	return ew.err
}

// errWriter keeps the first write error
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
