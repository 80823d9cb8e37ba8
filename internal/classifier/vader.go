package classifier

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

// vaderBackend is the startup fallback: a lexicon analyzer that needs no
// model download and no ONNX runtime.
type vaderBackend struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func newVaderBackend() *vaderBackend {
	return &vaderBackend{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *vaderBackend) name() string { return "vader" }

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := strings.Join(strings.Fields(string(output)), " ")

	return RemoveLinks(plainText)
}

// predict emits labels in the model vocabulary (upper case) so the same
// label remapping applies to both backends.
func (v *vaderBackend) predict(text string) (string, float64, error) {
	sentiment := v.analyzer.PolarityScores(ConvertMarkdownToText(text))
	score := sentiment.Compound

	switch {
	case score >= 0.20:
		return "POSITIVE", sentiment.Positive, nil
	case score <= -0.20:
		return "NEGATIVE", sentiment.Negative, nil
	default:
		return "NEUTRAL", sentiment.Neutral, nil
	}
}
