package process

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/dataminer/internal/result"
)

// TextOption is one text cleaning step. Steps run in the order given.
type TextOption string

const (
	RemoveHTML        TextOption = "Remove HTML"
	RemoveURLs        TextOption = "Remove URLs"
	RemoveSpecial     TextOption = "Remove Special Characters"
	Lowercase         TextOption = "Lowercase"
	RemoveExtraSpaces TextOption = "Remove Extra Spaces"
	RemoveStopwords   TextOption = "Remove Stopwords"
	NormalizeUnicode  TextOption = "Normalize Unicode"
)

// TextOptions lists every option in display order.
var TextOptions = []TextOption{RemoveHTML, RemoveURLs, RemoveSpecial, Lowercase, RemoveExtraSpaces, RemoveStopwords, NormalizeUnicode}

var (
	urlPattern     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	specialPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	spacePattern   = regexp.MustCompile(`\s+`)
	stripPolicy    = bluemonday.StrictPolicy()
)

// lowerString folds case with Unicode rules. A Caser keeps state, so each
// call gets its own.
func lowerString(s string) string {
	return cases.Lower(language.Und).String(s)
}

// ProcessText applies opts to s in order. Unknown options are ignored.
func ProcessText(s string, opts []TextOption) string {
	for _, o := range opts {
		switch o {
		case RemoveHTML:
			s = html.UnescapeString(stripPolicy.Sanitize(s))
		case RemoveURLs:
			s = urlPattern.ReplaceAllString(s, "")
		case RemoveSpecial:
			s = specialPattern.ReplaceAllString(s, "")
		case Lowercase:
			s = lowerString(s)
		case RemoveExtraSpaces:
			s = strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
		case RemoveStopwords:
			s = removeStopwords(s)
		case NormalizeUnicode:
			s = norm.NFKC.String(s)
		}
	}
	return s
}

// CleanText applies ProcessText to every value of column, which becomes a
// string column.
func CleanText(r result.Result, column string, opts []TextOption) result.Result {
	t, ok := tableWithColumn(r, "clean_text", column)
	if !ok {
		return r
	}
	for i := range t.Rows {
		v, present := t.Rows[i].Get(column)
		if !present {
			continue
		}
		t.Rows[i].Set(column, ProcessText(text(v), opts))
	}
	log.Info().Str("column", column).Int("options", len(opts)).Msg("cleaned text")
	return result.OfTable(t)
}

// removeStopwords drops common English function words. Punctuation around a
// word does not protect it, and the surviving tokens are joined by single
// spaces.
func removeStopwords(s string) string {
	words := strings.Fields(s)
	out := words[:0:0]
	for _, w := range words {
		core := strings.TrimFunc(w, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) })
		if _, stop := stopwords[lowerString(core)]; stop && core != "" {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

var stopwords = func() map[string]struct{} {
	m := map[string]struct{}{}
	for _, w := range strings.Fields(`i me my myself we our ours ourselves you your yours yourself
yourselves he him his himself she her hers herself it its itself they them their theirs
themselves what which who whom this that these those am is are was were be been being have
has had having do does did doing a an the and but if or because as until while of at by for
with about against between into through during before after above below to from up down in
out on off over under again further then once here there when where why how all any both
each few more most other some such no nor not only own same so than too very s t can will
just don should now d ll m o re ve y ain aren couldn didn doesn hadn hasn haven isn ma
mightn mustn needn shan shouldn wasn weren won wouldn`) {
		m[w] = struct{}{}
	}
	return m
}()
