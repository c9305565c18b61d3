package scheduling

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xavierca1/presale-funnel/internal/form"
)

// SmallViewportWidth is the breakpoint below which detail panels are hidden.
const SmallViewportWidth = 768

const summarySeparator = " | "

// Theme colors are hex without the leading '#', the widget's own format.
type Theme struct {
	BackgroundColor string
	TextColor       string
	PrimaryColor    string
}

var DefaultTheme = Theme{BackgroundColor: "ffffff", TextColor: "1f2933", PrimaryColor: "0b6e4f"}

type Viewport struct {
	Width int
}

func (v Viewport) Small() bool {
	return v.Width > 0 && v.Width < SmallViewportWidth
}

type Prefill struct {
	Name          string            `json:"name,omitempty"`
	FirstName     string            `json:"firstName,omitempty"`
	LastName      string            `json:"lastName,omitempty"`
	Email         string            `json:"email,omitempty"`
	CustomAnswers map[string]string `json:"customAnswers,omitempty"`
}

type PageSettings struct {
	BackgroundColor        string `json:"backgroundColor,omitempty"`
	TextColor              string `json:"textColor,omitempty"`
	PrimaryColor           string `json:"primaryColor,omitempty"`
	HideEventTypeDetails   bool   `json:"hideEventTypeDetails,omitempty"`
	HideLandingPageDetails bool   `json:"hideLandingPageDetails,omitempty"`
}

// PopupOptions is the argument of Calendly.initPopupWidget.
type PopupOptions struct {
	URL          string       `json:"url"`
	Prefill      Prefill      `json:"prefill"`
	PageSettings PageSettings `json:"pageSettings"`
}

type Widget struct {
	URL    string
	Theme  Theme
	Assets AssetLoader
}

func NewWidget(url string, theme Theme) Widget {
	return Widget{URL: url, Theme: theme, Assets: DefaultAssetLoader()}
}

// Open returns the popup options for a validated record. When the widget assets are not in
// the document it returns false and nothing else: the caller shows its static thank-you
// state instead.
func (w Widget) Open(doc *html.Node, values form.Record, viewport Viewport) (PopupOptions, bool) {
	if !w.Assets.Loaded(doc) {
		return PopupOptions{}, false
	}
	return w.Options(values, viewport), true
}

// Options builds the popup options without checking the document.
func (w Widget) Options(values form.Record, viewport Viewport) PopupOptions {
	first := values[form.FieldFirstName]
	last := values[form.FieldLastName]

	answers := map[string]string{}
	if phone := values[form.FieldPhone]; phone != "" {
		answers["a1"] = phone
	}
	if summary := Summary(values); summary != "" {
		answers["a2"] = summary
	}
	if len(answers) == 0 {
		answers = nil
	}

	small := viewport.Small()
	return PopupOptions{
		URL: w.URL,
		Prefill: Prefill{
			Name:          strings.TrimSpace(first + " " + last),
			FirstName:     first,
			LastName:      last,
			Email:         values[form.FieldEmail],
			CustomAnswers: answers,
		},
		PageSettings: PageSettings{
			BackgroundColor:        w.Theme.BackgroundColor,
			TextColor:              w.Theme.TextColor,
			PrimaryColor:           w.Theme.PrimaryColor,
			HideEventTypeDetails:   small,
			HideLandingPageDetails: small,
		},
	}
}

// Summary joins the classification fields, e.g. "Buyer type: investor | Timeline: 0-3 months".
// Absent fields are left out.
func Summary(values form.Record) string {
	parts := make([]string, 0, 3)
	for _, f := range []struct{ label, key string }{
		{"Buyer type", form.FieldBuyerType},
		{"Timeline", form.FieldTimeline},
		{"Budget", form.FieldBudget},
	} {
		if v := strings.TrimSpace(values[f.key]); v != "" {
			parts = append(parts, f.label+": "+v)
		}
	}
	return strings.Join(parts, summarySeparator)
}

// Script renders the inline call that opens the popup. The JSON encoder escapes <, > and &
// so record values cannot terminate the script element.
func Script(opts PopupOptions) (string, error) {
	call, err := popupCall(opts)
	if err != nil {
		return "", err
	}
	return "<script>" + call + "</script>", nil
}

// Embed opens the popup inside doc by appending the init call to its <body>. It is a
// no-op returning false when the assets are missing or the document has no body.
func (w Widget) Embed(doc *html.Node, values form.Record, viewport Viewport) (bool, error) {
	opts, ok := w.Open(doc, values, viewport)
	if !ok {
		return false, nil
	}
	body := findFirst(doc, atom.Body)
	if body == nil {
		return false, nil
	}
	call, err := popupCall(opts)
	if err != nil {
		return false, err
	}
	script := &html.Node{Type: html.ElementNode, DataAtom: atom.Script, Data: "script"}
	script.AppendChild(&html.Node{Type: html.TextNode, Data: call})
	body.AppendChild(script)
	return true, nil
}

func popupCall(opts PopupOptions) (string, error) {
	raw, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("encode popup options: %w", err)
	}
	return fmt.Sprintf("Calendly.initPopupWidget(%s);", raw), nil
}
