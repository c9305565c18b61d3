package scheduling

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/xavierca1/presale-funnel/internal/form"
)

const bookingURL = "https://calendly.com/presale-advisory/consultation"

func janeRecord() form.Record {
	return form.Record{
		form.FieldFirstName: "Jane",
		form.FieldLastName:  "Doe",
		form.FieldEmail:     "jane@example.com",
		form.FieldPhone:     "6045551234",
		form.FieldBuyerType: "investor",
		form.FieldTimeline:  "0-3 months",
		form.FieldBudget:    "$600k-$800k",
	}
}

func TestOpenBuildsPrefill(t *testing.T) {
	w := NewWidget(bookingURL, DefaultTheme)
	doc := parse(t, `<html><head></head></html>`)
	w.Assets.Inject(doc)

	got, ok := w.Open(doc, janeRecord(), Viewport{Width: 1280})

	require.True(t, ok)
	want := PopupOptions{
		URL: bookingURL,
		Prefill: Prefill{
			Name:      "Jane Doe",
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@example.com",
			CustomAnswers: map[string]string{
				"a1": "6045551234",
				"a2": "Buyer type: investor | Timeline: 0-3 months | Budget: $600k-$800k",
			},
		},
		PageSettings: PageSettings{
			BackgroundColor: DefaultTheme.BackgroundColor,
			TextColor:       DefaultTheme.TextColor,
			PrimaryColor:    DefaultTheme.PrimaryColor,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Open() mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenSmallViewportHidesDetails(t *testing.T) {
	w := NewWidget(bookingURL, DefaultTheme)
	doc := parse(t, `<html><head></head></html>`)
	w.Assets.Inject(doc)

	got, ok := w.Open(doc, janeRecord(), Viewport{Width: 390})

	require.True(t, ok)
	assert.True(t, got.PageSettings.HideEventTypeDetails)
	assert.True(t, got.PageSettings.HideLandingPageDetails)
}

func TestOpenWithoutAssetsIsNoop(t *testing.T) {
	w := NewWidget(bookingURL, DefaultTheme)

	got, ok := w.Open(parse(t, `<html><head></head></html>`), janeRecord(), Viewport{})

	assert.False(t, ok)
	assert.Equal(t, PopupOptions{}, got)
}

func TestSummarySkipsAbsentFields(t *testing.T) {
	assert.Equal(t, "Buyer type: other", Summary(form.Record{form.FieldBuyerType: "other", form.FieldBudget: "  "}))
	assert.Equal(t, "", Summary(form.Record{}))
}

func TestScriptEscapesMarkup(t *testing.T) {
	opts := NewWidget(bookingURL, DefaultTheme).Options(form.Record{
		form.FieldFirstName: "</script><script>alert(1)",
		form.FieldEmail:     "jane@example.com",
	}, Viewport{})

	script, err := Script(opts)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(script, "<script>Calendly.initPopupWidget({"))
	assert.Equal(t, 1, strings.Count(script, "</script>"))
	assert.Contains(t, script, `"url":"`+bookingURL+`"`)
}

func TestEmbedAppendsPopupCall(t *testing.T) {
	w := NewWidget(bookingURL, DefaultTheme)
	doc := parse(t, `<html><head></head><body><h1>Thanks</h1></body></html>`)
	w.Assets.Inject(doc)

	ok, err := w.Embed(doc, janeRecord(), Viewport{Width: 1280})
	require.NoError(t, err)
	require.True(t, ok)

	var out strings.Builder
	require.NoError(t, html.Render(&out, doc))
	assert.Contains(t, out.String(), `<script>Calendly.initPopupWidget({"url":"`+bookingURL+`"`)
}

func TestEmbedWithoutAssetsLeavesPageAlone(t *testing.T) {
	w := NewWidget(bookingURL, DefaultTheme)
	doc := parse(t, `<html><head></head><body><h1>Thanks</h1></body></html>`)

	var before strings.Builder
	require.NoError(t, html.Render(&before, doc))

	ok, err := w.Embed(doc, janeRecord(), Viewport{})
	require.NoError(t, err)
	assert.False(t, ok)

	var after strings.Builder
	require.NoError(t, html.Render(&after, doc))
	assert.Equal(t, before.String(), after.String())
}
