package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invite-reviewer/internal/config"
	"invite-reviewer/internal/review"
)

type fakeReviewer struct {
	result review.Result
	drafts []string
}

func (f *fakeReviewer) Submit(_ context.Context, draft string) review.Result {
	f.drafts = append(f.drafts, draft)
	return f.result
}

func newTestServer(t *testing.T, reviewer Reviewer) *Server {
	t.Helper()
	srv, err := New(config.Default(), reviewer)
	require.NoError(t, err)
	return srv
}

func postDraft(t *testing.T, srv *Server, draft string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{draftField: {draft}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersEmptyForm(t *testing.T) {
	srv := newTestServer(t, &fakeReviewer{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="draft_invitation"`)
	assert.NotContains(t, body, `class="error"`)
	assert.NotContains(t, body, `class="response"`)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "form-action 'self'")
}

func TestSubmitRejectsBlankDraft(t *testing.T) {
	for _, draft := range []string{"", "   ", "\n\t"} {
		fr := &fakeReviewer{}
		srv := newTestServer(t, fr)

		rec := postDraft(t, srv, draft)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), msgMissingDraft)
		assert.Empty(t, fr.drafts, "no review call for %q", draft)
	}
}

func TestSubmitRendersSuggestion(t *testing.T) {
	fr := &fakeReviewer{result: review.Result{
		Kind:    review.KindOK,
		Display: "<p><strong>Better</strong> text</p>\n",
		Format:  review.FormatHTML,
		Raw:     "**Better** text",
	}}
	srv := newTestServer(t, fr)
	draft := "Come to our <assembly> & talk"

	rec := postDraft(t, srv, draft)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{draft}, fr.drafts)
	body := rec.Body.String()
	assert.Contains(t, body, "<p><strong>Better</strong> text</p>")
	assert.Contains(t, body, "**Better** text")
	assert.Contains(t, body, "Come to our &lt;assembly&gt; &amp; talk")
	assert.NotContains(t, body, `class="error"`)
}

func TestSubmitEscapesTextResponse(t *testing.T) {
	fr := &fakeReviewer{result: review.Result{
		Kind:    review.KindOK,
		Display: `{"content": "<b>"}`,
		Format:  review.FormatText,
	}}
	srv := newTestServer(t, fr)

	rec := postDraft(t, srv, "draft")

	body := rec.Body.String()
	assert.Contains(t, body, "<pre>{&#34;content&#34;: &#34;&lt;b&gt;&#34;}</pre>")
	assert.NotContains(t, body, "<details>")
}

func TestSubmitRendersErrorAndEchoesDraft(t *testing.T) {
	fr := &fakeReviewer{result: review.Result{
		Kind:    review.KindRateLimit,
		Display: "A 429 status code was received; we should back off a bit.",
	}}
	srv := newTestServer(t, fr)

	rec := postDraft(t, srv, "Dear resident")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "A 429 status code was received; we should back off a bit.")
	assert.Contains(t, body, ">Dear resident</textarea>")
	assert.NotContains(t, body, `class="response"`)
}

func TestResultPageEchoesDraftUnchanged(t *testing.T) {
	draft := "  spaced\r\nlines  "
	results := []review.Result{
		{Kind: review.KindOK, Display: "<p>x</p>", Format: review.FormatHTML, Raw: "x"},
		{Kind: review.KindConfiguration, Display: "no key"},
		{Kind: review.KindTransport, Display: "down"},
		{Kind: review.KindStatus, Display: "500"},
		{Kind: review.KindUnexpected, Display: "boom"},
	}
	for _, res := range results {
		page := resultPage(draft, res)
		assert.Equal(t, draft, page.Draft)
		if res.OK() {
			assert.Empty(t, page.Error)
			assert.True(t, page.HasResponse())
		} else {
			assert.Equal(t, res.Display, page.Error)
			assert.False(t, page.HasResponse())
			assert.Empty(t, page.RawText)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, &fakeReviewer{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownRouteIsPlainText(t *testing.T) {
	srv := newTestServer(t, &fakeReviewer{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not Found")
}

func TestNewRequiresReviewer(t *testing.T) {
	_, err := New(config.Default(), nil)
	assert.Error(t, err)
}

func TestSubmitAcceptsLargeDraft(t *testing.T) {
	fr := &fakeReviewer{result: review.Result{Kind: review.KindUnexpected, Display: "Error: boom"}}
	srv := newTestServer(t, fr)
	draft := strings.Repeat("a", 1<<20+10)

	rec := postDraft(t, srv, draft)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fr.drafts, 1)
	assert.Equal(t, draft, fr.drafts[0])
	body := rec.Body.String()
	assert.Contains(t, body, "Error: boom")
	assert.Contains(t, body, ">"+draft+"</textarea>")
}
