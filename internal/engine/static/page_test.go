package static

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/law-makers/marketscan/internal/engine"
	"github.com/law-makers/marketscan/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchHTML = `<!DOCTYPE html>
<html>
<head><title>Market</title></head>
<body>
	<form action="/search" method="get">
		<input name="text" type="text" placeholder="Find">
		<input name="lr" type="hidden" value="213">
		<input name="promo" type="checkbox">
		<button type="submit">Go</button>
	</form>
</body>
</html>`

func resultsHTML(n int) string {
	var sb strings.Builder
	sb.WriteString("<html><body><main>")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, `<div class="snippet-card">
			<span class="card-title">Brake pads %d</span>
			<span class="card-price">%d 490 ₽</span>
			<a href="/product/%d">open</a>
		</div>`, i, i, i)
	}
	sb.WriteString("</main></body></html>")
	return sb.String()
}

func newMarketServer(t *testing.T, listings int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Write([]byte(searchHTML))
		case "/search":
			q := r.URL.Query()
			if q.Get("text") == "" || q.Get("lr") != "213" || q.Has("promo") {
				http.Error(w, "bad form", http.StatusBadRequest)
				return
			}
			w.Write([]byte(resultsHTML(listings)))
		default:
			http.NotFound(w, r)
		}
	}))
}

func testRetry() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = time.Millisecond
	return cfg
}

func TestPipeline_StaticEngineEndToEnd(t *testing.T) {
	server := newMarketServer(t, 5)
	defer server.Close()

	launcher := NewLauncher(server.Client(), "TestScraper/1.0", testRetry())
	p := engine.New(launcher, engine.Options{
		BaseURL:    server.URL,
		SubmitWait: time.Second,
	})

	ds, err := p.Run(context.Background(), "brake pads")
	require.NoError(t, err)
	require.Equal(t, 5, ds.Len())

	for i, rec := range ds.Records() {
		assert.Equal(t, fmt.Sprintf("Brake pads %d", i+1), rec.Name)
		assert.Equal(t, fmt.Sprintf("%d 490 ₽", i+1), rec.Price)
		assert.Equal(t, fmt.Sprintf("%s/product/%d", server.URL, i+1), rec.URL)
	}
}

func TestPipeline_StaticEngineNoSearchInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>maintenance</p></body></html>"))
	}))
	defer server.Close()

	p := engine.New(NewLauncher(server.Client(), "TestScraper/1.0", testRetry()), engine.Options{BaseURL: server.URL})
	_, err := p.Run(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrNotFound))
}

func TestPage_ElementsGoStaleAfterNavigation(t *testing.T) {
	server := newMarketServer(t, 1)
	defer server.Close()

	pg, err := NewLauncher(server.Client(), "", testRetry()).Launch(context.Background())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, pg.Navigate(ctx, server.URL))
	inputs, err := pg.Locate(ctx, `input[name='text']`)
	require.NoError(t, err)
	require.Len(t, inputs, 1)

	require.NoError(t, inputs[0].Fill(ctx, "pads"))
	before := pg.(engine.Versioned).Generation()
	require.NoError(t, inputs[0].Press(ctx, engine.KeyEnter))
	assert.Equal(t, before+1, pg.(engine.Versioned).Generation())

	_, err = inputs[0].Text(ctx)
	assert.ErrorIs(t, err, engine.ErrStale)

	cards, err := pg.Locate(ctx, `[class*="snippet"]`)
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}

func TestPage_LocateZeroMatchesIsNotAnError(t *testing.T) {
	pg, err := FromHTML("<html><body><div>nothing</div></body></html>", "https://market.yandex.ru")
	require.NoError(t, err)

	elems, err := pg.Locate(context.Background(), `[data-autotest-id="product-snippet"]`)
	require.NoError(t, err)
	assert.Empty(t, elems)
}

func TestPage_PressOutsideForm(t *testing.T) {
	pg, err := FromHTML(`<html><body><input name="text"></body></html>`, "https://market.yandex.ru")
	require.NoError(t, err)
	ctx := context.Background()

	inputs, _ := pg.Locate(ctx, "input")
	require.Len(t, inputs, 1)
	assert.ErrorIs(t, inputs[0].Press(ctx, engine.KeyEnter), ErrNoForm)
	assert.NoError(t, inputs[0].Press(ctx, "Tab"))
}

func TestPage_OfflineCannotNavigate(t *testing.T) {
	pg, err := FromHTML(searchHTML, "https://market.yandex.ru")
	require.NoError(t, err)
	assert.ErrorIs(t, pg.Navigate(context.Background(), "https://market.yandex.ru"), ErrOffline)
}

func TestPage_CloseIsIdempotent(t *testing.T) {
	pg, err := FromHTML(searchHTML, "https://market.yandex.ru")
	require.NoError(t, err)

	assert.NoError(t, pg.Close())
	assert.NoError(t, pg.Close())
	_, err = pg.Locate(context.Background(), "input")
	assert.ErrorIs(t, err, engine.ErrClosed)
}

func TestPage_NavigateRetriesServerErrors(t *testing.T) {
	transport := httpmock.NewMockTransport()
	calls := 0
	transport.RegisterResponder(http.MethodGet, "https://market.example/",
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return httpmock.NewStringResponse(http.StatusServiceUnavailable, "busy"), nil
			}
			assert.Equal(t, "TestScraper/1.0", req.Header.Get("User-Agent"))
			assert.Equal(t, "en-US", req.Header.Get("Accept-Language"))
			return httpmock.NewStringResponse(http.StatusOK, searchHTML), nil
		})

	client := &http.Client{Transport: transport}
	launcher := NewLauncher(client, "TestScraper/1.0", testRetry()).
		WithHeaders(map[string]string{"Accept-Language": "en-US"})
	pg, err := launcher.Launch(context.Background())
	require.NoError(t, err)

	require.NoError(t, pg.Navigate(context.Background(), "https://market.example/"))
	assert.Equal(t, 2, calls)

	inputs, err := pg.Locate(context.Background(), `input[name='text']`)
	require.NoError(t, err)
	assert.Len(t, inputs, 1)
}

func TestPage_NavigateDoesNotRetryNotFound(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://market.example/missing",
		httpmock.NewStringResponder(http.StatusNotFound, "gone"))

	pg, _ := NewLauncher(&http.Client{Transport: transport}, "", testRetry()).Launch(context.Background())
	err := pg.Navigate(context.Background(), "https://market.example/missing")

	var se *retry.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestFormValues(t *testing.T) {
	pg, err := FromHTML(`<form>
		<input name="text" value="pads">
		<input name="on" type="checkbox" checked>
		<input name="off" type="checkbox">
		<input name="x" disabled value="1">
		<textarea name="note">hi</textarea>
		<select name="sort"><option value="a">A</option><option value="b" selected>B</option></select>
		<input type="submit" name="go" value="Go">
	</form>`, "https://market.yandex.ru")
	require.NoError(t, err)

	v := formValues(pg.doc.Find("form"))
	assert.Equal(t, "pads", v.Get("text"))
	assert.Equal(t, "on", v.Get("on"))
	assert.False(t, v.Has("off"))
	assert.False(t, v.Has("x"))
	assert.False(t, v.Has("go"))
	assert.Equal(t, "hi", v.Get("note"))
	assert.Equal(t, "b", v.Get("sort"))
}
