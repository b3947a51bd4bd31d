package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-aggregator/models"
	"catalog-aggregator/scraper"
)

const slimList = `<html><body>
<div class="catalog-list-slim">
  <a class="catalog-list-slim__names" href="/a">Hoka  Clifton 9</a>
  <div class="catalog-list-slim__facts__column">
    <div class="catalog-list-slim__shoes-fact__values"><span> 9.1oz </span></div>
    <div class="catalog-list-slim__shoes-fact__values corescore__values">
      <div class="corescore"><div class="corescore__score score_green">91</div></div>
    </div>
  </div>
  <a class="catalog-list-slim__names" href="/b">Asics Novablast 4</a>
  <div class="catalog-list-slim__facts__column">
    <div class="catalog-list-slim__shoes-fact__values"><span>10.2oz</span></div>
    <div class="catalog-list-slim__shoes-fact__values corescore__values">
      <div class="corescore"><div class="corescore__score score_green">88</div></div>
    </div>
  </div>
</div>
<label><input type="checkbox" id="fact-weight"><span class="checkbox"></span></label>
</body></html>`

func TestExtractTextWithCatalogSelectors(t *testing.T) {
	sel := scraper.DefaultSelectors()

	tests := []struct {
		name string
		loc  scraper.Locator
		want []string
	}{
		{"names", sel.Names, []string{"Hoka Clifton 9", "Asics Novablast 4"}},
		{"values", sel.Values, []string{"9.1oz", "10.2oz"}},
		{"score", sel.ScoreValues, []string{"91", "88"}},
		{"missing", sel.EditColumns, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractText(slimList, string(tt.loc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTextCheckboxSibling(t *testing.T) {
	sel := scraper.DefaultSelectors()
	loc := scraper.Locator("input[type='checkbox'][id='fact-weight'] + span.checkbox")
	assert.Equal(t, loc, sel.CheckboxFor(models.ColumnDescriptor{ID: "fact-weight"}))

	got, err := extractText(slimList, string(loc))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFindChromePrefersEnv(t *testing.T) {
	t.Setenv("CHROME_BIN", "/custom/chrome")
	assert.Equal(t, "/custom/chrome", FindChrome())
}

func TestHTTPProberStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "9" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	p := NewHTTPProber(5*time.Second, "")
	ctx := context.Background()

	status, err := p.Status(ctx, srv.URL+"/catalog/running-shoes?page=1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	status, err = p.Status(ctx, srv.URL+"/catalog/running-shoes?page=9")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHTTPProberUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPProber(time.Second, "").Status(context.Background(), url)
	assert.Error(t, err)
}
