package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

func TestGoogleClient_AppendValuesInsertsRows(t *testing.T) {
	var (
		gotPath  string
		gotQuery map[string]string
		gotBody  gsheets.ValueRange
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{
			"valueInputOption": r.URL.Query().Get("valueInputOption"),
			"insertDataOption": r.URL.Query().Get("insertDataOption"),
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	svc, err := gsheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	client := NewGoogleClient(svc)
	err = client.AppendValues(context.Background(), "sheet-1", "'Orders'!A5", [][]interface{}{{"Dr. Smith", "1.1"}})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-1/values/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, ":append"), gotPath)
	assert.Equal(t, "RAW", gotQuery["valueInputOption"])
	assert.Equal(t, "INSERT_ROWS", gotQuery["insertDataOption"])
	require.Len(t, gotBody.Values, 1)
	assert.Equal(t, []interface{}{"Dr. Smith", "1.1"}, gotBody.Values[0])
}
