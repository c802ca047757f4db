package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-purchase-api/internal/repository"
	"bookstore-purchase-api/internal/service"
)

const testAdminKey = "test-admin-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := repository.NewFileLedgerRepository(t.TempDir())
	require.NoError(t, err)
	return NewServer(
		service.NewPurchaseService(repo),
		service.NewRelayService(5*time.Second),
		testAdminKey,
	)
}

func doJSON(s *Server, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var parsed map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &parsed)
	return rec, parsed
}

func submitPurchase(t *testing.T, s *Server, itemID, txID, price string) string {
	t.Helper()
	rec, body := doJSON(s, http.MethodPost, "/api/request-purchase",
		fmt.Sprintf(`{"item_id":%q,"transaction_id":%q,"price":%s}`, itemID, txID, price), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, true, body["success"])
	code, _ := body["confirmation_code"].(string)
	require.NotEmpty(t, code)
	return code
}

func TestHomeEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec, body := doJSON(s, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, "Book Purchase API", body["service"])
}

func TestRequestPurchaseContract(t *testing.T) {
	s := newTestServer(t)

	code := submitPurchase(t, s, "book-1", "tx-1", "9.99")

	rec, body := doJSON(s, http.MethodPost, "/api/request-purchase",
		`{"item_id":"book-1","transaction_id":"tx-1","price":9.99}`, nil)
	// Same transaction id while still pending: accepted again.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, code, body["confirmation_code"])

	rec, body = doJSON(s, http.MethodPost, "/api/request-purchase",
		`{"item_id":"","transaction_id":"tx-2","price":1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body, "error")
}

func TestVerifyPurchaseContract(t *testing.T) {
	s := newTestServer(t)
	code := submitPurchase(t, s, "book-1", "abc", "9.99")

	// Wrong key
	rec, body := doJSON(s, http.MethodPost, "/api/verify-purchase",
		fmt.Sprintf(`{"confirmation_code":%q,"admin_key":"wrong"}`, code), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", body["error"])

	// Missing code
	rec, _ = doJSON(s, http.MethodPost, "/api/verify-purchase",
		fmt.Sprintf(`{"admin_key":%q}`, testAdminKey), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Success
	rec, body = doJSON(s, http.MethodPost, "/api/verify-purchase",
		fmt.Sprintf(`{"confirmation_code":%q,"admin_key":%q}`, code, testAdminKey), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "book-1", body["item_id"])
	assert.Equal(t, "abc", body["transaction_id"])

	// Second confirm of the same code
	rec, _ = doJSON(s, http.MethodPost, "/api/verify-purchase",
		fmt.Sprintf(`{"confirmation_code":%q,"admin_key":%q}`, code, testAdminKey), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Duplicate transaction id now refused at submission
	rec, _ = doJSON(s, http.MethodPost, "/api/request-purchase",
		`{"item_id":"book-2","transaction_id":"abc","price":1}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRejectPurchaseContract(t *testing.T) {
	s := newTestServer(t)
	code := submitPurchase(t, s, "book-1", "tx-1", "9.99")

	// Unknown code
	rec, _ := doJSON(s, http.MethodPost, "/api/reject-purchase",
		fmt.Sprintf(`{"confirmation_code":"NOPE0000","admin_key":%q}`, testAdminKey), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Bad key leaves the ledger unchanged
	rec, _ = doJSON(s, http.MethodPost, "/api/reject-purchase",
		fmt.Sprintf(`{"confirmation_code":%q,"admin_key":"wrong"}`, code), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := doJSON(s, http.MethodGet, "/api/admin/pending", "",
		map[string]string{"X-Admin-Key": testAdminKey})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["purchases"], 1)

	// Success deletes the record
	rec, body = doJSON(s, http.MethodPost, "/api/reject-purchase",
		fmt.Sprintf(`{"confirmation_code":%q,"admin_key":%q}`, code, testAdminKey), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, body = doJSON(s, http.MethodGet, "/api/admin/pending", "",
		map[string]string{"X-Admin-Key": testAdminKey})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["purchases"])
}

func TestCheckPurchaseContract(t *testing.T) {
	s := newTestServer(t)
	code := submitPurchase(t, s, "book-1", "tx-1", "9.99")

	rec, _ := doJSON(s, http.MethodPost, "/api/check-purchase",
		`{"item_id":"book-1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := doJSON(s, http.MethodPost, "/api/check-purchase",
		`{"item_id":"book-1","transaction_id":"tx-1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["purchased"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, code, body["confirmation_code"])

	doJSON(s, http.MethodPost, "/api/verify-purchase",
		fmt.Sprintf(`{"confirmation_code":%q,"admin_key":%q}`, code, testAdminKey), nil)

	rec, body = doJSON(s, http.MethodPost, "/api/check-purchase",
		`{"item_id":"book-1","transaction_id":"tx-1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["purchased"])
	assert.Contains(t, body, "confirmed_at")
}

func TestPollApprovalContract(t *testing.T) {
	s := newTestServer(t)
	code := submitPurchase(t, s, "book-1", "tx-1", "9.99")

	// Missing params still answer 200.
	rec, body := doJSON(s, http.MethodGet, "/api/poll-approval", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["approved"])

	rec, body = doJSON(s, http.MethodGet,
		"/api/poll-approval?confirmation_code="+code+"&item_id=book-1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["approved"])
	assert.Equal(t, "pending", body["status"])

	doJSON(s, http.MethodPost, "/api/verify-purchase",
		fmt.Sprintf(`{"confirmation_code":%q,"admin_key":%q}`, code, testAdminKey), nil)

	rec, body = doJSON(s, http.MethodGet,
		"/api/poll-approval?confirmation_code="+code+"&item_id=book-1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["approved"])

	rec, body = doJSON(s, http.MethodGet,
		"/api/poll-approval?confirmation_code=NEVER123&item_id=book-1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["approved"])
	assert.Equal(t, "not_found", body["status"])
}

func TestTrackDownloadContract(t *testing.T) {
	s := newTestServer(t)

	rec, _ := doJSON(s, http.MethodPost, "/api/track-download", `{"is_free":true}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := doJSON(s, http.MethodPost, "/api/track-download",
		`{"item_id":"book-1","is_free":true}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	rec, body = doJSON(s, http.MethodGet, "/api/admin/stats", "",
		map[string]string{"X-Admin-Key": testAdminKey})
	require.Equal(t, http.StatusOK, rec.Code)
	books := body["books"].(map[string]any)
	entry := books["book-1"].(map[string]any)
	assert.EqualValues(t, 1, entry["total_downloads"])
	assert.EqualValues(t, 1, entry["free_downloads"])
	assert.EqualValues(t, 0, entry["paid_downloads"])
}

func TestAdminListingsRequireKey(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/admin/stats",
		"/api/admin/pending",
		"/api/admin/recent-purchases",
	} {
		rec, body := doJSON(s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "Unauthorized", body["error"], path)

		rec, _ = doJSON(s, http.MethodGet, path, "",
			map[string]string{"X-Admin-Key": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)

		rec, _ = doJSON(s, http.MethodGet, path, "",
			map[string]string{"X-Admin-Key": testAdminKey})
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRecentPurchasesListing(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 3; i++ {
		code := submitPurchase(t, s, "book-1", fmt.Sprintf("tx-%d", i), "1.50")
		rec, _ := doJSON(s, http.MethodPost, "/api/verify-purchase",
			fmt.Sprintf(`{"confirmation_code":%q,"admin_key":%q}`, code, testAdminKey), nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, body := doJSON(s, http.MethodGet, "/api/admin/recent-purchases", "",
		map[string]string{"X-Admin-Key": testAdminKey})
	require.Equal(t, http.StatusOK, rec.Code)

	purchases := body["purchases"].([]any)
	require.Len(t, purchases, 3)
	newest := purchases[0].(map[string]any)
	assert.Equal(t, "tx-2", newest["transaction_id"])
}

func TestProxyRequiresURL(t *testing.T) {
	s := newTestServer(t)

	rec, body := doJSON(s, http.MethodGet, "/proxy", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing url", body["error"])
}

func TestProxyStreamsUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("file contents"))
	}))
	defer upstream.Close()

	s := newTestServer(t)
	rec, _ := doJSON(s, http.MethodGet, "/proxy?url="+upstream.URL, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "file contents", rec.Body.String())
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
}

func TestProxySurfacesUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer upstream.Close()

	s := newTestServer(t)
	rec, body := doJSON(s, http.MethodGet, "/proxy?url="+upstream.URL, "", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Upstream returned 404", body["error"])
	assert.Equal(t, upstream.URL, body["url"])
}
