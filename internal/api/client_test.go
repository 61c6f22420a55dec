package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"numis-cli/internal/model"

	"github.com/bitmark-inc/logger"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "numis-api-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	logConfig := logger.Configuration{
		Directory: dir,
		File:      "api-test.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "error",
		},
	}
	if err := logger.Initialise(logConfig); err != nil {
		panic(fmt.Sprintf("logger initialization failed: %s", err))
	}
	os.Exit(m.Run())
}

func TestAuthHeaderAndErrorBody(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"grade must be one of the Sheldon grades"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token")
	_, err := c.GetCoin(context.Background(), 7)
	if err == nil {
		t.Fatalf("expected error from 422 response")
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}

	se, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if se.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", se.Status)
	}
	if got := BestMessage(err); got != "grade must be one of the Sheldon grades" {
		t.Fatalf("BestMessage: expected server message, got %q", got)
	}
}

func TestBestMessageFallbacks(t *testing.T) {
	if got := BestMessage(nil); got != "" {
		t.Fatalf("BestMessage(nil): expected empty, got %q", got)
	}
	// Server error without a message body still renders something usable.
	if got := BestMessage(&StatusError{Status: 500}); got == "" {
		t.Fatalf("BestMessage: expected non-empty fallback for bare StatusError")
	}
	if got := BestMessage(fmt.Errorf("connection refused")); got != "connection refused" {
		t.Fatalf("BestMessage: expected transport text, got %q", got)
	}
}

func TestReviewActionPaths(t *testing.T) {
	cases := []struct {
		tab    model.ReviewTab
		action string
		want   string
	}{
		{model.TabVocabulary, "approve", "/api/v2/vocab/review/42/approve"},
		{model.TabVocabulary, "reject", "/api/v2/vocab/review/42/reject"},
		{model.TabAI, "approve", "/api/v2/review/42/approve"},
		{model.TabImages, "reject", "/api/v2/review/42/reject"},
	}
	for _, tc := range cases {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))
		c := New(srv.URL, "")
		var err error
		if tc.action == "approve" {
			err = c.ApproveItem(context.Background(), tc.tab, 42)
		} else {
			err = c.RejectItem(context.Background(), tc.tab, 42)
		}
		srv.Close()
		if err != nil {
			t.Fatalf("%s %s: unexpected error: %v", tc.tab, tc.action, err)
		}
		if gotPath != tc.want {
			t.Fatalf("%s %s: expected path %q, got %q", tc.tab, tc.action, tc.want, gotPath)
		}
	}
}

func TestListReviewFillsTab(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/vocab/review" {
			t.Errorf("expected vocab review path, got %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":1,"suggested_value":"denarius","confidence":0.93}]`)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	items, err := c.ListReview(context.Background(), model.TabVocabulary)
	if err != nil {
		t.Fatalf("ListReview: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Tab != model.TabVocabulary {
		t.Fatalf("expected tab filled in, got %q", items[0].Tab)
	}
}

func TestBulkResolveBody(t *testing.T) {
	var gotPath string
	var gotBody struct {
		IDs        []int64 `json:"ids"`
		Resolution string  `json:"resolution"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	err := c.BulkResolveDiscrepancies(context.Background(), 17, []int64{3, 5, 8}, ResolutionAccepted)
	if err != nil {
		t.Fatalf("BulkResolveDiscrepancies: %v", err)
	}
	if gotPath != "/api/v2/audit/17/discrepancies/bulk-resolve" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(gotBody.IDs) != 3 || gotBody.Resolution != ResolutionAccepted {
		t.Fatalf("unexpected body: ids=%v resolution=%q", gotBody.IDs, gotBody.Resolution)
	}
}
