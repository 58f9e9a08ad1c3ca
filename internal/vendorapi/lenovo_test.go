package vendorapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/mmeshcher/selfdispatch-system/internal/config"
	"github.com/mmeshcher/selfdispatch-system/internal/model"
)

func newLenovoTestClient(t *testing.T, baseURL string) *HTTPClient {
	t.Helper()
	return NewLenovoClient(&config.Config{LenovoBaseURL: baseURL}, zap.NewNop())
}

func TestLenovoCreateClaim_ZeroImagesAccepted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"claim_id": "LNV-100",
			"status":   "Open",
		})
	}))
	defer ts.Close()

	client := newLenovoTestClient(t, ts.URL)

	claim, err := client.CreateClaim(context.Background(), &model.CreateClaimRequest{
		ServiceTag:  "PF0ABCDE",
		Description: "fan noise",
	})
	if err != nil {
		t.Fatalf("CreateClaim error: %v", err)
	}
	if claim.ClaimID != "LNV-100" {
		t.Fatalf("ClaimID = %q, want LNV-100", claim.ClaimID)
	}
	if claim.Vendor != model.VendorLenovo {
		t.Fatalf("Vendor = %s, want %s", claim.Vendor, model.VendorLenovo)
	}
}

func TestLenovoCreateClaim_TooManyImages(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer ts.Close()

	client := newLenovoTestClient(t, ts.URL)

	req := &model.CreateClaimRequest{
		ServiceTag:  "PF0ABCDE",
		Description: "fan noise",
		Attachments: attachments(lenovoMaxAttachments + 1),
	}

	_, err := client.CreateClaim(context.Background(), req)
	if !IsKind(err, KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if hits != 0 {
		t.Fatalf("server was hit %d times, want 0", hits)
	}
}

func TestLenovoVendorType(t *testing.T) {
	client := newLenovoTestClient(t, "http://localhost")
	if got := client.VendorType(); got != model.VendorLenovo {
		t.Fatalf("VendorType = %s, want %s", got, model.VendorLenovo)
	}
}
