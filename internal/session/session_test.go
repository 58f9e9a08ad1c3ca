package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmeshcher/selfdispatch-system/internal/model"
)

type stubClient struct {
	vendor model.VendorType

	authErr   error
	authCalls int

	claims     []model.Claim
	listErr    error
	listCalls  int
	lastFilter string

	warranty    *model.WarrantyInfo
	warrantyErr error

	created   *model.Claim
	createErr error
}

func (s *stubClient) Authenticate(ctx context.Context, username, password string) error {
	s.authCalls++
	return s.authErr
}

func (s *stubClient) ListClaims(ctx context.Context, filterUser string) ([]model.Claim, error) {
	s.listCalls++
	s.lastFilter = filterUser
	return s.claims, s.listErr
}

func (s *stubClient) CheckWarranty(ctx context.Context, serviceTag string) (*model.WarrantyInfo, error) {
	return s.warranty, s.warrantyErr
}

func (s *stubClient) CreateClaim(ctx context.Context, req *model.CreateClaimRequest) (*model.Claim, error) {
	return s.created, s.createErr
}

func (s *stubClient) VendorType() model.VendorType {
	return s.vendor
}

func newLoggedInSession(t *testing.T, client *stubClient) *Session {
	t.Helper()

	if client.vendor == "" {
		client.vendor = model.VendorDell
	}

	sess := New(client, nil)
	if err := sess.Login(context.Background(), "tech1", "pass"); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	return sess
}

func TestLogin_EmptyUsernameRejectedLocally(t *testing.T) {
	client := &stubClient{vendor: model.VendorDell}
	sess := New(client, nil)

	err := sess.Login(context.Background(), "  ", "pass")
	if !errors.Is(err, ErrEmptyCredentials) {
		t.Fatalf("expected ErrEmptyCredentials, got %v", err)
	}
	if client.authCalls != 0 {
		t.Fatalf("Authenticate called %d times, want 0", client.authCalls)
	}
	if sess.State() != StateUnauthenticated {
		t.Fatalf("state = %s, want %s", sess.State(), StateUnauthenticated)
	}
}

func TestLogin_SuccessDoesNotRetainPassword(t *testing.T) {
	client := &stubClient{vendor: model.VendorLenovo}
	sess := New(client, nil)

	if err := sess.Login(context.Background(), "tech1", "pass"); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if sess.State() != StateIdle {
		t.Fatalf("state = %s, want %s", sess.State(), StateIdle)
	}

	creds := sess.Credentials()
	if creds == nil || creds.Username != "tech1" || creds.Vendor != model.VendorLenovo {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func TestLogin_FailureKeepsUnauthenticated(t *testing.T) {
	client := &stubClient{vendor: model.VendorDell, authErr: errors.New("boom")}
	sess := New(client, nil)

	if err := sess.Login(context.Background(), "tech1", "pass"); err == nil {
		t.Fatalf("expected error")
	}
	if sess.State() != StateUnauthenticated {
		t.Fatalf("state = %s, want %s", sess.State(), StateUnauthenticated)
	}
	if sess.Credentials() != nil {
		t.Fatalf("credentials must not be set after failed login")
	}
}

func TestRefreshClaims_RequiresAuth(t *testing.T) {
	sess := New(&stubClient{vendor: model.VendorDell}, nil)

	_, err := sess.RefreshClaims(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestRefreshClaims_ReplacesListWholesale(t *testing.T) {
	client := &stubClient{
		claims: []model.Claim{{ClaimID: "SR1"}, {ClaimID: "SR2"}},
	}
	sess := newLoggedInSession(t, client)

	if _, err := sess.RefreshClaims(context.Background()); err != nil {
		t.Fatalf("RefreshClaims error: %v", err)
	}
	if got := sess.Claims(); len(got) != 2 {
		t.Fatalf("claims = %d, want 2", len(got))
	}

	client.claims = []model.Claim{{ClaimID: "SR3"}}

	if _, err := sess.RefreshClaims(context.Background()); err != nil {
		t.Fatalf("RefreshClaims error: %v", err)
	}
	got := sess.Claims()
	if len(got) != 1 || got[0].ClaimID != "SR3" {
		t.Fatalf("old list not replaced: %+v", got)
	}
}

func TestRefreshClaims_ErrorState(t *testing.T) {
	client := &stubClient{listErr: errors.New("boom")}
	sess := newLoggedInSession(t, client)

	if _, err := sess.RefreshClaims(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if sess.State() != StateError {
		t.Fatalf("state = %s, want %s", sess.State(), StateError)
	}
	if sess.LastError() == nil {
		t.Fatalf("LastError must be set")
	}
}

func TestApplyAndClearFilter(t *testing.T) {
	client := &stubClient{}
	sess := newLoggedInSession(t, client)

	if _, err := sess.ApplyFilter(context.Background(), "tech2"); err != nil {
		t.Fatalf("ApplyFilter error: %v", err)
	}
	if client.lastFilter != "tech2" {
		t.Fatalf("filter passed = %q, want tech2", client.lastFilter)
	}
	if sess.Filter() != "tech2" {
		t.Fatalf("Filter() = %q, want tech2", sess.Filter())
	}

	if _, err := sess.ClearFilter(context.Background()); err != nil {
		t.Fatalf("ClearFilter error: %v", err)
	}
	if client.lastFilter != "" {
		t.Fatalf("filter passed = %q, want empty", client.lastFilter)
	}
}

func TestCreateClaim_TriggersRefresh(t *testing.T) {
	client := &stubClient{
		created: &model.Claim{ClaimID: "SR9", Status: "Open"},
		claims:  []model.Claim{{ClaimID: "SR9"}},
	}
	sess := newLoggedInSession(t, client)

	listCallsBefore := client.listCalls

	claim, err := sess.CreateClaim(context.Background(), &model.CreateClaimRequest{
		ServiceTag:  "ABC1234",
		Description: "broken",
	})
	if err != nil {
		t.Fatalf("CreateClaim error: %v", err)
	}
	if claim.ClaimID != "SR9" {
		t.Fatalf("ClaimID = %q, want SR9", claim.ClaimID)
	}
	if client.listCalls != listCallsBefore+1 {
		t.Fatalf("list not refreshed after create")
	}
	if got := sess.Claims(); len(got) != 1 || got[0].ClaimID != "SR9" {
		t.Fatalf("claims not updated: %+v", got)
	}
}

func TestCreateClaim_ErrorDoesNotRefresh(t *testing.T) {
	client := &stubClient{createErr: errors.New("rejected")}
	sess := newLoggedInSession(t, client)

	listCallsBefore := client.listCalls

	if _, err := sess.CreateClaim(context.Background(), &model.CreateClaimRequest{}); err == nil {
		t.Fatalf("expected error")
	}
	if client.listCalls != listCallsBefore {
		t.Fatalf("list must not be refreshed after failed create")
	}
	if sess.State() != StateError {
		t.Fatalf("state = %s, want %s", sess.State(), StateError)
	}
}

type blockingClient struct {
	stubClient
	started chan struct{}
	release chan struct{}
}

func (b *blockingClient) ListClaims(ctx context.Context, filterUser string) ([]model.Claim, error) {
	close(b.started)
	<-b.release
	return nil, nil
}

func TestSingleFlight(t *testing.T) {
	client := &blockingClient{
		stubClient: stubClient{vendor: model.VendorDell},
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}

	sess := New(client, nil)
	if err := sess.Login(context.Background(), "tech1", "pass"); err != nil {
		t.Fatalf("Login error: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := sess.RefreshClaims(context.Background())
		done <- err
	}()

	select {
	case <-client.started:
	case <-time.After(time.Second):
		t.Fatalf("refresh did not start")
	}

	if _, err := sess.CheckWarranty(context.Background(), "ABC1234"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(client.release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RefreshClaims error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("refresh did not finish")
	}
}

func TestLogout(t *testing.T) {
	client := &stubClient{claims: []model.Claim{{ClaimID: "SR1"}}}
	sess := newLoggedInSession(t, client)

	if _, err := sess.RefreshClaims(context.Background()); err != nil {
		t.Fatalf("RefreshClaims error: %v", err)
	}

	sess.Logout()

	if sess.State() != StateUnauthenticated {
		t.Fatalf("state = %s, want %s", sess.State(), StateUnauthenticated)
	}
	if sess.Credentials() != nil {
		t.Fatalf("credentials must be discarded on logout")
	}
	if len(sess.Claims()) != 0 {
		t.Fatalf("claims must be discarded on logout")
	}

	if err := sess.Login(context.Background(), "tech1", "pass"); !errors.Is(err, ErrNoClient) {
		t.Fatalf("expected ErrNoClient after logout, got %v", err)
	}
}
