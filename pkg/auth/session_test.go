package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"vkarchive/pkg/config"
	"vkarchive/pkg/logger"
)

func TestSessionHandlesUseTheirTokens(t *testing.T) {
	seen := make(chan [2]string, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- [2]string{r.URL.Query().Get("access_token"), r.Header.Get("User-Agent")}
		w.Write([]byte(`{"response":[]}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.VK.BaseURL = server.URL

	account := &Account{Login: "someone", AccessToken: "listing", AudioToken: "audio", UserAgent: "Agent/2"}
	session := NewSession(account, cfg, nil, logger.NewNopLogger())

	if _, err := session.Handle().UsersGet(context.Background()); err != nil {
		t.Fatalf("listing call failed: %v", err)
	}
	if got := <-seen; got[0] != "listing" || got[1] != "Agent/2" {
		t.Errorf("listing handle sent %v", got)
	}

	if _, err := session.ArchiveHandle().AudioGetByID(context.Background(), "1_2"); err != nil {
		t.Fatalf("archive call failed: %v", err)
	}
	if got := <-seen; got[0] != "audio" {
		t.Errorf("archive handle sent token %q", got[0])
	}

	if cfg.VK.UserAgent == "Agent/2" {
		t.Error("session must not modify the shared config")
	}
}

func TestAccountFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	if AccountFromConfig(cfg) != nil {
		t.Error("Expected no account without a token")
	}

	cfg.VK.AccessToken = "token"
	account := AccountFromConfig(cfg)
	if account == nil || account.ArchivingToken() != "token" {
		t.Errorf("Expected archiving token to fall back to the access token, got %+v", account)
	}
}
