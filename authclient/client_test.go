package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"codereviewhub/backend/session"
)

func newAuthServer(t *testing.T, loginResponse map[string]interface{}, profile map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /register":
			w.WriteHeader(201)
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "u1", "username": "ada"})
		case "POST /login":
			json.NewEncoder(w).Encode(loginResponse)
		case "GET /user":
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(401)
				return
			}
			json.NewEncoder(w).Encode(profile)
		case "PATCH /user":
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			merged := map[string]interface{}{}
			for k, v := range profile {
				merged[k] = v
			}
			for k, v := range body {
				merged[k] = v
			}
			json.NewEncoder(w).Encode(merged)
		case "POST /logout":
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(404)
		}
	}))
}

func TestLoginWithTokenMergesProfileIntoSession(t *testing.T) {
	server := newAuthServer(t,
		map[string]interface{}{"token": "tok-1", "email": "stale@example.com"},
		map[string]interface{}{"username": "ada", "email": "ada@example.com"},
	)
	defer server.Close()

	sessions := session.NewMemoryStore()
	c := NewClientWith(server.URL, server.Client(), sessions)

	result, err := c.Login(context.Background(), map[string]interface{}{"email": "ada@example.com", "password": "pw"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	want := map[string]interface{}{
		"token":    "tok-1",
		"username": "ada",
		"email":    "ada@example.com", // profile wins on collision
	}
	if !reflect.DeepEqual(result, want) {
		t.Fatalf("Login result = %v, want %v", result, want)
	}

	cached, _ := sessions.Load(context.Background())
	if !reflect.DeepEqual(cached, want) {
		t.Fatalf("cached session = %v, want %v", cached, want)
	}
}

func TestLoginWithoutTokenCachesRawResponse(t *testing.T) {
	server := newAuthServer(t,
		map[string]interface{}{"message": "verification required"},
		map[string]interface{}{"username": "ada"},
	)
	defer server.Close()

	sessions := session.NewMemoryStore()
	c := NewClientWith(server.URL, server.Client(), sessions)

	result, err := c.Login(context.Background(), map[string]interface{}{"email": "e", "password": "p"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result["message"] != "verification required" {
		t.Fatalf("unexpected result: %v", result)
	}

	cached, _ := sessions.Load(context.Background())
	if cached["message"] != "verification required" {
		t.Fatalf("raw response not cached: %v", cached)
	}
	if _, ok := cached["username"]; ok {
		t.Fatal("no profile fetch should happen without a token")
	}
}

func TestLogoutClearsSessionEvenWhenRemoteFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		w.Write([]byte(`{"error":"down"}`))
	}))
	defer server.Close()

	sessions := session.NewMemoryStore()
	sessions.Merge(context.Background(), map[string]interface{}{"token": "tok-1"})

	c := NewClientWith(server.URL, server.Client(), sessions)

	err := c.Logout(context.Background())
	if err == nil {
		t.Fatal("expected remote failure to be reported")
	}

	cached, _ := sessions.Load(context.Background())
	if len(cached) != 0 {
		t.Fatalf("session not cleared: %v", cached)
	}
}

func TestGetProfileReturnsRawButCachesMerged(t *testing.T) {
	server := newAuthServer(t, nil, map[string]interface{}{"username": "ada", "email": "ada@example.com"})
	defer server.Close()

	sessions := session.NewMemoryStore()
	sessions.Merge(context.Background(), map[string]interface{}{"token": "tok-1", "email": "stale@example.com"})

	c := NewClientWith(server.URL, server.Client(), sessions)

	result, err := c.GetProfile(context.Background())
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}

	// The raw remote response is returned, not the merged blob.
	if _, ok := result["token"]; ok {
		t.Fatalf("GetProfile leaked cached fields into its result: %v", result)
	}
	if result["email"] != "ada@example.com" {
		t.Fatalf("unexpected profile: %v", result)
	}

	cached, _ := sessions.Load(context.Background())
	if cached["token"] != "tok-1" {
		t.Fatalf("cached token lost: %v", cached)
	}
	if cached["email"] != "ada@example.com" {
		t.Fatalf("profile fields must win on collision: %v", cached)
	}
}

func TestUpdateProfileMergesResponse(t *testing.T) {
	server := newAuthServer(t, nil, map[string]interface{}{"username": "ada", "email": "ada@example.com"})
	defer server.Close()

	sessions := session.NewMemoryStore()
	sessions.Merge(context.Background(), map[string]interface{}{"token": "tok-1"})

	c := NewClientWith(server.URL, server.Client(), sessions)

	result, err := c.UpdateProfile(context.Background(), map[string]interface{}{"username": "ada2"})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if result["username"] != "ada2" {
		t.Fatalf("unexpected update result: %v", result)
	}

	cached, _ := sessions.Load(context.Background())
	if cached["username"] != "ada2" || cached["token"] != "tok-1" {
		t.Fatalf("unexpected cached session: %v", cached)
	}
}

func TestRegisterForwardsPayload(t *testing.T) {
	server := newAuthServer(t, nil, nil)
	defer server.Close()

	sessions := session.NewMemoryStore()
	c := NewClientWith(server.URL, server.Client(), sessions)

	result, err := c.Register(context.Background(), map[string]interface{}{"username": "ada"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result["id"] != "u1" {
		t.Fatalf("unexpected register response: %v", result)
	}

	cached, _ := sessions.Load(context.Background())
	if len(cached) != 0 {
		t.Fatalf("register must not touch the session: %v", cached)
	}
}
