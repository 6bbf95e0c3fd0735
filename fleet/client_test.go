package fleet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestLogin_Success tests that a successful login returns the user profile
func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/session" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("email") != "dispatcher@example.com" {
			t.Errorf("email = %q", r.PostForm.Get("email"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"name":"Dispatcher","email":"dispatcher@example.com"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", 5*time.Second)
	user, err := c.Login(context.Background(), "dispatcher@example.com", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != 7 || user.Name != "Dispatcher" {
		t.Errorf("user = %+v", user)
	}
}

// TestLogin_StatusMapping tests the non-2xx status to error taxonomy mapping
func TestLogin_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name: "unauthorized", status: 401,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Errorf("err = %v, want ErrInvalidCredentials", err)
				}
			},
		},
		{
			name: "server error", status: 500,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrUpstreamUnavailable) {
					t.Errorf("err = %v, want ErrUpstreamUnavailable", err)
				}
			},
		},
		{
			name: "bad gateway", status: 502,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrUpstreamUnavailable) {
					t.Errorf("err = %v, want ErrUpstreamUnavailable", err)
				}
			},
		},
		{
			name: "bad request passes message through", status: 400,
			body: `{"message":"account is disabled"}`,
			check: func(t *testing.T, err error) {
				var ire *InvalidRequestError
				if !errors.As(err, &ire) {
					t.Fatalf("err = %v, want InvalidRequestError", err)
				}
				if ire.Message != "account is disabled" {
					t.Errorf("Message = %q", ire.Message)
				}
			},
		},
		{
			name: "unexpected status", status: 418,
			check: func(t *testing.T, err error) {
				var use *UnexpectedStatusError
				if !errors.As(err, &use) {
					t.Fatalf("err = %v, want UnexpectedStatusError", err)
				}
				if use.Code != 418 {
					t.Errorf("Code = %d", use.Code)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				if tc.body != "" {
					w.Write([]byte(tc.body))
				}
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "/api", 5*time.Second)
			_, err := c.Login(context.Background(), "a@b.c", "pw")
			if err == nil {
				t.Fatal("expected error")
			}
			tc.check(t, err)
		})
	}
}

// TestLogin_MissingUserID tests rejection of a 2xx body without a user id
func TestLogin_MissingUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", 5*time.Second)
	_, err := c.Login(context.Background(), "a@b.c", "pw")
	var ire *InvalidRequestError
	if !errors.As(err, &ire) {
		t.Errorf("err = %v, want InvalidRequestError", err)
	}
}

// TestGetJSON_Unauthorized tests that a 401 on data fetch means session expiry
func TestGetJSON_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", 5*time.Second)
	_, err := c.Devices(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("err = %v, want ErrSessionExpired", err)
	}
}

// TestClient_Timeout tests that a slow upstream maps to ErrTimeout
func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", 50*time.Millisecond)
	_, err := c.Devices(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

// TestPositions_DeviceFilter tests the repeated deviceId query parameter
func TestPositions_DeviceFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.URL.Query()["deviceId"]
		if len(got) != 2 || got[0] != "3" || got[1] != "9" {
			t.Errorf("deviceId params = %v", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"deviceId":3,"latitude":47.5,"longitude":19.0}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", 5*time.Second)
	positions, err := c.Positions(context.Background(), 3, 9)
	if err != nil {
		t.Fatalf("Positions failed: %v", err)
	}
	if len(positions) != 1 || positions[0].DeviceID != 3 {
		t.Errorf("positions = %+v", positions)
	}
}

// TestClient_CookieReplay tests that a session cookie from login is replayed
func TestClient_CookieReplay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/session":
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc123", Path: "/"})
			w.Write([]byte(`{"id":1,"name":"x"}`))
		case "/api/devices":
			cookie, err := r.Cookie("JSESSIONID")
			if err != nil || cookie.Value != "abc123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/api", 5*time.Second)
	if _, err := c.Login(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := c.Devices(context.Background()); err != nil {
		t.Errorf("Devices after login failed: %v", err)
	}
}
