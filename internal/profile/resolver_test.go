package profile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nao1215/contactcrawl/internal/fetch"
)

const fullProfilePage = `<html><head><title>Telegram: Contact @exampleuser</title></head>
<body>
  <div class="tgme_page">
    <div class="tgme_page_photo"><img class="tgme_page_photo_image" src="https://cdn.example.com/avatar.jpg"></div>
    <div class="tgme_page_title"><span dir="auto">Example User</span></div>
    <div class="tgme_page_extra">@exampleuser</div>
    <div class="tgme_page_description">Selling widgets.
      Write me any time.</div>
  </div>
  <img src="https://cdn.example.com/footer.png">
</body></html>`

type stubFetcher struct {
	body []byte
	err  error
}

func (s stubFetcher) Fetch(_ context.Context, rawURL string) (*fetch.Page, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &fetch.Page{URL: rawURL, FinalURL: rawURL, StatusCode: http.StatusOK, Body: s.body}, nil
}

func TestParseDetails(t *testing.T) {
	t.Parallel()

	t.Run("full profile page", func(t *testing.T) {
		t.Parallel()

		d, err := ParseDetails([]byte(fullProfilePage))
		if err != nil {
			t.Fatalf("ParseDetails failed: %v", err)
		}
		if d.Title != "Example User" {
			t.Errorf("Title = %q", d.Title)
		}
		if d.AvatarURL != "https://cdn.example.com/avatar.jpg" {
			t.Errorf("AvatarURL = %q", d.AvatarURL)
		}
		if d.Bio != "Selling widgets.\n      Write me any time." {
			t.Errorf("Bio = %q", d.Bio)
		}
	})

	t.Run("missing description yields empty bio", func(t *testing.T) {
		t.Parallel()

		body := `<img src="a.png"><div class="tgme_page_title"><span>Name</span></div>`
		d, err := ParseDetails([]byte(body))
		if err != nil {
			t.Fatalf("ParseDetails failed: %v", err)
		}
		if d.Title != "Name" || d.AvatarURL != "a.png" || d.Bio != "" {
			t.Errorf("unexpected details %+v", d)
		}
	})

	t.Run("page without expected structure yields empty fields", func(t *testing.T) {
		t.Parallel()

		d, err := ParseDetails([]byte(`<html><body><p>not a profile</p></body></html>`))
		if err != nil {
			t.Fatalf("ParseDetails failed: %v", err)
		}
		if !d.IsEmpty() {
			t.Errorf("expected empty details, got %+v", d)
		}
	})

	t.Run("title container without span yields empty title", func(t *testing.T) {
		t.Parallel()

		d, err := ParseDetails([]byte(`<div class="tgme_page_title">Bare text</div>`))
		if err != nil {
			t.Fatalf("ParseDetails failed: %v", err)
		}
		if d.Title != "" {
			t.Errorf("Title = %q, want empty", d.Title)
		}
	})

	t.Run("first image without src yields empty avatar", func(t *testing.T) {
		t.Parallel()

		d, err := ParseDetails([]byte(`<img alt="x"><img src="second.png">`))
		if err != nil {
			t.Fatalf("ParseDetails failed: %v", err)
		}
		if d.AvatarURL != "" {
			t.Errorf("AvatarURL = %q, want empty", d.AvatarURL)
		}
	})

	t.Run("garbage bytes do not panic", func(t *testing.T) {
		t.Parallel()

		d, err := ParseDetails([]byte{0xff, 0xfe, 0x00, '<', '<'})
		if err != nil {
			t.Fatalf("ParseDetails failed: %v", err)
		}
		if !d.IsEmpty() {
			t.Errorf("expected empty details, got %+v", d)
		}
	})
}

func TestResolverResolve(t *testing.T) {
	t.Parallel()

	t.Run("resolves details and keeps the URL", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(stubFetcher{body: []byte(fullProfilePage)})
		d, err := r.Resolve(context.Background(), "https://t.me/exampleuser")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if d.URL != "https://t.me/exampleuser" {
			t.Errorf("URL = %q", d.URL)
		}
		if d.Title != "Example User" {
			t.Errorf("Title = %q", d.Title)
		}
	})

	t.Run("fetch failure yields empty details and ErrProfileFetch", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(stubFetcher{err: fetch.ErrTransport})
		d, err := r.Resolve(context.Background(), "https://t.me/gone")
		if !errors.Is(err, ErrProfileFetch) {
			t.Fatalf("expected ErrProfileFetch, got %v", err)
		}
		if !errors.Is(err, fetch.ErrTransport) {
			t.Errorf("expected wrapped ErrTransport, got %v", err)
		}
		if d.URL != "https://t.me/gone" || !d.IsEmpty() {
			t.Errorf("unexpected details %+v", d)
		}
	})

	t.Run("malformed URL yields empty details", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(fetch.NewHTTPFetcher())
		d, err := r.Resolve(context.Background(), "https://t.me/%zz")
		if !errors.Is(err, ErrProfileFetch) {
			t.Fatalf("expected ErrProfileFetch, got %v", err)
		}
		if !d.IsEmpty() {
			t.Errorf("unexpected details %+v", d)
		}
	})

	t.Run("resolves over HTTP", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(fullProfilePage))
		}))
		defer server.Close()

		r := NewResolver(fetch.NewHTTPFetcher())
		d, err := r.Resolve(context.Background(), server.URL+"/exampleuser")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if d.AvatarURL != "https://cdn.example.com/avatar.jpg" {
			t.Errorf("AvatarURL = %q", d.AvatarURL)
		}
	})
}
