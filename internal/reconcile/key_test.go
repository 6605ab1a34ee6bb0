package reconcile

import (
	"errors"
	"testing"
)

func TestDeriveKey_AnchorPath(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "uppercase image extension",
			url:  "https://site/x/wp-content/uploads/img.PNG",
			want: "wp-content/uploads/img.jpg",
		},
		{
			name: "jpeg extension",
			url:  "https://shop.example.com/wp-content/uploads/2023/05/photo.jpeg",
			want: "wp-content/uploads/2023/05/photo.jpg",
		},
		{
			name: "non-image extension still normalized",
			url:  "https://site/wp-content/uploads/banner.tiff",
			want: "wp-content/uploads/banner.jpg",
		},
		{
			name: "no extension",
			url:  "https://site/wp-content/uploads/banner",
			want: "wp-content/uploads/banner.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveKey(tt.url)
			if err != nil {
				t.Fatalf("DeriveKey(%q) error = %v", tt.url, err)
			}
			if got != tt.want {
				t.Fatalf("DeriveKey(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestDeriveKey_PlainPath(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "image extension replaced",
			url:  "https://cdn.example.com/media/photo.WEBP",
			want: "media/photo.jpg",
		},
		{
			name: "gif replaced",
			url:  "https://cdn.example.com/a/b/anim.gif",
			want: "a/b/anim.jpg",
		},
		{
			name: "non-image extension preserved",
			url:  "https://cdn.example.com/media/manual.pdf",
			want: "media/manual.pdf",
		},
		{
			name: "no extension preserved",
			url:  "https://cdn.example.com/media/photo",
			want: "media/photo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveKey(tt.url)
			if err != nil {
				t.Fatalf("DeriveKey(%q) error = %v", tt.url, err)
			}
			if got != tt.want {
				t.Fatalf("DeriveKey(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	url := "https://site/wp-content/uploads/img.png"
	first, err := DeriveKey(url)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	second, err := DeriveKey(url)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if first != second {
		t.Fatalf("DeriveKey() not deterministic: %q vs %q", first, second)
	}
}

func TestDeriveKey_Invalid(t *testing.T) {
	for _, url := range []string{"", "   ", "\t"} {
		if _, err := DeriveKey(url); !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("DeriveKey(%q) error = %v, want ErrInvalidURL", url, err)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	for _, raw := range []string{"", "  ", "PENDING", "pending", "N/A", "n/a", "NA", "NULL", "null "} {
		if !IsPlaceholder(raw) {
			t.Fatalf("IsPlaceholder(%q) = false, want true", raw)
		}
	}
	for _, raw := range []string{"https://example.com/a.png", "0", "none"} {
		if IsPlaceholder(raw) {
			t.Fatalf("IsPlaceholder(%q) = true, want false", raw)
		}
	}
}
