package provider

import (
	"errors"
	"testing"

	"github.com/adampisula/musicdl-server/apperr"
)

func TestYouTubeProvider_IsURLSupported(t *testing.T) {
	p := NewYouTubeProvider("key", "SE", nil)

	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{
			name:     "standard watch URL",
			url:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			expected: true,
		},
		{
			name:     "short URL",
			url:      "https://youtu.be/dQw4w9WgXcQ",
			expected: true,
		},
		{
			name:     "mobile URL",
			url:      "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			expected: true,
		},
		{
			name:     "embed URL",
			url:      "https://www.youtube.com/embed/dQw4w9WgXcQ",
			expected: true,
		},
		{
			name:     "protocol-relative URL",
			url:      "//www.youtube.com/watch?v=dQw4w9WgXcQ",
			expected: true,
		},
		{
			name:     "spotify URL",
			url:      "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT",
			expected: false,
		},
		{
			name:     "plain domain",
			url:      "https://example.com/watch?v=dQw4w9WgXcQ",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsURLSupported(tt.url); got != tt.expected {
				t.Errorf("IsURLSupported(%q) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestYouTubeProvider_GetProviderID(t *testing.T) {
	p := NewYouTubeProvider("key", "SE", nil)

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "watch URL",
			url:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "short URL",
			url:  "https://youtu.be/dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "embed URL",
			url:  "https://www.youtube.com/embed/dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.GetProviderID(tt.url)
			if err != nil {
				t.Fatalf("GetProviderID() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("GetProviderID() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := p.GetProviderID("https://example.com"); !errors.Is(err, apperr.ErrUnsupportedURL) {
		t.Errorf("GetProviderID() error = %v, want ErrUnsupportedURL", err)
	}
}

func TestParseISO8601Duration(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "PT4M13S", want: 253},
		{input: "PT1H2M3S", want: 3723},
		{input: "PT200S", want: 200},
		{input: "PT3M", want: 180},
		{input: "P1DT1S", want: 86401},
		{input: "PT0S", want: 0},
		{input: "4m13s", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseISO8601Duration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseISO8601Duration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseISO8601Duration(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestConstructQuery(t *testing.T) {
	meta := testMetadata("Daft Punk", "Around the World", 428)

	if got := constructQuery(meta, false); got != "Daft Punk Around the World" {
		t.Errorf("constructQuery() = %q", got)
	}
	if got := constructQuery(meta, true); got != "Daft Punk Around the World extended" {
		t.Errorf("constructQuery(extended) = %q", got)
	}
}
