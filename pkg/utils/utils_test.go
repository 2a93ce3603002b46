package utils

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateIDFormat(t *testing.T) {
	id := GenerateID("instance")
	if !strings.HasPrefix(id, "instance_") {
		t.Errorf("id %q missing prefix", id)
	}
	if len(id) != len("instance_")+16 {
		t.Errorf("id %q has unexpected length", id)
	}
}

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateUserID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestGenerateMediaNamePreservesExtension(t *testing.T) {
	name := GenerateMediaName("My Clip.MP4")
	if !strings.HasSuffix(name, ".mp4") {
		t.Errorf("name %q lost the extension", name)
	}
	if strings.Contains(name, " ") {
		t.Errorf("name %q contains spaces", name)
	}
	if name == GenerateMediaName("My Clip.MP4") {
		t.Error("two generated names collided")
	}
}

func TestGenerateMediaNameNoExtension(t *testing.T) {
	name := GenerateMediaName("clip")
	if strings.Contains(name, ".") {
		t.Errorf("name %q has an unexpected extension", name)
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"with\x00null", "withnull"},
		{"keep\ttabs", "keep\ttabs"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeString(tt.in); got != tt.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := TruncateString("a longer string", 8); got != "a lon..." {
		t.Errorf("got %q", got)
	}
	if got := TruncateString("abcdef", 2); got != "ab" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeUsername(t *testing.T) {
	if got := NormalizeUsername("  GamingGod "); got != "gaminggod" {
		t.Errorf("got %q", got)
	}
}

func TestMaskSensitive(t *testing.T) {
	if got := MaskSensitive("secret-token", 4); got != "secr********" {
		t.Errorf("got %q", got)
	}
	if got := MaskSensitive("ab", 4); got != "**" {
		t.Errorf("got %q", got)
	}
}

func TestIsEmpty(t *testing.T) {
	if !IsEmpty("   ") {
		t.Error("whitespace not empty")
	}
	if IsEmpty("x") {
		t.Error("non-empty reported empty")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{2500 * time.Millisecond, "2.50s"},
		{90 * time.Second, "1m30s"},
		{25*time.Hour + 30*time.Minute, "25h30m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestParseDurationSafe(t *testing.T) {
	if got := ParseDurationSafe("5s", time.Minute); got != 5*time.Second {
		t.Errorf("got %v", got)
	}
	if got := ParseDurationSafe("garbage", time.Minute); got != time.Minute {
		t.Errorf("got %v", got)
	}
}

func TestIsExpired(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	Now = func() time.Time { return fixed }
	defer func() { Now = time.Now }()

	if IsExpired(fixed.Add(-time.Hour), 24*time.Hour) {
		t.Error("fresh timestamp reported expired")
	}
	if !IsExpired(fixed.Add(-25*time.Hour), 24*time.Hour) {
		t.Error("stale timestamp not expired")
	}
}

func TestTimestampRoundtrip(t *testing.T) {
	orig := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	parsed, err := ParseTimestamp(FormatTimestamp(orig))
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if !parsed.Equal(orig) {
		t.Errorf("got %v, want %v", parsed, orig)
	}
}
