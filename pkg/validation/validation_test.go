package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last+tag@sub.domain.org",
	}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v", email, err)
		}
	}

	invalid := []string{
		"",
		"no-at-sign",
		"missing@tld",
		"@example.com",
		strings.Repeat("a", 250) + "@x.com",
	}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) accepted", email)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"GamingGod", "speed_runner", "lol-pro-99"}
	for _, name := range valid {
		if err := ValidateUsername(name); err != nil {
			t.Errorf("ValidateUsername(%q) = %v", name, err)
		}
	}

	invalid := []string{"", "ab", "has space", "emojié!", strings.Repeat("a", 51)}
	for _, name := range invalid {
		if err := ValidateUsername(name); err == nil {
			t.Errorf("ValidateUsername(%q) accepted", name)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("secret1"); err != nil {
		t.Errorf("ValidatePassword = %v", err)
	}
	for _, pw := range []string{"", "short", strings.Repeat("x", 129)} {
		if err := ValidatePassword(pw); err == nil {
			t.Errorf("ValidatePassword(%q sized %d) accepted", pw, len(pw))
		}
	}
}

func TestValidateClipTitle(t *testing.T) {
	if err := ValidateClipTitle("Insane 1v5 clutch!"); err != nil {
		t.Errorf("ValidateClipTitle = %v", err)
	}
	if err := ValidateClipTitle("   "); err == nil {
		t.Error("whitespace-only title accepted")
	}
	if err := ValidateClipTitle(strings.Repeat("a", 121)); err == nil {
		t.Error("overlong title accepted")
	}
}

func TestValidateGameTag(t *testing.T) {
	valid := []string{"Fortnite", "Mario Kart", "Tony Hawk's Pro Skater", "Half-Life: Alyx"}
	for _, game := range valid {
		if err := ValidateGameTag(game); err != nil {
			t.Errorf("ValidateGameTag(%q) = %v", game, err)
		}
	}

	invalid := []string{"", "game<script>", strings.Repeat("a", 81)}
	for _, game := range invalid {
		if err := ValidateGameTag(game); err == nil {
			t.Errorf("ValidateGameTag(%q) accepted", game)
		}
	}
}

func TestValidateUploaderName(t *testing.T) {
	if err := ValidateUploaderName("Speed Runner"); err != nil {
		t.Errorf("ValidateUploaderName = %v", err)
	}
	if err := ValidateUploaderName(""); err == nil {
		t.Error("empty uploader accepted")
	}
	if err := ValidateUploaderName(strings.Repeat("a", 51)); err == nil {
		t.Error("overlong uploader accepted")
	}
}

func TestValidateNonEmptyString(t *testing.T) {
	if err := ValidateNonEmptyString("value", "field"); err != nil {
		t.Errorf("ValidateNonEmptyString = %v", err)
	}
	if err := ValidateNonEmptyString("  ", "field"); err == nil {
		t.Error("whitespace accepted")
	}
}

func TestValidateStringLength(t *testing.T) {
	if err := ValidateStringLength("abc", 1, 5, "field"); err != nil {
		t.Errorf("ValidateStringLength = %v", err)
	}
	if err := ValidateStringLength("", 1, 5, "field"); err == nil {
		t.Error("too-short string accepted")
	}
	if err := ValidateStringLength("abcdef", 1, 5, "field"); err == nil {
		t.Error("too-long string accepted")
	}
}
