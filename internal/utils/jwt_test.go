package utils

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	SetSecrets("access_secret", "refresh_secret")

	token, err := GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user 42, got %d", claims.UserID)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	SetSecrets("access_secret", "refresh_secret")

	token, err := GenerateRefreshToken(7)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := ParseRefreshToken(token)
	if err != nil {
		t.Fatalf("ParseRefreshToken failed: %v", err)
	}
	if claims.UserID != 7 {
		t.Fatalf("expected user 7, got %d", claims.UserID)
	}
}

// access 與 refresh 使用不同密鑰，token 不可互換
func TestTokensAreNotInterchangeable(t *testing.T) {
	SetSecrets("access_secret", "refresh_secret")

	accessToken, _ := GenerateToken(1)
	if _, err := ParseRefreshToken(accessToken); err == nil {
		t.Fatal("access token should not parse as refresh token")
	}

	refreshToken, _ := GenerateRefreshToken(1)
	if _, err := ParseToken(refreshToken); err == nil {
		t.Fatal("refresh token should not parse as access token")
	}
}
