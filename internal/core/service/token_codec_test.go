package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
)

var fixedNow = time.Unix(1_760_000_000, 0).UTC()

func newTestCodec(t *testing.T, now *time.Time) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(TokenConfig{
		Secret:   "test-secret-that-is-long-enough",
		Issuer:   "inventory-api",
		Audience: "inventory-clients",
		TTL:      time.Hour,
	}, WithClock(func() time.Time { return *now }))
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	return codec
}

func testPrincipal() *domain.Principal {
	return &domain.Principal{
		ID:          "u1",
		Username:    "alice",
		Role:        domain.RoleViewer,
		Permissions: []string{"read:devices", "read:logs"},
	}
}

func TestNewTokenCodec_RequiresSecret(t *testing.T) {
	for _, secret := range []string{"", "   "} {
		_, err := NewTokenCodec(TokenConfig{Secret: secret, Issuer: "i", Audience: "a"})
		if !errors.Is(err, ErrMissingSigningSecret) {
			t.Fatalf("secret %q: expected ErrMissingSigningSecret, got %v", secret, err)
		}
	}
}

func TestNewTokenCodec_DefaultTTL(t *testing.T) {
	codec, err := NewTokenCodec(TokenConfig{Secret: "s", Issuer: "i", Audience: "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if codec.TTL() != 24*time.Hour {
		t.Fatalf("expected 24h default TTL, got %s", codec.TTL())
	}
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	now := fixedNow
	codec := newTestCodec(t, &now)

	token, exp, err := codec.Issue(testPrincipal(), 0)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if !exp.Equal(fixedNow.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %s", exp)
	}

	got, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	want := testPrincipal()
	if got.ID != want.ID || got.Username != want.Username || got.Role != want.Role {
		t.Fatalf("principal mismatch: got %+v", got)
	}
	if strings.Join(got.Permissions, ",") != strings.Join(want.Permissions, ",") {
		t.Fatalf("permissions mismatch: got %v", got.Permissions)
	}
}

func TestTokenCodec_UniqueTokenIDs(t *testing.T) {
	now := fixedNow
	codec := newTestCodec(t, &now)

	a, _, _ := codec.Issue(testPrincipal(), 0)
	b, _, _ := codec.Issue(testPrincipal(), 0)
	if a == b {
		t.Fatalf("expected distinct tokens for identical claims")
	}
}

func TestTokenCodec_ExpiryBoundary(t *testing.T) {
	now := fixedNow
	codec := newTestCodec(t, &now)

	token, _, err := codec.Issue(testPrincipal(), time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	now = fixedNow.Add(59 * time.Second)
	if _, err := codec.Verify(token); err != nil {
		t.Fatalf("expected token valid before expiry, got %v", err)
	}

	now = fixedNow.Add(time.Minute)
	if _, err := codec.Verify(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at expiry, got %v", err)
	}

	now = fixedNow.Add(time.Hour)
	if _, err := codec.Verify(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired after expiry, got %v", err)
	}
}

func TestTokenCodec_TamperedPayload(t *testing.T) {
	now := fixedNow
	codec := newTestCodec(t, &now)

	token, _, _ := codec.Issue(testPrincipal(), 0)
	parts := strings.Split(token, ".")

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	claims["role"] = domain.RoleAdmin
	claims["permissions"] = []string{domain.PermAdminAccess}
	forged, _ := json.Marshal(claims)
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	_, err = codec.Verify(strings.Join(parts, "."))
	if !errors.Is(err, domain.ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected error in the invalid-token family, got %v", err)
	}
}

func TestTokenCodec_SignedContentMutationsRejected(t *testing.T) {
	now := fixedNow
	codec := newTestCodec(t, &now)

	token, _, _ := codec.Issue(testPrincipal(), 0)
	parts := strings.Split(token, ".")

	mutate := func(seg string, i int) string {
		repl := byte('A')
		if seg[i] == 'A' {
			repl = 'B'
		}
		return seg[:i] + string(repl) + seg[i+1:]
	}

	for i := range len(parts[1]) {
		mutated := parts[0] + "." + mutate(parts[1], i) + "." + parts[2]
		if _, err := codec.Verify(mutated); !errors.Is(err, domain.ErrTokenSignature) {
			t.Fatalf("payload byte %d: expected ErrTokenSignature, got %v", i, err)
		}
	}
	for i := range len(parts[0]) {
		mutated := mutate(parts[0], i) + "." + parts[1] + "." + parts[2]
		if _, err := codec.Verify(mutated); !errors.Is(err, domain.ErrTokenSignature) {
			t.Fatalf("header byte %d: expected ErrTokenSignature, got %v", i, err)
		}
	}
}

func TestTokenCodec_ExpiredAndTamperedFailsOnSignature(t *testing.T) {
	now := fixedNow
	codec := newTestCodec(t, &now)

	token, _, _ := codec.Issue(testPrincipal(), time.Minute)
	parts := strings.Split(token, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"username":"mallory","role":"ADMIN","exp":1}`))

	now = fixedNow.Add(time.Hour)
	if _, err := codec.Verify(strings.Join(parts, ".")); !errors.Is(err, domain.ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	now := fixedNow
	codec := newTestCodec(t, &now)

	other, err := NewTokenCodec(TokenConfig{
		Secret:   "another-secret",
		Issuer:   "inventory-api",
		Audience: "inventory-clients",
	}, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	token, _, _ := other.Issue(testPrincipal(), 0)

	if _, err := codec.Verify(token); !errors.Is(err, domain.ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	now := fixedNow
	codec := newTestCodec(t, &now)

	cases := []string{"", "abc", "a.b", "a.b.", "!!!.###.$$$"}
	for _, tc := range cases {
		if _, err := codec.Verify(tc); !errors.Is(err, domain.ErrTokenMalformed) {
			t.Fatalf("token %q: expected ErrTokenMalformed, got %v", tc, err)
		}
	}
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	now := fixedNow
	codec := newTestCodec(t, &now)

	claims := tokenClaims{
		Username: "alice",
		Role:     domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "inventory-api",
			Audience:  jwt.ClaimStrings{"inventory-clients"},
			ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret-that-is-long-enough"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := codec.Verify(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected invalid token for HS512, got %v", err)
	}
}

func TestTokenCodec_ClaimChecks(t *testing.T) {
	now := fixedNow
	codec := newTestCodec(t, &now)
	secret := []byte("test-secret-that-is-long-enough")

	sign := func(t *testing.T, c tokenClaims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	valid := jwt.RegisteredClaims{
		Issuer:    "inventory-api",
		Audience:  jwt.ClaimStrings{"inventory-clients"},
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	}

	cases := map[string]tokenClaims{
		"missing role": {Username: "alice", RegisteredClaims: valid},
		"wrong issuer": {Username: "alice", Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "someone-else", Audience: valid.Audience, ExpiresAt: valid.ExpiresAt,
		}},
		"wrong audience": {Username: "alice", Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{
			Issuer: valid.Issuer, Audience: jwt.ClaimStrings{"other"}, ExpiresAt: valid.ExpiresAt,
		}},
		"no expiry": {Username: "alice", Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{
			Issuer: valid.Issuer, Audience: valid.Audience,
		}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := codec.Verify(sign(t, c)); !errors.Is(err, domain.ErrTokenClaims) {
				t.Fatalf("expected ErrTokenClaims, got %v", err)
			}
		})
	}
}

func TestTokenCodec_IssueRequiresIdentity(t *testing.T) {
	now := fixedNow
	codec := newTestCodec(t, &now)

	if _, _, err := codec.Issue(nil, 0); err == nil {
		t.Fatalf("expected error for nil principal")
	}
	if _, _, err := codec.Issue(&domain.Principal{Username: "alice"}, 0); err == nil {
		t.Fatalf("expected error for missing role")
	}
}
