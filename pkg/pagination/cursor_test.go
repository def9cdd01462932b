package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeCursor_RoundTrip(t *testing.T) {
	c := Cursor{
		V:    1,
		Did:  "ds-123",
		Fp:   "abc",
		View: ViewABC,
		Off:  200,
		Ps:   100,
		Ph:   ParamsHash(map[string]string{"mode": "glass"}),
	}
	tok, err := EncodeCursor(c)
	if err != nil {
		t.Fatalf("EncodeCursor error: %v", err)
	}
	// token should be url-safe base64 (no '+', '/', '=')
	if strings.ContainsAny(tok, "+/=") {
		t.Fatalf("token contains non-url-safe chars: %q", tok)
	}
	out, err := DecodeCursor(tok)
	if err != nil {
		t.Fatalf("DecodeCursor error: %v", err)
	}
	if out.Did != c.Did || out.View != c.View || out.Off != c.Off || out.Ps != c.Ps || out.Ph != c.Ph {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", out, c)
	}
	if out.Iat == 0 {
		t.Fatalf("iat not defaulted")
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	cases := []string{
		"",    // empty
		"!!!", // not base64
		base64.RawURLEncoding.EncodeToString([]byte("not-json")),
		mustB64(`{"v":1}`),
		mustB64(`{"v":1,"did":"","view":"abc","off":0,"ps":10}`),
		mustB64(`{"v":1,"did":"x","view":"pivot","off":0,"ps":10}`),
		mustB64(`{"v":1,"did":"x","view":"xyz","off":-1,"ps":10}`),
		mustB64(`{"v":1,"did":"x","view":"xyz","off":0,"ps":0}`),
	}
	for i, tok := range cases {
		if _, err := DecodeCursor(tok); err == nil {
			t.Fatalf("case %d: expected error for token %q", i, tok)
		}
	}
}

func TestCursorMatches(t *testing.T) {
	c := Cursor{Did: "ds", Fp: "f1", View: ViewXYZ, Ps: 10, Ph: "p"}
	if err := c.Matches("ds", "f1", ViewXYZ, "p"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	mismatches := []struct {
		did, fp string
		view    View
		ph      string
	}{
		{"other", "f1", ViewXYZ, "p"},
		{"ds", "f2", ViewXYZ, "p"},
		{"ds", "f1", ViewABC, "p"},
		{"ds", "f1", ViewXYZ, "q"},
	}
	for i, m := range mismatches {
		if err := c.Matches(m.did, m.fp, m.view, m.ph); !errors.Is(err, ErrCursorMismatch) {
			t.Fatalf("case %d: got %v, want ErrCursorMismatch", i, err)
		}
	}
}

func TestParamsHashStable(t *testing.T) {
	type p struct {
		Mode   string
		Metric string
	}
	a := ParamsHash(p{"glass", "revenue"})
	b := ParamsHash(p{"glass", "revenue"})
	c := ParamsHash(p{"glass", "profit"})
	if a != b || a == c || len(a) != 16 {
		t.Fatalf("unexpected hashes: %q %q %q", a, b, c)
	}
}

func TestWindow(t *testing.T) {
	cases := []struct{ total, off, ps, start, end int }{
		{10, 0, 4, 0, 4},
		{10, 8, 4, 8, 10},
		{10, 12, 4, 10, 10},
		{0, 0, 4, 0, 0},
	}
	for _, c := range cases {
		s, e := Window(c.total, c.off, c.ps)
		if s != c.start || e != c.end {
			t.Fatalf("Window(%d,%d,%d) = %d,%d want %d,%d", c.total, c.off, c.ps, s, e, c.start, c.end)
		}
	}
}

func FuzzDecodeCursor(f *testing.F) {
	seeds := []string{
		"", "abc", mustB64(`{"v":1}`), mustB64(`{"did":"x"}`),
		mustB64(`{"v":1,"did":"ds","view":"sale_lines","off":0,"ps":1}`),
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, token string) {
		_, _ = DecodeCursor(token)
	})
}

func mustB64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}
