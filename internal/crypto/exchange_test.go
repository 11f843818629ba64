package crypto_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"sealink/internal/crypto"
)

func TestExchangeSharedSecretAgreement(t *testing.T) {
	suites := []struct {
		name string
		ex   crypto.Exchange
	}{
		{"x25519", crypto.X25519Exchange{}},
		{"x25519-kyber768", crypto.HybridExchange{}},
	}
	for _, tc := range suites {
		t.Run(tc.name, func(t *testing.T) {
			offer, fin, err := tc.ex.NewOffer(rand.Reader)
			if err != nil {
				t.Fatalf("NewOffer: %v", err)
			}
			reply, responderShared, err := tc.ex.Accept(rand.Reader, offer)
			if err != nil {
				t.Fatalf("Accept: %v", err)
			}
			initiatorShared, err := fin.Finish(reply)
			if err != nil {
				t.Fatalf("Finish: %v", err)
			}
			if !bytes.Equal(initiatorShared, responderShared) {
				t.Fatal("shared secrets differ")
			}
			if len(initiatorShared) < 32 {
				t.Fatalf("shared secret too short: %d bytes", len(initiatorShared))
			}
		})
	}
}

func TestExchangeFreshness(t *testing.T) {
	ex := crypto.X25519Exchange{}

	run := func() []byte {
		offer, fin, err := ex.NewOffer(rand.Reader)
		if err != nil {
			t.Fatalf("NewOffer: %v", err)
		}
		_, shared, err := ex.Accept(rand.Reader, offer)
		if err != nil {
			t.Fatalf("Accept: %v", err)
		}
		fin.Wipe()
		return shared
	}

	if bytes.Equal(run(), run()) {
		t.Fatal("two independent exchanges produced identical secrets")
	}
}

func TestExchangeRejectsBadLengths(t *testing.T) {
	for _, ex := range []crypto.Exchange{crypto.X25519Exchange{}, crypto.HybridExchange{}} {
		if _, _, err := ex.Accept(rand.Reader, []byte("short")); err == nil {
			t.Fatalf("%s: Accept accepted a truncated offer", ex.Suite())
		}
		_, fin, err := ex.NewOffer(rand.Reader)
		if err != nil {
			t.Fatalf("NewOffer: %v", err)
		}
		if _, err := fin.Finish([]byte("short")); err == nil {
			t.Fatalf("%s: Finish accepted a truncated reply", ex.Suite())
		}
	}
}

func TestFinishAfterWipeFails(t *testing.T) {
	ex := crypto.X25519Exchange{}
	offer, fin, err := ex.NewOffer(rand.Reader)
	if err != nil {
		t.Fatalf("NewOffer: %v", err)
	}
	reply, _, err := ex.Accept(rand.Reader, offer)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	fin.Wipe()
	if _, err := fin.Finish(reply); err == nil {
		t.Fatal("Finish succeeded after Wipe")
	}
}

func TestSuiteByName(t *testing.T) {
	cases := []struct {
		name    string
		want    crypto.Suite
		wantErr bool
	}{
		{"", crypto.SuiteX25519, false},
		{"x25519", crypto.SuiteX25519, false},
		{"x25519-kyber768", crypto.SuiteX25519Kyber768, false},
		{"hybrid", crypto.SuiteX25519Kyber768, false},
		{"rot13", 0, true},
	}
	for _, tc := range cases {
		ex, err := crypto.SuiteByName(tc.name)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("SuiteByName(%q): want error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("SuiteByName(%q): %v", tc.name, err)
		}
		if ex.Suite() != tc.want {
			t.Fatalf("SuiteByName(%q) = %v, want %v", tc.name, ex.Suite(), tc.want)
		}
	}
}
