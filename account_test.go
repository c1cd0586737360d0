package signet

import (
	"bytes"
	"testing"

	"github.com/signet-one/signet/errors"
)

func TestNewAccountID(t *testing.T) {
	raw := make([]byte, IDLen)
	raw[0] = 7

	id, err := NewAccountID(raw)
	if err != nil {
		t.Fatalf("valid length must parse: %s", err)
	}
	if !bytes.Equal(id[:], raw) {
		t.Fatal("parsed id must carry the input bytes")
	}

	if _, err := NewAccountID(raw[:16]); !errors.ErrInput.Is(err) {
		t.Fatalf("short input must fail with ErrInput, got %+v", err)
	}
}

func TestAccountIDStringRoundtrip(t *testing.T) {
	var id AccountID
	for i := range id {
		id[i] = byte(i + 1)
	}

	parsed, err := AccountIDFromString(id.String())
	if err != nil {
		t.Fatalf("parse rendered id: %s", err)
	}
	if !parsed.Equals(id) {
		t.Fatalf("roundtrip mismatch: %s != %s", parsed, id)
	}

	if _, err := AccountIDFromString("not-base58-0OIl"); err == nil {
		t.Fatal("invalid base58 must fail")
	}
}

func TestAccountIDValidate(t *testing.T) {
	var zero AccountID
	if err := zero.Validate(); !errors.ErrEmpty.Is(err) {
		t.Fatalf("zero id must be invalid, got %+v", err)
	}

	var id AccountID
	id[31] = 1
	if err := id.Validate(); err != nil {
		t.Fatalf("non-zero id must be valid: %s", err)
	}
}

func TestSeedFromTag(t *testing.T) {
	seed := SeedFromTag("vault")
	if string(seed[:5]) != "vault" {
		t.Fatalf("tag must prefix the seed, got %q", seed[:5])
	}
	for _, b := range seed[5:] {
		if b != 0 {
			t.Fatal("seed must be zero padded after the tag")
		}
	}

	defer func() {
		if recover() == nil {
			t.Fatal("oversized tag must panic")
		}
	}()
	SeedFromTag("this tag is much much longer than thirty two bytes")
}

func TestDerivePDA(t *testing.T) {
	var progA, progB ProgramID
	progA[0] = 1
	progB[0] = 2
	seedX := SeedFromTag("x")
	seedY := SeedFromTag("y")

	if !DerivePDA(progA, seedX).Equals(DerivePDA(progA, seedX)) {
		t.Fatal("derivation must be deterministic")
	}
	if DerivePDA(progA, seedX).Equals(DerivePDA(progB, seedX)) {
		t.Fatal("different programs must derive different addresses")
	}
	if DerivePDA(progA, seedX).Equals(DerivePDA(progA, seedY)) {
		t.Fatal("different seeds must derive different addresses")
	}
}

func TestAccountCopyDoesNotAlias(t *testing.T) {
	orig := Account{ID: AccountID{1}, Data: []byte{1, 2, 3}}
	cp := orig.Copy()
	cp.Data[0] = 9
	if orig.Data[0] != 1 {
		t.Fatal("copy must not alias the original data")
	}
}

func TestAccountIDsEqual(t *testing.T) {
	ids := []AccountID{{1}, {2}, {3}}

	cases := map[string]struct {
		a, b []AccountID
		want bool
	}{
		"same slices":      {a: ids, b: ids, want: true},
		"equal content":    {a: ids[:2], b: []AccountID{{1}, {2}}, want: true},
		"both empty":       {a: nil, b: []AccountID{}, want: true},
		"different length": {a: ids, b: ids[:2], want: false},
		"different order":  {a: ids[:2], b: []AccountID{{2}, {1}}, want: false},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := AccountIDsEqual(tc.a, tc.b); got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCallAccountOutOfRange(t *testing.T) {
	call := Call{Accounts: []AccountWithMetadata{
		{Account: Account{ID: AccountID{1}}},
	}}
	if got := call.Account(0).ID; got != (AccountID{1}) {
		t.Fatalf("in-range access broken, got %s", got)
	}
	if got := call.Account(5); !got.IsEmpty() || got.IsAuthorized {
		t.Fatal("out-of-range access must yield an empty account")
	}
}
