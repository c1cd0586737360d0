package errors

import (
	"fmt"
	"testing"
)

func TestCause(t *testing.T) {
	std := fmt.Errorf("this is a stdlib error")

	cases := map[string]struct {
		err  error
		root *Error
		want bool
	}{
		"direct match": {
			err:  ErrNotFound,
			root: ErrNotFound,
			want: true,
		},
		"wrapped once": {
			err:  Wrap(ErrNotFound, "missing thing"),
			root: ErrNotFound,
			want: true,
		},
		"wrapped twice": {
			err:  Wrap(Wrap(ErrNotFound, "inner"), "outer"),
			root: ErrNotFound,
			want: true,
		},
		"wrong root": {
			err:  Wrap(ErrNotFound, "missing thing"),
			root: ErrUnauthorized,
			want: false,
		},
		"stdlib is not a root": {
			err:  std,
			root: ErrNotFound,
			want: false,
		},
		"wrapped stdlib is not a root": {
			err:  Wrap(std, "wrapped"),
			root: ErrNotFound,
			want: false,
		},
		"nil error against a root": {
			err:  nil,
			root: ErrNotFound,
			want: false,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.root.Is(tc.err); got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "description"); err != nil {
		t.Fatalf("wrapping nil must return nil, got %+v", err)
	}
	if err := Wrapf(nil, "description %d", 42); err != nil {
		t.Fatalf("wrapping nil must return nil, got %+v", err)
	}
}

func TestWrapMessage(t *testing.T) {
	err := Wrap(ErrState, "bad transition")
	const want = "bad transition: invalid state"
	if got := err.Error(); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestNewDelegatesToWrap(t *testing.T) {
	err := ErrAmount.Newf("got %d", -1)
	if !ErrAmount.Is(err) {
		t.Fatal("New must preserve the root cause")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("reusing an error code must panic")
		}
	}()
	Register(2, "duplicate of unauthorized")
}

func TestRecover(t *testing.T) {
	boom := func() (err error) {
		defer Recover(&err)
		panic("broken invariant")
	}
	err := boom()
	if !ErrPanic.Is(err) {
		t.Fatalf("want ErrPanic, got %+v", err)
	}
}

func TestWrapAttachesStackTraceOnce(t *testing.T) {
	inner := Wrap(ErrInput, "inner")
	st := stackTrace(inner)
	if st == nil {
		t.Fatal("first wrap must attach a stack trace")
	}
	outer := Wrap(inner, "outer")
	if got := stackTrace(outer); fmt.Sprint(got) != fmt.Sprint(st) {
		t.Fatal("second wrap must keep the innermost stack trace")
	}
}
