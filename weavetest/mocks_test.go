package weavetest

import (
	"testing"

	"github.com/lastwill-labs/weave"
	"github.com/lastwill-labs/weave/errors"
	"github.com/lastwill-labs/weave/store"
)

func TestDecoratedHandler(t *testing.T) {
	cases := map[string]struct {
		decorator   Decorator
		handler     Handler
		wantErr     *errors.Error
		wantHandled int
		wantWritten bool
	}{
		"handler result is returned": {
			handler: Handler{
				CheckResult:   weave.CheckResult{Data: []byte("checked")},
				DeliverResult: weave.DeliverResult{Data: []byte("delivered")},
				StoreKey:      []byte("key"),
			},
			wantHandled: 2,
			wantWritten: true,
		},
		"handler failure is returned": {
			handler: Handler{
				CheckErr:   errors.ErrUnauthorized,
				DeliverErr: errors.ErrUnauthorized,
			},
			wantErr:     errors.ErrUnauthorized,
			wantHandled: 2,
		},
		"decorator failure skips the handler": {
			decorator: Decorator{
				CheckErr:   errors.ErrExpired,
				DeliverErr: errors.ErrExpired,
			},
			handler:     Handler{StoreKey: []byte("key")},
			wantErr:     errors.ErrExpired,
			wantHandled: 0,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			h := Decorate(&tc.handler, &tc.decorator)

			cres, err := h.Check(nil, db, nil)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			dres, err := h.Deliver(nil, db, nil)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
			if tc.wantErr == nil {
				if got, want := string(cres.Data), string(tc.handler.CheckResult.Data); got != want {
					t.Errorf("want %q check data, got %q", want, got)
				}
				if got, want := string(dres.Data), string(tc.handler.DeliverResult.Data); got != want {
					t.Errorf("want %q deliver data, got %q", want, got)
				}
			}

			if got := tc.decorator.CallCount(); got != 2 {
				t.Errorf("want the decorator called twice, got %d", got)
			}
			if got := tc.handler.CallCount(); got != tc.wantHandled {
				t.Errorf("want %d handler calls, got %d", tc.wantHandled, got)
			}
			if got := tc.handler.CheckCallCount(); got*2 != tc.wantHandled {
				t.Errorf("want %d handler checks, got %d", tc.wantHandled/2, got)
			}
			has, err := db.Has([]byte("key"))
			if err != nil {
				t.Fatalf("cannot read the store: %s", err)
			}
			if has != tc.wantWritten {
				t.Errorf("want written %v, got %v", tc.wantWritten, has)
			}
		})
	}
}
