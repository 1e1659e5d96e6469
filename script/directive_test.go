package script

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseDirective(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  Directive
		err   string
	}{
		{input: `soft=True`, want: Directive{Soft: ptr(true)}},
		{input: `soft=False`, want: Directive{Soft: ptr(false)}},
		{input: ` soft = true `, want: Directive{Soft: ptr(true)}},
		{input: `deferrable=True`, want: Directive{Deferrable: ptr(true)}},
		{input: `optional=1`, want: Directive{Optional: ptr(true)}},
		{input: `optional=0`, want: Directive{Optional: ptr(false)}},
		{input: `soft=True; optional=True`, want: Directive{Soft: ptr(true), Optional: ptr(true)}},
		{input: `soft=True, soft=False`, want: Directive{Soft: ptr(false)}},
		{input: `other=True`, want: Directive{}},
		{input: ``, want: Directive{}},
		{input: `;`, want: Directive{}},
		{input: `soft`, err: `expected key=value, got "soft"`},
		{input: `soft=yes`, err: `soft: invalid boolean "yes"`},
		{input: `soft==True`, err: `soft: invalid boolean "=True"`},
		{input: `os.system("x")=True`, err: `invalid key "os.system(\"x\")"`},
		{input: `1soft=True`, err: `invalid key "1soft"`},
	} {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseDirective(tc.input)
			if tc.err != `` {
				assert.EqualError(t, err, tc.err)
				return
			}
			assert.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != `` {
				t.Errorf("unexpected directive (-want +got):\n%s", diff)
			}
		})
	}
}
