package transform

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecoratorTransform(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "function",
			src:  "@a\n@b.c(1)\ndef f():\n    pass\n",
			want: "def f():\n    pass\nf = a(b.c(1)(f))\n",
		},
		{
			name: "class",
			src:  "@register\nclass C:\n    pass\n",
			want: "class C:\n    pass\nC = register(C)\n",
		},
		{
			name: "method",
			src:  "class C:\n    @staticmethod\n    def m():\n        pass\n",
			want: "class C:\n    def m():\n        pass\n    m = staticmethod(m)\n",
		},
		{
			name: "cdef_untouched",
			src:  "@a\ncdef int f():\n    return 1\n",
			want: "@a\ncdef int f():\n    return 1\n",
		},
		{
			name: "undecorated",
			src:  "def f():\n    pass\n",
			want: "def f():\n    pass\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, lower(t, tt.src, "NormalizeTree", "DecoratorTransform")); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}
