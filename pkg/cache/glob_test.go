package cache

import "testing"

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"products:list:*", "products:list:limit:10:skip:0", true},
		{"products:list:*", "products:list:", true},
		{"products:list:*", "products:id:id:1", false},
		{"products:*", "products:list:name:a/b", true},
		{"*", "a/b/c", true},
		{"*:id:*", "products:id:id:7", true},
		{"a**b", "axxb", true},
		{"a*b", "axxbc", false},
		{"a*b*c", "abbbc", true},
		{"products:id:id:?", "products:id:id:7", true},
		{"products:id:id:?", "products:id:id:17", false},
		{"p?/x", "p//x", true},
		{"products:id:id:[0-4]", "products:id:id:3", true},
		{"products:id:id:[0-4]", "products:id:id:7", false},
		{"products:id:id:[^0-4]", "products:id:id:7", true},
		{"products:id:id:[^0-4]", "products:id:id:3", false},
		{"k[abc]", "kb", true},
		{"k[abc]", "kd", false},
		{"k[z-a]", "km", true},
		{`k\*`, "k*", true},
		{`k\*`, "kx", false},
		{`k[\]]`, "k]", true},
		{"", "", true},
		{"", "x", false},
		{"exact", "exact", true},
		{"exact", "exactly", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.key, func(t *testing.T) {
			if err := checkGlob(tt.pattern); err != nil {
				t.Fatalf("checkGlob(%q): %v", tt.pattern, err)
			}
			if got := matchGlob(tt.pattern, tt.key); got != tt.want {
				t.Errorf("matchGlob(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
			}
		})
	}
}

func TestCheckGlobRejectsMalformed(t *testing.T) {
	for _, pattern := range []string{"products:[list", `products:\`, `k[a\]`} {
		if err := checkGlob(pattern); err == nil {
			t.Errorf("checkGlob(%q) should fail", pattern)
		}
	}
}
