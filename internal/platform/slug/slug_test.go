package slug

import "testing"

func TestMakeAndKey(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in, file, key string
	}{
		{"Cut caffeine after 2pm", "cut-caffeine-after-2pm", "cut_caffeine_after_2pm"},
		{"  Evening Walk  ", "evening-walk", "evening_walk"},
		{"screens_off_1h", "screens-off-1h", "screens_off_1h"},
		{"!!!", "untitled", ""},
	}
	for _, tc := range cases {
		if got := Make(tc.in); got != tc.file {
			t.Fatalf("Make(%q) = %q, want %q", tc.in, got, tc.file)
		}
		if got := Key(tc.in); got != tc.key {
			t.Fatalf("Key(%q) = %q, want %q", tc.in, got, tc.key)
		}
	}
}
