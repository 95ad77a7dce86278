package textutil

import "testing"

func TestHeadAndTailRunes(t *testing.T) {
	s := "第一集开场"
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"head within", HeadRunes(s, 2), "第一"},
		{"head beyond", HeadRunes(s, 10), s},
		{"head zero", HeadRunes(s, 0), ""},
		{"tail within", TailRunes(s, 2), "开场"},
		{"tail beyond", TailRunes(s, 99), s},
		{"tail zero", TailRunes(s, 0), ""},
		{"tail empty", TailRunes("", 3), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("got %q want %q", tt.got, tt.want)
			}
		})
	}
}

func TestSliceRunesClamps(t *testing.T) {
	s := "ab中文cd"
	tests := []struct {
		start, end int
		want       string
	}{
		{0, 6, s},
		{2, 4, "中文"},
		{-5, 3, "ab中"},
		{4, 100, "cd"},
		{5, 2, ""},
		{6, 6, ""},
	}
	for _, tt := range tests {
		if got := SliceRunes(s, tt.start, tt.end); got != tt.want {
			t.Fatalf("SliceRunes(%d,%d) = %q want %q", tt.start, tt.end, got, tt.want)
		}
	}
	if RuneLen(s) != 6 {
		t.Fatalf("unexpected rune length %d", RuneLen(s))
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"  剑来_大纲  ":       "剑来_大纲",
		"a/b:c*d?":        "a-b-c-d",
		"../escape":       "-escape",
		"name<with>|pipe": "namewithpipe",
		"":                "",
	}
	for in, want := range tests {
		if got := SanitizeFileName(in); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q want %q", in, got, want)
		}
	}
}
