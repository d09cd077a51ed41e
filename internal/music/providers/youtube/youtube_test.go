package youtube

import "testing"

func TestVideoID(t *testing.T) {
	cases := []struct {
		in   string
		id   string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=abc123&t=42s", "abc123", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=xyz", "xyz", true},
		{"https://music.youtube.com/watch?v=song1", "song1", true},
		{"https://www.youtube.com/shorts/short99", "short99", true},
		{"https://www.youtube.com/playlist?list=PL123", "", false},
		{"https://example.com/watch?v=nope", "", false},
		{"never gonna give you up", "", false},
		{"https://youtu.be/", "", false},
	}
	for _, c := range cases {
		id, ok := VideoID(c.in)
		if id != c.id || ok != c.ok {
			t.Errorf("VideoID(%q) = (%q, %v), want (%q, %v)", c.in, id, ok, c.id, c.ok)
		}
	}
}

func TestCanExpand(t *testing.T) {
	p := New("")
	if !p.CanExpand("https://www.youtube.com/playlist?list=PL123") {
		t.Error("playlist link should be expandable")
	}
	if !p.CanExpand("https://www.youtube.com/watch?v=abc&list=PL123") {
		t.Error("watch link with list param should be expandable")
	}
	if p.CanExpand("https://www.youtube.com/watch?v=abc") {
		t.Error("plain watch link should not be expandable")
	}
	if p.CanExpand("lofi beats to relax to") {
		t.Error("free text should not be expandable")
	}
}
