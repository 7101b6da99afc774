package sanitize

import "testing"

func TestTextStripsTags(t *testing.T) {
	cases := map[string]string{
		"<b>Casa</b> con jardín":           "Casa con jardín",
		"  <script>alert(1)</script>Hola ": "Hola",
		"Precio < 100 & negociable":        "Precio < 100 & negociable",
	}
	for in, want := range cases {
		if got := Text(in); got != want {
			t.Errorf("Text(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextPtrNil(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatalf("expected nil")
	}
}
