package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  La Révolution française  ", "la-revolution-francaise"},
		{"Œuvres d'art & peintures", "oeuvres-d-art-peintures"},
		{"Éducation: l'école", "education-l-ecole"},
		{"Go 1.24 --- release!", "go-1-24-release"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Make(tt.input); got != tt.expected {
			t.Errorf("Make(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
