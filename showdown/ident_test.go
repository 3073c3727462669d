package showdown

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hi", "hi"},
		{"HI", "hi"},
		{"$&@*%$HI   ^4åå", "hi4"},
		{"#Ann/ika ^_^", "annika"},
		{"T e s tROO  &%# m", "testroom"},
		{"", ""},
		{"☆★~", ""},
	}

	for _, test := range tests {
		if got := Normalize(test.input); got != test.want {
			t.Errorf("Normalize(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"hi", "$&@*%$HI   ^4åå", "#Ann/ika ^_^", "", "åäö"}
	for _, input := range inputs {
		once := Normalize(input)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", input, twice, once)
		}
	}
}
