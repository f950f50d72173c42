package util

import "testing"

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"First Name", "first_name"},
		{"  Total ($)  ", "total"},
		{"a--b__c", "a_b_c"},
		{"___", ""},
		{"", ""},
		{"Already_snake", "already_snake"},
		{"Tab\tSeparated", "tab_separated"},
		{"Größe (cm)", "größe_cm"},
		{"Price2024", "price2024"},
		{"été", "été"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := NormalizeLabel(tc.in); got != tc.want {
				t.Errorf("NormalizeLabel(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeLabelIdempotent(t *testing.T) {
	for _, in := range []string{"First Name", " __x__ y ", "Größe (cm)", "A.B.C", "ÀÉÎ"} {
		once := NormalizeLabel(in)
		if twice := NormalizeLabel(once); twice != once {
			t.Errorf("NormalizeLabel not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
