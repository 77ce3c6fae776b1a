package tokens

import "testing"

func TestEstimate(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"twelve chars", 3},
	}

	for _, tt := range tests {
		if got := Estimate(tt.text); got != tt.want {
			t.Errorf("Estimate(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestEstimateCounter_Count(t *testing.T) {
	c := NewEstimateCounter()

	if got := c.Count("abcdefgh"); got != 2 {
		t.Errorf("expected estimate 2, got %d", got)
	}
	if c.Encoding() != "estimate" {
		t.Errorf("unexpected encoding name %s", c.Encoding())
	}
}

func TestEstimateCounter_Monotonic(t *testing.T) {
	c := NewEstimateCounter()

	short := c.Count("a short sentence")
	long := c.Count("a noticeably longer sentence with many more words in it than the short one")
	if long <= short {
		t.Errorf("longer text should count more tokens: short=%d long=%d", short, long)
	}
}
