package sentiment_test

import (
	"testing"

	"github.com/MrWong99/infobot/pkg/provider/sentiment"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.4, 0.4},
		{-0.4, -0.4},
		{1, 1},
		{3.5, 1},
		{-2, -1},
	}
	for _, tt := range tests {
		if got := sentiment.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		want    float64
		wantErr bool
	}{
		{name: "bare positive", answer: "0.75", want: 0.75},
		{name: "bare negative", answer: "-0.3", want: -0.3},
		{name: "leading dot", answer: ".5", want: 0.5},
		{name: "prose wrapped", answer: "Score: 0.6.", want: 0.6},
		{name: "out of range", answer: "5", want: 1},
		{name: "below range", answer: "-12.5", want: -1},
		{name: "no number", answer: "positive", wantErr: true},
		{name: "empty", answer: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sentiment.ParseScore(tt.answer)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScore: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseScore(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}
