package errors

import (
	"math"
	"testing"
)

func TestValidateCanvas(t *testing.T) {
	tests := []struct {
		name    string
		w, h    float64
		wantErr bool
	}{
		{"typical", 800, 600, false},
		{"minimum", MinCanvasSize, MinCanvasSize, false},
		{"too small", 10, 600, true},
		{"too large", 800, MaxCanvasSize + 1, true},
		{"nan", math.NaN(), 600, true},
		{"inf", 800, math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCanvas(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCanvas(%v, %v) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateRowCount(t *testing.T) {
	if err := ValidateRowCount(10); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateRowCount(MaxDatasetRows + 1); !Is(err, ErrCodeInvalidDataset) {
		t.Errorf("expected INVALID_DATASET, got %v", err)
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"chart.svg", false},
		{"out/chart.png", false},
		{"/tmp/chart.svg", false},
		{"", true},
		{"../chart.svg", true},
		{"chart\x00.svg", true},
	}
	for _, tt := range tests {
		err := ValidatePath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}
