package deploy

import (
	"testing"
	"time"
)

func TestParseWhen(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		expr    string
		want    time.Time
		wantErr bool
	}{
		{expr: "now", want: now},
		{expr: "today", want: now},
		{expr: "current", want: now},
		{expr: "+30s", want: now.Add(30 * time.Second)},
		{expr: "+15m", want: now.Add(15 * time.Minute)},
		{expr: "+2h", want: now.Add(2 * time.Hour)},
		{expr: "-1d", want: now.Add(-24 * time.Hour)},
		{expr: "+1w", want: now.Add(7 * 24 * time.Hour)},
		{expr: "2026-09-01T09:00:00Z", want: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)},
		{expr: "2026-09-01", want: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{expr: "tomorrow", wantErr: true},
		{expr: "+2x", wantErr: true},
		{expr: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseWhen(tt.expr, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.expr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseWhen(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}
