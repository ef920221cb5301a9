package usage

import (
	"testing"
	"time"
)

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "mid month",
			in:   time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC),
			want: "2026-08",
		},
		{
			name: "single digit month zero padded",
			in:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			want: "2026-01",
		},
		{
			name: "last instant of month",
			in:   time.Date(2026, 12, 31, 23, 59, 59, 999999999, time.UTC),
			want: "2026-12",
		},
		{
			name: "non utc zone normalized to utc",
			in:   time.Date(2026, 9, 1, 0, 30, 0, 0, time.FixedZone("CEST", 2*3600)),
			want: "2026-08",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeriodKey(tt.in); got != tt.want {
				t.Errorf("PeriodKey(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
