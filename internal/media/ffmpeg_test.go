package media

import (
	"testing"
	"time"
)

func TestParseFFmpegDuration(t *testing.T) {
	cases := []struct {
		name    string
		output  string
		want    time.Duration
		wantErr bool
	}{
		{
			name:   "centisecond_field",
			output: "Input #0\n  Duration: 00:03:25.48, start: 0.000000, bitrate: 1411 kb/s",
			want:   3*time.Minute + 25*time.Second + 480*time.Millisecond,
		},
		{
			name:   "hours",
			output: "  Duration: 01:02:03.04, start",
			want:   time.Hour + 2*time.Minute + 3*time.Second + 40*time.Millisecond,
		},
		{
			name:   "millisecond_field",
			output: "Duration: 00:00:10.500,",
			want:   10*time.Second + 500*time.Millisecond,
		},
		{
			name:    "missing",
			output:  "nothing useful here",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseFFmpegDuration(tc.output)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseFFmpegDuration=%v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFFmpegDuration error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("parseFFmpegDuration=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseSilences(t *testing.T) {
	output := `[silencedetect @ 0x5f] silence_start: 10.5
[silencedetect @ 0x5f] silence_end: 11.2 | silence_duration: 0.7
[silencedetect @ 0x5f] silence_start: 60
[silencedetect @ 0x5f] silence_end: 61.5 | silence_duration: 1.5
[silencedetect @ 0x5f] silence_start: 119.9
`
	silences := parseSilences(output)
	if len(silences) != 2 {
		t.Fatalf("got %d silences, want 2 (trailing start dropped)", len(silences))
	}
	if silences[0].Start != 10500*time.Millisecond || silences[0].End != 11200*time.Millisecond {
		t.Fatalf("first silence = %+v", silences[0])
	}
	if silences[1].Start != 60*time.Second {
		t.Fatalf("second silence start = %v, want 60s", silences[1].Start)
	}
	mid := silences[0].Midpoint()
	if mid != 10850*time.Millisecond {
		t.Fatalf("midpoint = %v, want 10.85s", mid)
	}
}

func TestParseSilencesEmpty(t *testing.T) {
	if got := parseSilences("Duration: 00:01:00.00"); len(got) != 0 {
		t.Fatalf("got %d silences from output without silencedetect lines", len(got))
	}
}

func TestFormatFFmpegTime(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00.000"},
		{90*time.Second + 250*time.Millisecond, "00:01:30.250"},
		{time.Hour + 59*time.Minute + 59*time.Second, "01:59:59.000"},
	}
	for _, tc := range cases {
		if got := formatFFmpegTime(tc.d); got != tc.want {
			t.Fatalf("formatFFmpegTime(%v)=%q, want %q", tc.d, got, tc.want)
		}
	}
}
