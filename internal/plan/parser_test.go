package plan

import "testing"

func TestParseIntensityZone(t *testing.T) {
	tests := []struct {
		text     string
		wantZone int
		wantOK   bool
	}{
		{"Z2 endurance ride", 2, true},
		{"zone 4", 4, true},
		{"Zone 5 repeats", 5, true},
		{"tempo intervals", 3, true},
		{"recovery spin", 1, true},
		{"very easy jog", 1, true}, // "very easy" wins over "easy"
		{"easy run", 2, true},
		{"threshold work", 4, true},
		{"hard efforts", 4, true},
		{"VO2max session", 5, true},
		{"sweet spot", 4, true},
		{"easy with some z4 surges", 4, true}, // explicit zone beats keywords
		{"45 minutes on the bike", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			zone, ok := ParseIntensityZone(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ParseIntensityZone(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && zone != tt.wantZone {
				t.Errorf("ParseIntensityZone(%q) = %d, want %d", tt.text, zone, tt.wantZone)
			}
		})
	}
}

func TestParseIntervalStructure(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		notes     string
		intensity string
		checkFn   func(t *testing.T, st *IntervalStructure)
	}{
		{
			name:  "minutes with trailing intensity",
			title: "3x10min tempo",
			checkFn: func(t *testing.T, st *IntervalStructure) {
				if st == nil {
					t.Fatal("expected a structure, got nil")
				}
				if st.Repeats != 3 || st.DurationSec != 600 {
					t.Errorf("got %dx%ds, want 3x600s", st.Repeats, st.DurationSec)
				}
				if st.TargetZone == nil || *st.TargetZone != 3 {
					t.Errorf("TargetZone = %v, want 3", st.TargetZone)
				}
			},
		},
		{
			name:  "prime shorthand for minutes",
			title: "6x1' hard",
			checkFn: func(t *testing.T, st *IntervalStructure) {
				if st == nil {
					t.Fatal("expected a structure, got nil")
				}
				if st.Repeats != 6 || st.DurationSec != 60 {
					t.Errorf("got %dx%ds, want 6x60s", st.Repeats, st.DurationSec)
				}
				if st.TargetZone == nil || *st.TargetZone != 4 {
					t.Errorf("TargetZone = %v, want 4", st.TargetZone)
				}
			},
		},
		{
			name:  "seconds with at-sign zone",
			title: "4x30sec sprints @ max",
			checkFn: func(t *testing.T, st *IntervalStructure) {
				if st == nil {
					t.Fatal("expected a structure, got nil")
				}
				if st.Repeats != 4 || st.DurationSec != 30 {
					t.Errorf("got %dx%ds, want 4x30s", st.Repeats, st.DurationSec)
				}
				if st.TargetZone == nil || *st.TargetZone != 5 {
					t.Errorf("TargetZone = %v, want 5", st.TargetZone)
				}
			},
		},
		{
			name:  "spaced form",
			title: "Bike: 4 x 8 min @ Z4",
			checkFn: func(t *testing.T, st *IntervalStructure) {
				if st == nil {
					t.Fatal("expected a structure, got nil")
				}
				if st.Repeats != 4 || st.DurationSec != 480 {
					t.Errorf("got %dx%ds, want 4x480s", st.Repeats, st.DurationSec)
				}
				if st.TargetZone == nil || *st.TargetZone != 4 {
					t.Errorf("TargetZone = %v, want 4", st.TargetZone)
				}
			},
		},
		{
			name:      "zone falls back to intensity field",
			title:     "5x3min",
			intensity: "threshold",
			checkFn: func(t *testing.T, st *IntervalStructure) {
				if st == nil {
					t.Fatal("expected a structure, got nil")
				}
				if st.TargetZone == nil || *st.TargetZone != 4 {
					t.Errorf("TargetZone = %v, want 4", st.TargetZone)
				}
			},
		},
		{
			name:  "no zone signal leaves target nil",
			title: "5x3min",
			checkFn: func(t *testing.T, st *IntervalStructure) {
				if st == nil {
					t.Fatal("expected a structure, got nil")
				}
				if st.TargetZone != nil {
					t.Errorf("TargetZone = %d, want nil", *st.TargetZone)
				}
			},
		},
		{
			name:  "title wins over notes",
			title: "3x8min @ z4",
			notes: "if tired do 5x5min easy instead",
			checkFn: func(t *testing.T, st *IntervalStructure) {
				if st == nil {
					t.Fatal("expected a structure, got nil")
				}
				if st.Repeats != 3 || st.DurationSec != 480 {
					t.Errorf("got %dx%ds, want 3x480s", st.Repeats, st.DurationSec)
				}
			},
		},
		{
			name:  "structure found in notes when title is plain",
			title: "Track session",
			notes: "Main set 8x2min at threshold",
			checkFn: func(t *testing.T, st *IntervalStructure) {
				if st == nil {
					t.Fatal("expected a structure, got nil")
				}
				if st.Repeats != 8 || st.DurationSec != 120 {
					t.Errorf("got %dx%ds, want 8x120s", st.Repeats, st.DurationSec)
				}
			},
		},
		{
			name:  "distance repeats do not parse",
			title: "8x400m repeats",
			checkFn: func(t *testing.T, st *IntervalStructure) {
				if st != nil {
					t.Errorf("expected nil, got %+v", st)
				}
			},
		},
		{
			name:  "repeat count out of range",
			title: "25x2min",
			checkFn: func(t *testing.T, st *IntervalStructure) {
				if st != nil {
					t.Errorf("expected nil, got %+v", st)
				}
			},
		},
		{
			name:  "repeat duration out of range",
			title: "2x90min",
			checkFn: func(t *testing.T, st *IntervalStructure) {
				if st != nil {
					t.Errorf("expected nil, got %+v", st)
				}
			},
		},
		{
			name: "empty texts",
			checkFn: func(t *testing.T, st *IntervalStructure) {
				if st != nil {
					t.Errorf("expected nil, got %+v", st)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := ParseIntervalStructure(tt.title, tt.notes, tt.intensity)
			tt.checkFn(t, st)
		})
	}
}

func TestParseIntervalStructureRaw(t *testing.T) {
	st := ParseIntervalStructure("Workout: 3x10min @ tempo", "", "")
	if st == nil {
		t.Fatal("expected a structure, got nil")
	}
	if st.Raw != "3x10min" {
		t.Errorf("Raw = %q, want %q", st.Raw, "3x10min")
	}
}
