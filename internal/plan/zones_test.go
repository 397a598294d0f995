package plan

import "testing"

func TestFromMaxHR(t *testing.T) {
	zones := FromMaxHR(190)

	expected := ZoneTable{
		{95, 114},
		{114, 133},
		{133, 152},
		{152, 171},
		{171, 190},
	}

	if zones != expected {
		t.Errorf("FromMaxHR(190) = %v, want %v", zones, expected)
	}
	if !zones.Valid() {
		t.Error("derived zone table should be valid")
	}
}

func TestZoneTableValid(t *testing.T) {
	tests := []struct {
		name  string
		table ZoneTable
		want  bool
	}{
		{
			name:  "derived table",
			table: FromMaxHR(185),
			want:  true,
		},
		{
			name: "gap between zones",
			table: ZoneTable{
				{95, 114}, {115, 133}, {133, 152}, {152, 171}, {171, 190},
			},
			want: false,
		},
		{
			name: "inverted band",
			table: ZoneTable{
				{95, 114}, {114, 110}, {110, 152}, {152, 171}, {171, 190},
			},
			want: false,
		},
		{
			name:  "zero table",
			table: ZoneTable{},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.table.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZoneFor(t *testing.T) {
	zones := FromMaxHR(190) // floors: 95, 114, 133, 152, 171

	tests := []struct {
		hr   float64
		want int
	}{
		{80, 1}, // below zone 1 floor still classifies as zone 1
		{100, 1},
		{120, 2},
		{140, 3},
		{160, 4},
		{180, 5},
		{200, 5}, // above max HR stays zone 5
		{133, 3}, // floor is inclusive
		{132.9, 2},
	}

	for _, tt := range tests {
		if got := zones.ZoneFor(tt.hr); got != tt.want {
			t.Errorf("ZoneFor(%.1f) = %d, want %d", tt.hr, got, tt.want)
		}
	}
}

func TestZoneTableContains(t *testing.T) {
	zones := FromMaxHR(190)

	// Band upper bound is exclusive: 114 belongs to zone 2, not zone 1
	if zones.Contains(1, 114) {
		t.Error("Contains(1, 114) = true, want false (exclusive upper bound)")
	}
	if !zones.Contains(2, 114) {
		t.Error("Contains(2, 114) = false, want true")
	}
	if zones.Contains(0, 120) || zones.Contains(6, 120) {
		t.Error("Contains should be false for out-of-range zones")
	}
}
