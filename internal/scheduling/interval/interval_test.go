package interval

import (
	"errors"
	"testing"
	"time"
)

var base = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return base.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func iv(startHour, startMin, endHour, endMin int) Interval {
	return MustNew(at(startHour, startMin), at(endHour, endMin))
}

func TestNew(t *testing.T) {
	if _, err := New(at(9, 0), at(10, 0)); err != nil {
		t.Fatalf("valid interval rejected: %v", err)
	}

	if _, err := New(at(10, 0), at(10, 0)); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("zero-length interval: got %v, want ErrInvalidInterval", err)
	}

	if _, err := New(at(11, 0), at(10, 0)); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("inverted interval: got %v, want ErrInvalidInterval", err)
	}
}

func TestIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{
			name: "overlapping",
			a:    iv(9, 0, 11, 0),
			b:    iv(10, 0, 12, 0),
			want: true,
		},
		{
			name: "contained",
			a:    iv(9, 0, 12, 0),
			b:    iv(10, 0, 11, 0),
			want: true,
		},
		{
			name: "touching endpoints are disjoint",
			a:    iv(9, 0, 10, 0),
			b:    iv(10, 0, 11, 0),
			want: false,
		},
		{
			name: "disjoint",
			a:    iv(9, 0, 10, 0),
			b:    iv(11, 0, 12, 0),
			want: false,
		},
		{
			name: "identical",
			a:    iv(9, 0, 10, 0),
			b:    iv(9, 0, 10, 0),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
			if got := tt.b.Intersects(tt.a); got != tt.want {
				t.Errorf("Intersects not symmetric: reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want []Interval
	}{
		{
			name: "no overlap returns original",
			a:    iv(9, 0, 10, 0),
			b:    iv(11, 0, 12, 0),
			want: []Interval{iv(9, 0, 10, 0)},
		},
		{
			name: "middle bite splits in two",
			a:    iv(9, 0, 12, 0),
			b:    iv(10, 0, 11, 0),
			want: []Interval{iv(9, 0, 10, 0), iv(11, 0, 12, 0)},
		},
		{
			name: "left overlap trims start",
			a:    iv(9, 0, 12, 0),
			b:    iv(8, 0, 10, 0),
			want: []Interval{iv(10, 0, 12, 0)},
		},
		{
			name: "right overlap trims end",
			a:    iv(9, 0, 12, 0),
			b:    iv(11, 0, 13, 0),
			want: []Interval{iv(9, 0, 11, 0)},
		},
		{
			name: "full cover leaves nothing",
			a:    iv(9, 0, 12, 0),
			b:    iv(8, 0, 13, 0),
			want: []Interval{},
		},
		{
			name: "exact cover leaves nothing",
			a:    iv(9, 0, 12, 0),
			b:    iv(9, 0, 12, 0),
			want: []Interval{},
		},
		{
			name: "aligned start drops zero-length head",
			a:    iv(9, 0, 12, 0),
			b:    iv(9, 0, 10, 0),
			want: []Interval{iv(10, 0, 12, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Subtract(tt.b)
			assertIntervals(t, got, tt.want)
		})
	}
}

// Subtracting b from a and adding back their overlap must reconstruct a.
func TestSubtractCoverage(t *testing.T) {
	cases := []struct{ a, b Interval }{
		{iv(9, 0, 12, 0), iv(10, 0, 11, 0)},
		{iv(9, 0, 12, 0), iv(8, 0, 10, 30)},
		{iv(9, 0, 12, 0), iv(11, 15, 14, 0)},
		{iv(9, 0, 12, 0), iv(13, 0, 14, 0)},
		{iv(9, 0, 12, 0), iv(9, 0, 12, 0)},
	}

	for _, c := range cases {
		pieces := c.a.Subtract(c.b)
		if overlap, ok := c.a.Intersection(c.b); ok {
			pieces = append(pieces, overlap)
		}
		reunion := MergeOverlapping(pieces)
		assertIntervals(t, reunion, []Interval{c.a})
	}
}

func TestSubtractMany(t *testing.T) {
	free := SubtractMany(iv(9, 0, 17, 0), []Interval{
		iv(12, 0, 13, 0),
		iv(10, 0, 10, 30),
		iv(12, 30, 13, 30), // overlaps previous busy block
	})
	want := []Interval{
		iv(9, 0, 10, 0),
		iv(10, 30, 12, 0),
		iv(13, 30, 17, 0),
	}
	assertIntervals(t, free, want)
}

func TestSubtractManyEmptyBusy(t *testing.T) {
	free := SubtractMany(iv(9, 0, 17, 0), nil)
	assertIntervals(t, free, []Interval{iv(9, 0, 17, 0)})
}

func TestMergeOverlapping(t *testing.T) {
	tests := []struct {
		name  string
		input []Interval
		want  []Interval
	}{
		{
			name:  "empty",
			input: nil,
			want:  []Interval{},
		},
		{
			name:  "single",
			input: []Interval{iv(9, 0, 10, 0)},
			want:  []Interval{iv(9, 0, 10, 0)},
		},
		{
			name:  "unsorted disjoint",
			input: []Interval{iv(11, 0, 12, 0), iv(9, 0, 10, 0)},
			want:  []Interval{iv(9, 0, 10, 0), iv(11, 0, 12, 0)},
		},
		{
			name:  "overlapping pair",
			input: []Interval{iv(9, 0, 11, 0), iv(10, 0, 12, 0)},
			want:  []Interval{iv(9, 0, 12, 0)},
		},
		{
			name:  "touching pair coalesces",
			input: []Interval{iv(9, 0, 10, 0), iv(10, 0, 11, 0)},
			want:  []Interval{iv(9, 0, 11, 0)},
		},
		{
			name:  "contained interval absorbed",
			input: []Interval{iv(9, 0, 12, 0), iv(10, 0, 11, 0)},
			want:  []Interval{iv(9, 0, 12, 0)},
		},
		{
			name: "chain of three",
			input: []Interval{
				iv(9, 0, 10, 30),
				iv(10, 0, 11, 30),
				iv(11, 0, 12, 0),
			},
			want: []Interval{iv(9, 0, 12, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeOverlapping(tt.input)
			assertIntervals(t, got, tt.want)

			for i := 1; i < len(got); i++ {
				if !got[i-1].End.Before(got[i].Start) && !got[i-1].End.Equal(got[i].Start) {
					t.Errorf("output not sorted/disjoint at %d: %v", i, got)
				}
				if got[i-1].Intersects(got[i]) {
					t.Errorf("adjacent outputs overlap: %v and %v", got[i-1], got[i])
				}
			}
		})
	}
}

func TestMergeOverlappingDoesNotMutateInput(t *testing.T) {
	input := []Interval{iv(11, 0, 12, 0), iv(9, 0, 10, 0)}
	MergeOverlapping(input)
	if !input[0].Start.Equal(at(11, 0)) {
		t.Error("input slice reordered")
	}
}

func TestExpand(t *testing.T) {
	got := iv(10, 0, 10, 30).Expand(10*time.Minute, 10*time.Minute)
	want := iv(9, 50, 10, 40)
	if got != want {
		t.Errorf("Expand = %v, want %v", got, want)
	}

	unchanged := iv(10, 0, 10, 30).Expand(-5*time.Minute, 0)
	if unchanged != iv(10, 0, 10, 30) {
		t.Errorf("negative padding must be ignored, got %v", unchanged)
	}
}

func TestContains(t *testing.T) {
	outer := iv(9, 0, 12, 0)
	if !outer.Contains(iv(9, 0, 12, 0)) {
		t.Error("interval must contain itself")
	}
	if !outer.Contains(iv(10, 0, 11, 0)) {
		t.Error("inner interval not contained")
	}
	if outer.Contains(iv(8, 59, 10, 0)) {
		t.Error("interval starting earlier must not be contained")
	}
	if outer.Contains(iv(11, 0, 12, 1)) {
		t.Error("interval ending later must not be contained")
	}
}

func assertIntervals(t *testing.T, got, want []Interval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d intervals %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range got {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Errorf("interval %d: got %v-%v, want %v-%v",
				i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
}
