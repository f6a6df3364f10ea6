package dedupe

import (
	"reflect"
	"testing"
)

func TestUnique(t *testing.T) {
	tests := []struct {
		name string
		in   []uint64
		want []uint64
	}{
		{"no duplicates", []uint64{3, 1, 2}, []uint64{3, 1, 2}},
		{"overlapping pages", []uint64{1, 2, 3, 3, 4, 2, 5}, []uint64{1, 2, 3, 4, 5}},
		{"all identical", []uint64{7, 7, 7}, []uint64{7}},
		{"empty", []uint64{}, []uint64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unique(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unique(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestUniqueIsIdempotent(t *testing.T) {
	in := []string{"a", "b", "a", "c", "b"}
	once := Unique(in)
	twice := Unique(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Unique(Unique(x)) = %v, want %v", twice, once)
	}
}

func TestUniqueNil(t *testing.T) {
	if got := Unique[int](nil); got != nil {
		t.Errorf("Unique(nil) = %v, want nil", got)
	}
}
