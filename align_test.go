package dbuswire

import "testing"

func TestPadToNoopForOne(t *testing.T) {
	for _, buf := range [][]byte{nil, {}, {1}, {1, 2, 3}} {
		got := padTo(append([]byte(nil), buf...), 1)
		if len(got) != len(buf) {
			t.Errorf("padTo(%v, 1) = %v, want no-op", buf, got)
		}
	}
}

func TestPadToAligns(t *testing.T) {
	for _, n := range []int{2, 4, 8} {
		for size := 0; size < 20; size++ {
			buf := make([]byte, size)
			got := padTo(buf, n)
			if len(got)%n != 0 {
				t.Fatalf("padTo(size=%d, %d) = len %d, not a multiple of %d", size, n, len(got), n)
			}
			for _, b := range got[size:] {
				if b != 0 {
					t.Fatalf("padTo(size=%d, %d) appended non-zero byte", size, n)
				}
			}
		}
	}
}

func TestAdvanceTo(t *testing.T) {
	tt := []struct {
		cursor, align, want int
	}{
		{0, 8, 0},
		{1, 8, 8},
		{7, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{3, 1, 3},
		{3, 4, 4},
	}
	for _, tc := range tt {
		if got := advanceTo(tc.cursor, tc.align); got != tc.want {
			t.Errorf("advanceTo(%d, %d) = %d, want %d", tc.cursor, tc.align, got, tc.want)
		}
	}
}
