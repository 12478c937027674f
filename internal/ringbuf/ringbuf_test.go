package ringbuf

import "testing"

func TestAppendRetainsSuffixAtCapacity(t *testing.T) {
	cases := []struct {
		name string
		cap  int
		in   string
		want string
	}{
		{"fits", 10, "hello", "hello"},
		{"exact", 5, "hello", "hello"},
		{"overflow-single-append", 5, "hello world", "world"},
		{"overflow-across-appends", 5, "", "world"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := New(tc.cap)
			if tc.name == "overflow-across-appends" {
				b.Append([]byte("hel"))
				b.Append([]byte("lo w"))
				b.Append([]byte("orld"))
			} else {
				b.Append([]byte(tc.in))
			}
			got := string(b.Bytes())
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
			if b.Len() != len(tc.want) {
				t.Fatalf("len = %d want %d", b.Len(), len(tc.want))
			}
		})
	}
}

func TestConsumeBeforeAndConsume(t *testing.T) {
	b := New(0)
	b.Append([]byte("prefix|match|suffix"))

	before := b.ConsumeBefore(7)
	if string(before) != "prefix|" {
		t.Fatalf("before = %q", before)
	}

	matched := b.Consume(5)
	if string(matched) != "match" {
		t.Fatalf("matched = %q", matched)
	}

	if got := b.AsStrLossy(); got != "|suffix" {
		t.Fatalf("remaining = %q", got)
	}
}

func TestTailDoesNotMutate(t *testing.T) {
	b := New(0)
	b.Append([]byte("0123456789"))

	tail := b.Tail(4)
	if string(tail) != "6789" {
		t.Fatalf("tail = %q", tail)
	}
	if b.Len() != 10 {
		t.Fatalf("Tail mutated buffer, len = %d", b.Len())
	}
}

func TestAsStrLossyReplacesInvalidUTF8(t *testing.T) {
	b := New(0)
	b.Append([]byte{'o', 'k', 0xff, 'd'})

	got := b.AsStrLossy()
	want := "ok�d"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestClearAdvancesBaseMonotonically(t *testing.T) {
	b := New(0)
	b.Append([]byte("abc"))
	b.Clear()
	if b.Len() != 0 {
		t.Fatalf("len after clear = %d", b.Len())
	}
	if b.Base() != 3 {
		t.Fatalf("base after clear = %d, want 3", b.Base())
	}
	b.Append([]byte("def"))
	if b.Base() != 3 || b.End() != 6 {
		t.Fatalf("base/end = %d/%d, want 3/6", b.Base(), b.End())
	}
}
