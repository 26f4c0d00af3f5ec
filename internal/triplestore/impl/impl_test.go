package impl

import (
	"bytes"
	"fmt"
	"testing"
)

func ExampleID() {
	// create a new id -- which isn't valid
	var id ID
	fmt.Println(id)
	fmt.Println(id.Valid())

	// increment the id -- it is now valid
	fmt.Println(id.Inc())
	fmt.Println(id.Valid())

	// Output: ID(0)
	// false
	// ID(1)
	// true
}

func TestEncodeIDs_Order(t *testing.T) {
	var id ID
	prev := EncodeIDs(id)
	for i := 0; i < 1<<12; i++ {
		next := EncodeIDs(id.Inc())
		if bytes.Compare(prev, next) >= 0 {
			t.Fatalf("encoding of %s does not sort after its predecessor", id)
		}
		prev = next
	}
}

func TestUnmarshalIDs(t *testing.T) {
	src := EncodeIDs(1, 2, 300)

	var a, b, c ID
	if err := UnmarshalIDs(src, &a, &b, &c); err != nil {
		t.Fatal(err)
	}
	if a != 1 || b != 2 || c != 300 {
		t.Errorf("UnmarshalIDs() = %d, %d, %d", a, b, c)
	}

	if err := UnmarshalIDs(src[:IDLen], &a, &b); err == nil {
		t.Error("UnmarshalIDs() on short input did not fail")
	}
}

func TestDatum_RoundTrip(t *testing.T) {
	want := Datum{Value: "Simulation", Language: "en"}
	b, err := DatumAsByte(want)
	if err != nil {
		t.Fatal(err)
	}
	var got Datum
	if err := ByteAsDatum(&got, b); err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("ByteAsDatum() = %v, want %v", got, want)
	}
}
