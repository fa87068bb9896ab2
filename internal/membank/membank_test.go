package membank

import "testing"

func TestNewPanicsOnNonPositiveSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero size")
		}
	}()
	New("ram", 0x0000, 0x1FFF, 0)
}

func TestNewFromBytesPanicsOnEmptySlice(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty backing slice")
		}
	}()
	NewFromBytes("prg", 0x8000, 0xFFFF, nil)
}

func TestIsAddressInRange(t *testing.T) {
	b := New("ram", 0x0000, 0x1FFF, 0x0800)

	if !b.IsAddressInRange(0x0000) {
		t.Error("expected start address to be in range")
	}
	if !b.IsAddressInRange(0x1FFF) {
		t.Error("expected end address to be in range")
	}
	if b.IsAddressInRange(0x2000) {
		t.Error("expected address past end to be out of range")
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	b := New("ram", 0x0000, 0x07FF, 0x0800)

	b.Write(0x0042, 0xAB)
	if got := b.Read(0x0042); got != 0xAB {
		t.Errorf("Read(0x0042) = %#02x, want 0xAB", got)
	}
}

func TestMirroring(t *testing.T) {
	// 2KiB RAM mirrored across an 8KiB window, as used for $0000-$1FFF.
	b := New("ram", 0x0000, 0x1FFF, 0x0800)

	b.Write(0x0000, 0x55)

	for _, mirror := range []uint16{0x0800, 0x1000, 0x1800} {
		if got := b.Read(mirror); got != 0x55 {
			t.Errorf("Read(%#04x) = %#02x, want 0x55 (mirror of $0000)", mirror, got)
		}
	}
}

func TestNewFromBytesAliasesBackingSlice(t *testing.T) {
	data := make([]uint8, 0x4000)
	b := NewFromBytes("prg", 0x8000, 0xBFFF, data)

	b.Write(0x8000, 0x10)
	if data[0] != 0x10 {
		t.Fatal("expected NewFromBytes to alias the backing slice rather than copy it")
	}
}

func TestAccessors(t *testing.T) {
	b := New("chr", 0x0000, 0x1FFF, 0x2000)

	if b.Name() != "chr" {
		t.Errorf("Name() = %q, want %q", b.Name(), "chr")
	}
	if b.StartAddr() != 0x0000 {
		t.Errorf("StartAddr() = %#04x, want 0x0000", b.StartAddr())
	}
	if b.EndAddr() != 0x1FFF {
		t.Errorf("EndAddr() = %#04x, want 0x1FFF", b.EndAddr())
	}
}
