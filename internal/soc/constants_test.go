package soc

import (
	"errors"
	"testing"

	"github.com/socforge/socforge/internal/board"
)

func TestParseDottedQuad(t *testing.T) {
	tests := []struct {
		in      string
		want    [4]int
		wantErr bool
	}{
		{in: "192.168.1.100", want: [4]int{192, 168, 1, 100}},
		{in: "0.0.0.0", want: [4]int{0, 0, 0, 0}},
		{in: "1.2.3", wantErr: true},
		{in: "1.2.3.4.5", wantErr: true},
		{in: "1.2.3.x", wantErr: true},
		{in: "1.2.3.300", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDottedQuad(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAddress) {
				t.Fatalf("ParseDottedQuad(%q): expected ErrInvalidAddress, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDottedQuad(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseDottedQuad(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildConstantsWithoutEthernet(t *testing.T) {
	def, err := board.Lookup("sipeed_tang_nano_20k")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	opts := DefaultOptions()

	table, err := BuildConstants(def, &opts)
	if err != nil {
		t.Fatalf("build constants: %v", err)
	}
	for _, name := range []string{"REMOTEIP1", "REMOTEIP2", "REMOTEIP3", "REMOTEIP4"} {
		if _, ok := table.Get(name); ok {
			t.Fatalf("%s present without ethernet capability", name)
		}
	}
	id, ok := table.Get(IdentifierConstant)
	if !ok {
		t.Fatal("identifier constant missing")
	}
	if id != "Sipeed Tang Nano 20K Linux SoC" {
		t.Fatalf("unexpected identifier %v", id)
	}
}

func TestBuildConstantsRemoteIP(t *testing.T) {
	def := testBoard(board.CapEthernet)
	def.Name = "digilent_arty"
	opts := DefaultOptions()
	opts.RemoteIP = "192.168.1.100"

	table, err := BuildConstants(def, &opts)
	if err != nil {
		t.Fatalf("build constants: %v", err)
	}
	want := map[string]int{"REMOTEIP1": 192, "REMOTEIP2": 168, "REMOTEIP3": 1, "REMOTEIP4": 100}
	for name, octet := range want {
		got, ok := table.Get(name)
		if !ok {
			t.Fatalf("%s missing", name)
		}
		if got != octet {
			t.Fatalf("%s = %v, want %d", name, got, octet)
		}
	}
}

func TestBuildConstantsRemoteIPInvalid(t *testing.T) {
	def := testBoard(board.CapEthernet)
	def.Name = "digilent_arty"
	opts := DefaultOptions()
	opts.RemoteIP = "10.0.0"

	_, err := BuildConstants(def, &opts)
	if !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestBuildConstantsUnknownIdentifier(t *testing.T) {
	def := testBoard(board.CapSerial)
	def.Name = "unregistered_board"
	opts := DefaultOptions()

	_, err := BuildConstants(def, &opts)
	if !errors.Is(err, board.ErrUnknownIdentifier) {
		t.Fatalf("expected ErrUnknownIdentifier, got %v", err)
	}
}

func TestBuildConstantsSeedsBoardConstants(t *testing.T) {
	def := testBoard(board.CapSerial)
	def.Name = "sipeed_tang_nano_20k"
	def.SoCConstants = map[string]any{"CONFIG_BOOT_RETRIES": 3}
	opts := DefaultOptions()

	table, err := BuildConstants(def, &opts)
	if err != nil {
		t.Fatalf("build constants: %v", err)
	}
	if v, _ := table.Get("CONFIG_BOOT_RETRIES"); v != 3 {
		t.Fatalf("board constant not seeded: %v", v)
	}
}

func TestConstantTableRemoteIPIdempotence(t *testing.T) {
	table := NewConstantTable()
	table.Set("CONFIG_X", 1)
	for iter := 0; iter < 2; iter++ {
		for _, name := range remoteIPConstants {
			table.Delete(name)
		}
		for i, name := range remoteIPConstants {
			table.Set(name, i+1)
		}
	}
	if table.Len() != 5 {
		t.Fatalf("table length %d after repeated set, want 5", table.Len())
	}
	names := table.Names()
	if names[0] != "CONFIG_X" || names[1] != "REMOTEIP1" || names[4] != "REMOTEIP4" {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestConstantTableOrderPreserved(t *testing.T) {
	table := NewConstantTable()
	table.Set("B", 2)
	table.Set("A", 1)
	table.Set("B", 3) // overwrite keeps position
	names := table.Names()
	if names[0] != "B" || names[1] != "A" {
		t.Fatalf("unexpected order %v", names)
	}
	if v, _ := table.Get("B"); v != 3 {
		t.Fatalf("overwrite lost: %v", v)
	}
}
