package points

import "testing"

func TestGet(t *testing.T) {
	p, ok := Get(7101)
	if !ok {
		t.Fatal("expected 7101 in catalog")
	}
	if p.Name != "battery_soc" {
		t.Errorf("Name = %q, want battery_soc", p.Name)
	}
	if p.Unit != "%" {
		t.Errorf("Unit = %q, want %%", p.Unit)
	}
	if p.Writable {
		t.Error("battery_soc should not be writable")
	}

	if _, ok := Get(99999); ok {
		t.Error("unexpected hit for unknown ID")
	}
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("output_limit")
	if !ok {
		t.Fatal("expected output_limit in catalog")
	}
	if p.ID != 47016 {
		t.Errorf("ID = %d, want 47016", p.ID)
	}
	if !p.Writable {
		t.Error("output_limit should be writable")
	}

	if _, ok := Lookup("nonsense"); ok {
		t.Error("unexpected hit for unknown name")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    int
		wantErr bool
	}{
		{name: "numeric ID", ref: "7103", want: 7103},
		{name: "numeric ID outside catalog", ref: "12345", want: 12345},
		{name: "symbolic name", ref: "grid_power", want: 1664},
		{name: "unknown name", ref: "wibble", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %d, want %d", tt.ref, got, tt.want)
			}
		})
	}
}

func TestAll(t *testing.T) {
	pts := All()
	if len(pts) == 0 {
		t.Fatal("catalog should not be empty")
	}

	for i := 1; i < len(pts); i++ {
		if pts[i-1].ID >= pts[i].ID {
			t.Errorf("catalog not sorted by ID: %d before %d", pts[i-1].ID, pts[i].ID)
		}
	}

	for _, p := range pts {
		if p.Name == "" {
			t.Errorf("point %d has no name", p.ID)
		}
	}
}
